package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pathbound/pathbound/internal/ctxkeys"
	"github.com/pathbound/pathbound/internal/service"
)

type ReviewHandler struct {
	roadmapService *service.RoadmapService
	reviewService  *service.ReviewService
}

func NewReviewHandler(roadmapService *service.RoadmapService, reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		roadmapService: roadmapService,
		reviewService:  reviewService,
	}
}

// ReviewGoal asks the external coaching model for feedback on one
// goal. Failures never touch roadmap state.
func (h *ReviewHandler) ReviewGoal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.roadmapService.GoalByID(user.ID, goalID)
	if err != nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	feedback, err := h.reviewService.ReviewGoal(r.Context(), goal)
	if errors.Is(err, service.ErrReviewUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "review is not available")
		return
	}
	if err != nil {
		slog.Error("review failed", "error", err, "user_id", user.ID, "goal_id", goalID)
		writeError(w, http.StatusBadGateway, "review failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}
