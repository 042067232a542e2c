package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pathbound/pathbound/internal/ctxkeys"
	"github.com/pathbound/pathbound/internal/model"
	"github.com/pathbound/pathbound/internal/repository"
	"github.com/pathbound/pathbound/internal/roadmap"
	"github.com/pathbound/pathbound/internal/service"
	"github.com/pathbound/pathbound/internal/validation"
)

type RoadmapHandler struct {
	roadmapService *service.RoadmapService
}

func NewRoadmapHandler(roadmapService *service.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{
		roadmapService: roadmapService,
	}
}

// Goals returns the full collection, milestones attached.
func (h *RoadmapHandler) Goals(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.roadmapService.Goals(user.ID)
	if err != nil {
		slog.Error("failed to load goals", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to load goals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// Timeline returns the flat ordered projection.
func (h *RoadmapHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	category := r.URL.Query().Get("category")
	if category != "" && !model.ValidGoalCategory(category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	goals, err := h.roadmapService.Timeline(user.ID, category)
	if err != nil {
		slog.Error("failed to load timeline", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// Kanban returns the four status columns.
func (h *RoadmapHandler) Kanban(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	category := r.URL.Query().Get("category")
	if category != "" && !model.ValidGoalCategory(category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	columns, err := h.roadmapService.Kanban(user.ID, category)
	if err != nil {
		slog.Error("failed to load kanban", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to load board")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"columns": columns})
}

func (h *RoadmapHandler) GoalDetail(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.roadmapService.GoalByID(user.ID, goalID)
	if err != nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// Create handles an editor submit for a new goal plus milestone list.
func (h *RoadmapHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var draft service.GoalDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.roadmapService.CreateGoal(user.ID, draft)
	if err != nil {
		h.respondError(w, err, "save failed", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

// Update handles an editor submit for an existing goal. The milestone
// list in the draft replaces the stored one wholesale.
func (h *RoadmapHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var draft service.GoalDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.roadmapService.UpdateGoal(user.ID, goalID, draft)
	if err != nil {
		h.respondError(w, err, "save failed", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *RoadmapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	err := h.roadmapService.DeleteGoal(user.ID, goalID)
	if err != nil {
		h.respondError(w, err, "delete failed", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetStatus is the explicit status selection from the detail view.
func (h *RoadmapHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.roadmapService.SetStatus(user.ID, goalID, body.Status)
	if err != nil {
		h.respondError(w, err, "status change failed", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Move applies a kanban drag. The body is the declarative drop tuple;
// a drop outside any column never reaches this endpoint.
func (h *RoadmapHandler) Move(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var mv roadmap.Move
	if err := decodeJSON(r, &mv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.roadmapService.Move(user.ID, mv)
	if err != nil {
		h.respondError(w, err, "reorder failed", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RoadmapHandler) ToggleMilestone(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")
	milestoneID := r.PathValue("milestoneID")

	err := h.roadmapService.ToggleMilestone(user.ID, goalID, milestoneID)
	if err != nil {
		h.respondError(w, err, "milestone update failed", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondError maps service errors onto the API. Persistence failures
// have already been rolled back by the controller; the action word is
// what the client shows in its notification.
func (h *RoadmapHandler) respondError(w http.ResponseWriter, err error, action, userID string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, repository.ErrGoalNotFound), errors.Is(err, roadmap.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "goal not found")
	case errors.Is(err, repository.ErrMilestoneNotFound), errors.Is(err, roadmap.ErrMilestoneNotFound):
		writeError(w, http.StatusNotFound, "milestone not found")
	case errors.Is(err, roadmap.ErrMutationInFlight):
		writeError(w, http.StatusConflict, "previous change is still saving, try again")
	case errors.Is(err, roadmap.ErrStaleMove):
		writeError(w, http.StatusConflict, "board changed, reload and try again")
	case errors.Is(err, roadmap.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "unknown status")
	default:
		slog.Error(action, "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, action)
	}
}
