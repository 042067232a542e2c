package routes

import (
	"net/http"

	"github.com/pathbound/pathbound/internal/app"
	"github.com/pathbound/pathbound/internal/handler"
	"github.com/pathbound/pathbound/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	roadmap := handler.NewRoadmapHandler(app.RoadmapService)
	review := handler.NewReviewHandler(app.RoadmapService, app.ReviewService)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// All roadmap routes are scoped to the authenticated owner.
	requireAuth := middleware.RequireAuth(app.UserService, app.Cfg.JWTSecret)

	// Views
	mux.HandleFunc("GET /api/goals", requireAuth(roadmap.Goals))
	mux.HandleFunc("GET /api/goals/{id}", requireAuth(roadmap.GoalDetail))
	mux.HandleFunc("GET /api/roadmap/timeline", requireAuth(roadmap.Timeline))
	mux.HandleFunc("GET /api/roadmap/kanban", requireAuth(roadmap.Kanban))

	// Editor
	mux.HandleFunc("POST /api/goals", requireAuth(roadmap.Create))
	mux.HandleFunc("PUT /api/goals/{id}", requireAuth(roadmap.Update))

	// Board mutations
	mux.HandleFunc("DELETE /api/goals/{id}", requireAuth(roadmap.Delete))
	mux.HandleFunc("PUT /api/goals/{id}/status", requireAuth(roadmap.SetStatus))
	mux.HandleFunc("POST /api/roadmap/move", requireAuth(roadmap.Move))
	mux.HandleFunc("POST /api/goals/{id}/milestones/{milestoneID}/toggle", requireAuth(roadmap.ToggleMilestone))

	// AI review (rate limited, it calls a paid external service)
	reviewLimiter := middleware.RateLimitReview()
	mux.HandleFunc("POST /api/goals/{id}/review", reviewLimiter(requireAuth(review.ReviewGoal)))

	return middleware.Chain(mux,
		middleware.RequestLogging,
	)
}
