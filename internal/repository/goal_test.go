package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pathbound/pathbound/internal/db"
	"github.com/pathbound/pathbound/internal/model"
	"github.com/pathbound/pathbound/internal/roadmap"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Init("sqlite", filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := db.RunMigrations(database.DB, "sqlite"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	users := NewUserRepository(database)
	err = users.Create(&model.User{ID: "u1", Email: "u1@example.com", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return database
}

func seedGoal(t *testing.T, repo GoalRepository, id, status string, index int) *model.Goal {
	t.Helper()

	now := time.Now()
	goal := &model.Goal{
		ID:         id,
		UserID:     "u1",
		Title:      id,
		Category:   model.GoalCategorySkill,
		Priority:   3,
		Status:     status,
		OrderIndex: index,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Create(goal); err != nil {
		t.Fatalf("failed to create goal %s: %v", id, err)
	}
	return goal
}

func TestGoalMaxOrderIndex(t *testing.T) {
	repo := NewGoalRepository(setupTestDB(t))

	max, err := repo.MaxOrderIndex("u1", model.GoalStatusPlanned)
	if err != nil {
		t.Fatalf("MaxOrderIndex failed: %v", err)
	}
	if max != -1 {
		t.Errorf("empty bucket: got %d, want -1", max)
	}

	seedGoal(t, repo, "g0", model.GoalStatusPlanned, 0)
	seedGoal(t, repo, "g1", model.GoalStatusPlanned, 1)
	seedGoal(t, repo, "g2", model.GoalStatusPaused, 0)

	max, err = repo.MaxOrderIndex("u1", model.GoalStatusPlanned)
	if err != nil {
		t.Fatalf("MaxOrderIndex failed: %v", err)
	}
	if max != 1 {
		t.Errorf("planned bucket: got %d, want 1", max)
	}
}

func TestGoalUpdatePositions(t *testing.T) {
	repo := NewGoalRepository(setupTestDB(t))

	seedGoal(t, repo, "g0", model.GoalStatusPlanned, 0)
	seedGoal(t, repo, "g1", model.GoalStatusPlanned, 1)

	now := time.Now()
	err := repo.UpdatePositions("u1", []roadmap.Change{
		{GoalID: "g0", Status: model.GoalStatusCompleted, OrderIndex: 0, CompletedAt: &now},
		{GoalID: "g1", Status: model.GoalStatusPlanned, OrderIndex: 0},
	})
	if err != nil {
		t.Fatalf("UpdatePositions failed: %v", err)
	}

	moved, err := repo.ByID("u1", "g0")
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if moved.Status != model.GoalStatusCompleted {
		t.Errorf("status: got %s, want completed", moved.Status)
	}
	if moved.CompletedAt == nil {
		t.Error("completed_at: got nil, want set")
	}

	neighbor, err := repo.ByID("u1", "g1")
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if neighbor.OrderIndex != 0 {
		t.Errorf("order_index: got %d, want 0", neighbor.OrderIndex)
	}
}

func TestGoalUpdatePositionsUnknownGoal(t *testing.T) {
	repo := NewGoalRepository(setupTestDB(t))

	err := repo.UpdatePositions("u1", []roadmap.Change{
		{GoalID: "missing", Status: model.GoalStatusPlanned, OrderIndex: 0},
	})
	if err != ErrGoalNotFound {
		t.Errorf("got %v, want ErrGoalNotFound", err)
	}
}

func TestGoalDeleteScopedToOwner(t *testing.T) {
	repo := NewGoalRepository(setupTestDB(t))

	seedGoal(t, repo, "g0", model.GoalStatusPlanned, 0)

	if err := repo.Delete("someone-else", "g0"); err != ErrGoalNotFound {
		t.Errorf("foreign owner delete: got %v, want ErrGoalNotFound", err)
	}

	if err := repo.Delete("u1", "g0"); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}

func TestMilestoneReplaceForGoal(t *testing.T) {
	database := setupTestDB(t)
	goals := NewGoalRepository(database)
	milestones := NewMilestoneRepository(database)

	seedGoal(t, goals, "g0", model.GoalStatusPlanned, 0)

	now := time.Now()
	first := []*model.Milestone{
		{ID: "m0", GoalID: "g0", Title: "m0", OrderIndex: 0, CreatedAt: now},
		{ID: "m1", GoalID: "g0", Title: "m1", OrderIndex: 1, CreatedAt: now},
	}
	if err := milestones.CreateMany(first); err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}

	second := []*model.Milestone{
		{ID: "m2", GoalID: "g0", Title: "m1", OrderIndex: 0, CreatedAt: now},
	}
	if err := milestones.ReplaceForGoal("g0", second); err != nil {
		t.Fatalf("ReplaceForGoal failed: %v", err)
	}

	got, err := milestones.ByGoal("g0")
	if err != nil {
		t.Fatalf("ByGoal failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d milestones, want 1", len(got))
	}
	if got[0].ID != "m2" {
		t.Errorf("id: got %s, want m2", got[0].ID)
	}
}
