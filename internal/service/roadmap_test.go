package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pathbound/pathbound/internal/db"
	"github.com/pathbound/pathbound/internal/model"
	"github.com/pathbound/pathbound/internal/repository"
	"github.com/pathbound/pathbound/internal/roadmap"
	"github.com/pathbound/pathbound/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc        *RoadmapService
	goals      repository.GoalRepository
	milestones repository.MilestoneRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Init("sqlite", filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	users := repository.NewUserRepository(database)
	require.NoError(t, users.Create(&model.User{
		ID:        "u1",
		Email:     "u1@example.com",
		Name:      "Test Student",
		CreatedAt: time.Now(),
	}))

	goals := repository.NewGoalRepository(database)
	milestones := repository.NewMilestoneRepository(database)
	return &testEnv{
		svc:        NewRoadmapService(goals, milestones),
		goals:      goals,
		milestones: milestones,
	}
}

// fresh builds a second service over the same store, so tests can
// check what actually persisted rather than what the board remembers.
func (e *testEnv) fresh() *RoadmapService {
	return NewRoadmapService(e.goals, e.milestones)
}

func TestCreateGoalFirstInPlanned(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{Title: "정보처리기사 취득"})
	require.NoError(t, err)

	assert.Equal(t, model.GoalStatusPlanned, goal.Status)
	assert.Equal(t, 0, goal.OrderIndex)
	assert.Equal(t, model.GoalCategoryOther, goal.Category)
	assert.Equal(t, 3, goal.Priority)
	assert.Nil(t, goal.CompletedAt)

	second, err := env.svc.CreateGoal("u1", GoalDraft{Title: "SQLD"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.OrderIndex)
}

func TestCreateGoalIntoOtherStatus(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{
		Title:  "포트폴리오 사이트",
		Status: model.GoalStatusInProgress,
	})
	require.NoError(t, err)

	assert.Equal(t, model.GoalStatusInProgress, goal.Status)
	assert.Equal(t, 0, goal.OrderIndex)
}

func TestCreateGoalDropsBlankMilestones(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{
		Title: "자료구조 공부",
		Milestones: []MilestoneDraft{
			{Title: "배열과 리스트"},
			{Title: "   "},
			{Title: ""},
			{Title: "트리와 그래프"},
		},
	})
	require.NoError(t, err)

	require.Len(t, goal.Milestones, 2)
	assert.Equal(t, 0, goal.Milestones[0].OrderIndex)
	assert.Equal(t, 1, goal.Milestones[1].OrderIndex)
	assert.Equal(t, "배열과 리스트", goal.Milestones[0].Title)
	assert.Equal(t, "트리와 그래프", goal.Milestones[1].Title)
}

func TestCreateGoalValidation(t *testing.T) {
	env := setupEnv(t)

	var verr *validation.Error

	_, err := env.svc.CreateGoal("u1", GoalDraft{Title: "   "})
	require.ErrorAs(t, err, &verr)

	_, err = env.svc.CreateGoal("u1", GoalDraft{Title: "ok", Category: "hobby"})
	require.ErrorAs(t, err, &verr)

	_, err = env.svc.CreateGoal("u1", GoalDraft{Title: "ok", Priority: 9})
	require.ErrorAs(t, err, &verr)
}

func TestMilestoneReplacementLaw(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{
		Title: "정보처리기사 취득",
		Milestones: []MilestoneDraft{
			{Title: "필기 합격"},
			{Title: "실기 합격"},
		},
	})
	require.NoError(t, err)

	oldIDs := map[string]bool{}
	for _, m := range goal.Milestones {
		oldIDs[m.ID] = true
	}

	// Resubmit: drop the first, keep the second's title as a fresh
	// draft, add a third.
	updated, err := env.svc.UpdateGoal("u1", goal.ID, GoalDraft{
		Title: "정보처리기사 취득",
		Milestones: []MilestoneDraft{
			{Title: "실기 합격"},
			{Title: "자격증 수령"},
		},
	})
	require.NoError(t, err)

	persisted, err := env.milestones.ByGoal(goal.ID)
	require.NoError(t, err)
	require.Len(t, persisted, 2)

	for _, m := range persisted {
		assert.False(t, oldIDs[m.ID], "milestone %q kept its old identity", m.Title)
	}
	assert.Equal(t, "실기 합격", persisted[0].Title)
	assert.Equal(t, 0, persisted[0].OrderIndex)
	assert.Equal(t, "자격증 수령", persisted[1].Title)
	assert.Equal(t, 1, persisted[1].OrderIndex)

	require.Len(t, updated.Milestones, 2)
}

func TestUpdateGoalLeavesPlacementAlone(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{Title: "전공 학점 관리"})
	require.NoError(t, err)

	_, err = env.svc.UpdateGoal("u1", goal.ID, GoalDraft{
		Title:    "전공 학점 관리 (4.0 목표)",
		Priority: 5,
	})
	require.NoError(t, err)

	persisted, err := env.goals.ByID("u1", goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "전공 학점 관리 (4.0 목표)", persisted.Title)
	assert.Equal(t, 5, persisted.Priority)
	assert.Equal(t, model.GoalStatusPlanned, persisted.Status)
	assert.Equal(t, goal.OrderIndex, persisted.OrderIndex)
}

func TestMovePersistsAcrossReload(t *testing.T) {
	env := setupEnv(t)

	first, err := env.svc.CreateGoal("u1", GoalDraft{Title: "goal-a"})
	require.NoError(t, err)
	second, err := env.svc.CreateGoal("u1", GoalDraft{Title: "goal-b"})
	require.NoError(t, err)

	err = env.svc.Move("u1", roadmap.Move{
		GoalID:     second.ID,
		FromStatus: model.GoalStatusPlanned,
		FromIndex:  1,
		ToStatus:   model.GoalStatusInProgress,
		ToIndex:    0,
	})
	require.NoError(t, err)

	columns, err := env.fresh().Kanban("u1", "")
	require.NoError(t, err)

	planned, inProgress := columns[0], columns[1]
	require.Len(t, planned.Goals, 1)
	assert.Equal(t, first.ID, planned.Goals[0].ID)
	assert.Equal(t, 0, planned.Goals[0].OrderIndex)
	require.Len(t, inProgress.Goals, 1)
	assert.Equal(t, second.ID, inProgress.Goals[0].ID)
}

func TestSetStatusStampsAndClearsCompletion(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{Title: "goal-a"})
	require.NoError(t, err)

	require.NoError(t, env.svc.SetStatus("u1", goal.ID, model.GoalStatusCompleted))

	completed, err := env.fresh().GoalByID("u1", goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	require.NoError(t, env.svc.SetStatus("u1", goal.ID, model.GoalStatusPaused))

	paused, err := env.fresh().GoalByID("u1", goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusPaused, paused.Status)
	assert.Nil(t, paused.CompletedAt)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{Title: "goal-a"})
	require.NoError(t, err)

	err = env.svc.SetStatus("u1", goal.ID, "archived")
	assert.ErrorIs(t, err, roadmap.ErrInvalidStatus)
}

func TestDeleteGoalCascadesAndRedensifies(t *testing.T) {
	env := setupEnv(t)

	doomed, err := env.svc.CreateGoal("u1", GoalDraft{
		Title: "goal-a",
		Milestones: []MilestoneDraft{
			{Title: "m1"}, {Title: "m2"}, {Title: "m3"},
		},
	})
	require.NoError(t, err)
	survivor, err := env.svc.CreateGoal("u1", GoalDraft{Title: "goal-b"})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteGoal("u1", doomed.ID))

	_, err = env.goals.ByID("u1", doomed.ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	orphans, err := env.milestones.ByGoal(doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	remaining, err := env.goals.ByID("u1", survivor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining.OrderIndex)
}

func TestToggleMilestonePersists(t *testing.T) {
	env := setupEnv(t)

	goal, err := env.svc.CreateGoal("u1", GoalDraft{
		Title:      "goal-a",
		Milestones: []MilestoneDraft{{Title: "m1"}, {Title: "m2"}},
	})
	require.NoError(t, err)

	target := goal.Milestones[0].ID
	require.NoError(t, env.svc.ToggleMilestone("u1", goal.ID, target))

	persisted, err := env.milestones.ByGoal(goal.ID)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	assert.True(t, persisted[0].IsCompleted)
	assert.NotNil(t, persisted[0].CompletedAt)
	assert.False(t, persisted[1].IsCompleted)

	require.NoError(t, env.svc.ToggleMilestone("u1", goal.ID, target))

	persisted, err = env.milestones.ByGoal(goal.ID)
	require.NoError(t, err)
	assert.False(t, persisted[0].IsCompleted)
	assert.Nil(t, persisted[0].CompletedAt)
}
