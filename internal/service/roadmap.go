package service

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pathbound/pathbound/internal/model"
	"github.com/pathbound/pathbound/internal/repository"
	"github.com/pathbound/pathbound/internal/roadmap"
	"github.com/pathbound/pathbound/internal/validation"
)

// GoalDraft is what the editor submits: the goal's scalar fields plus
// the full milestone list. Submitting replaces any previous milestone
// list wholesale.
type GoalDraft struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=4000"`
	Category    string           `json:"category" validate:"omitempty,oneof=certificate skill project experience education other"`
	TargetDate  *time.Time       `json:"target_date"`
	Priority    int              `json:"priority" validate:"omitempty,min=1,max=5"`
	Status      string           `json:"status" validate:"omitempty,oneof=planned in_progress completed paused"`
	Milestones  []MilestoneDraft `json:"milestones" validate:"dive"`
}

type MilestoneDraft struct {
	Title      string     `json:"title" validate:"max=200"`
	TargetDate *time.Time `json:"target_date"`
}

// RoadmapService owns the per-user boards and fronts every roadmap
// operation: editor create/update, the optimistic mutations, and the
// view projections. Boards are loaded lazily and kept for the life of
// the process.
type RoadmapService struct {
	goals      repository.GoalRepository
	milestones repository.MilestoneRepository

	mu          sync.Mutex
	controllers map[string]*roadmap.Controller
}

func NewRoadmapService(goals repository.GoalRepository, milestones repository.MilestoneRepository) *RoadmapService {
	return &RoadmapService{
		goals:       goals,
		milestones:  milestones,
		controllers: make(map[string]*roadmap.Controller),
	}
}

// roadmapStore adapts the repositories to the controller's store
// contract. DeleteGoal orders the cascade child-first so a milestone
// failure aborts before the goal row is touched.
type roadmapStore struct {
	goals      repository.GoalRepository
	milestones repository.MilestoneRepository
}

func (st *roadmapStore) UpdatePositions(owner string, changes []roadmap.Change) error {
	return st.goals.UpdatePositions(owner, changes)
}

func (st *roadmapStore) DeleteGoal(owner, goalID string) error {
	if err := st.milestones.DeleteByGoal(goalID); err != nil {
		return fmt.Errorf("failed to delete milestones: %w", err)
	}
	return st.goals.Delete(owner, goalID)
}

func (st *roadmapStore) SetMilestoneCompleted(owner, goalID, milestoneID string, completed bool, completedAt *time.Time) error {
	return st.milestones.SetCompleted(goalID, milestoneID, completed, completedAt)
}

// controller returns the user's board controller, loading goals and
// milestones from the store on first use.
func (s *RoadmapService) controller(userID string) (*roadmap.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctrl, ok := s.controllers[userID]; ok {
		return ctrl, nil
	}

	goals, err := s.goals.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	ids := make([]string, len(goals))
	byID := make(map[string]*model.Goal, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
		g.Milestones = []*model.Milestone{}
		byID[g.ID] = g
	}

	milestones, err := s.milestones.ByGoals(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	for _, m := range milestones {
		if g, ok := byID[m.GoalID]; ok {
			g.Milestones = append(g.Milestones, m)
		}
	}

	ctrl := roadmap.NewController(
		roadmap.NewBoard(userID, goals),
		&roadmapStore{goals: s.goals, milestones: s.milestones},
	)
	s.controllers[userID] = ctrl
	return ctrl, nil
}

// Goals returns the user's full collection, milestones attached.
func (s *RoadmapService) Goals(userID string) ([]*model.Goal, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	return ctrl.Goals(), nil
}

// Timeline projects the collection as a flat ordered list.
func (s *RoadmapService) Timeline(userID, category string) ([]*model.Goal, error) {
	goals, err := s.Goals(userID)
	if err != nil {
		return nil, err
	}
	return roadmap.Timeline(goals, category), nil
}

// Kanban projects the collection into the four status columns.
func (s *RoadmapService) Kanban(userID, category string) ([]roadmap.Column, error) {
	goals, err := s.Goals(userID)
	if err != nil {
		return nil, err
	}
	return roadmap.Kanban(goals, category), nil
}

func (s *RoadmapService) GoalByID(userID, goalID string) (*model.Goal, error) {
	goals, err := s.Goals(userID)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		if g.ID == goalID {
			return g, nil
		}
	}
	return nil, repository.ErrGoalNotFound
}

// CreateGoal persists a new goal at the end of its bucket (planned
// unless the draft says otherwise) plus its milestone list with
// sequential indices. Unlike the board mutations this is not
// optimistic: the board only learns about the goal after both
// persistence steps succeed.
func (s *RoadmapService) CreateGoal(userID string, draft GoalDraft) (*model.Goal, error) {
	draft = normalizeDraft(draft)
	if err := validation.Struct(draft); err != nil {
		return nil, err
	}

	maxIdx, err := s.goals.MaxOrderIndex(userID, draft.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order index: %w", err)
	}

	now := time.Now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		TargetDate:  draft.TargetDate,
		Priority:    draft.Priority,
		Status:      draft.Status,
		OrderIndex:  maxIdx + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if goal.Status == model.GoalStatusCompleted {
		goal.CompletedAt = &now
	}

	err = s.goals.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	goal.Milestones = buildMilestones(goal.ID, draft.Milestones, now)
	err = s.milestones.CreateMany(goal.Milestones)
	if err != nil {
		// Roll back: the goal must not exist without its milestones.
		delErr := s.goals.Delete(userID, goal.ID)
		if delErr != nil {
			slog.Error("failed to delete goal during rollback", "error", delErr, "goal_id", goal.ID)
		}
		return nil, fmt.Errorf("failed to create milestones: %w", err)
	}

	s.publishNew(userID, goal)
	return goal, nil
}

// UpdateGoal rewrites the goal's scalar fields and replaces its whole
// milestone list. Status and order_index are untouched here; those
// move only through the board mutations. If the milestone replacement
// fails the scalar update is compensated so the persisted state stays
// as it was before the edit.
func (s *RoadmapService) UpdateGoal(userID, goalID string, draft GoalDraft) (*model.Goal, error) {
	draft = normalizeDraft(draft)
	if err := validation.Struct(draft); err != nil {
		return nil, err
	}

	goal, err := s.goals.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	prev := goal.Clone()

	goal.Title = draft.Title
	goal.Description = draft.Description
	goal.Category = draft.Category
	goal.TargetDate = draft.TargetDate
	goal.Priority = draft.Priority
	goal.UpdatedAt = time.Now()

	err = s.goals.Update(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	goal.Milestones = buildMilestones(goal.ID, draft.Milestones, time.Now())
	err = s.milestones.ReplaceForGoal(goal.ID, goal.Milestones)
	if err != nil {
		updErr := s.goals.Update(prev)
		if updErr != nil {
			slog.Error("failed to restore goal during rollback", "error", updErr, "goal_id", goal.ID)
		}
		return nil, fmt.Errorf("failed to replace milestones: %w", err)
	}

	s.publishUpdated(userID, goal)
	return goal, nil
}

// Move applies a kanban drag through the optimistic controller.
func (s *RoadmapService) Move(userID string, mv roadmap.Move) error {
	ctrl, err := s.controller(userID)
	if err != nil {
		return err
	}
	return ctrl.Move(mv)
}

// SetStatus applies an explicit status change from the detail view.
func (s *RoadmapService) SetStatus(userID, goalID, status string) error {
	if !model.ValidGoalStatus(status) {
		return fmt.Errorf("%w: %q", roadmap.ErrInvalidStatus, status)
	}
	ctrl, err := s.controller(userID)
	if err != nil {
		return err
	}
	return ctrl.SetStatus(goalID, status)
}

// DeleteGoal removes a goal and its milestones through the optimistic
// controller.
func (s *RoadmapService) DeleteGoal(userID, goalID string) error {
	ctrl, err := s.controller(userID)
	if err != nil {
		return err
	}
	return ctrl.Delete(goalID)
}

// ToggleMilestone flips one milestone's completion state.
func (s *RoadmapService) ToggleMilestone(userID, goalID, milestoneID string) error {
	ctrl, err := s.controller(userID)
	if err != nil {
		return err
	}
	return ctrl.ToggleMilestone(goalID, milestoneID)
}

func (s *RoadmapService) publishNew(userID string, goal *model.Goal) {
	s.mu.Lock()
	ctrl, ok := s.controllers[userID]
	s.mu.Unlock()
	if ok {
		ctrl.AddGoal(goal)
	}
}

func (s *RoadmapService) publishUpdated(userID string, goal *model.Goal) {
	s.mu.Lock()
	ctrl, ok := s.controllers[userID]
	s.mu.Unlock()
	if ok {
		ctrl.ReplaceGoal(goal)
	}
}

// normalizeDraft trims titles, fills defaults, and silently drops
// milestone drafts with blank titles.
func normalizeDraft(draft GoalDraft) GoalDraft {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Category == "" {
		draft.Category = model.GoalCategoryOther
	}
	if draft.Priority == 0 {
		draft.Priority = 3
	}
	if draft.Status == "" {
		draft.Status = model.GoalStatusPlanned
	}

	kept := draft.Milestones[:0:0]
	for _, m := range draft.Milestones {
		m.Title = strings.TrimSpace(m.Title)
		if m.Title == "" {
			continue
		}
		kept = append(kept, m)
	}
	draft.Milestones = kept
	return draft
}

// buildMilestones turns drafts into rows with fresh ids and dense
// indices 0..k-1.
func buildMilestones(goalID string, drafts []MilestoneDraft, now time.Time) []*model.Milestone {
	milestones := make([]*model.Milestone, len(drafts))
	for i, d := range drafts {
		milestones[i] = &model.Milestone{
			ID:         uuid.New().String(),
			GoalID:     goalID,
			Title:      d.Title,
			TargetDate: d.TargetDate,
			OrderIndex: i,
			CreatedAt:  now,
		}
	}
	return milestones
}
