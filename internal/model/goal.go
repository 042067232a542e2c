package model

import (
	"time"
)

const (
	GoalStatusPlanned    = "planned"
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
	GoalStatusPaused     = "paused"
)

// GoalStatuses lists every status in kanban column order.
var GoalStatuses = []string{
	GoalStatusPlanned,
	GoalStatusInProgress,
	GoalStatusCompleted,
	GoalStatusPaused,
}

const (
	GoalCategoryCertificate = "certificate"
	GoalCategorySkill       = "skill"
	GoalCategoryProject     = "project"
	GoalCategoryExperience  = "experience"
	GoalCategoryEducation   = "education"
	GoalCategoryOther       = "other"
)

var GoalCategories = []string{
	GoalCategoryCertificate,
	GoalCategorySkill,
	GoalCategoryProject,
	GoalCategoryExperience,
	GoalCategoryEducation,
	GoalCategoryOther,
}

const (
	GoalPriorityMin = 1
	GoalPriorityMax = 5
)

type Goal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Category    string     `db:"category" json:"category"`
	TargetDate  *time.Time `db:"target_date" json:"target_date,omitempty"`
	Priority    int        `db:"priority" json:"priority"`
	Status      string     `db:"status" json:"status"`
	OrderIndex  int        `db:"order_index" json:"order_index"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// Loaded separately; goals own their milestones (delete cascades).
	Milestones []*Milestone `db:"-" json:"milestones"`
}

func ValidGoalStatus(s string) bool {
	switch s {
	case GoalStatusPlanned, GoalStatusInProgress, GoalStatusCompleted, GoalStatusPaused:
		return true
	}
	return false
}

func ValidGoalCategory(c string) bool {
	for _, known := range GoalCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, milestones included. The optimistic
// mutation controller snapshots collections with it before applying
// any local change.
func (g *Goal) Clone() *Goal {
	dup := *g
	if g.TargetDate != nil {
		t := *g.TargetDate
		dup.TargetDate = &t
	}
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		dup.CompletedAt = &t
	}
	if g.Milestones != nil {
		dup.Milestones = make([]*Milestone, len(g.Milestones))
		for i, m := range g.Milestones {
			dup.Milestones[i] = m.Clone()
		}
	}
	return &dup
}
