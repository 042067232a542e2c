package roadmap

import (
	"time"

	"github.com/pathbound/pathbound/internal/model"
)

// Status transitions form a free graph: any state may move to any
// other, so a user can revert a completion or resume a paused goal at
// will. The only side effect is the completion timestamp, which exists
// exactly while the goal is completed.

// completionStamp returns the completed_at value a goal carries after
// transitioning to next: set on entering completed, cleared on leaving
// it, untouched otherwise.
func completionStamp(g *model.Goal, next string, stamp time.Time) *time.Time {
	switch {
	case next == model.GoalStatusCompleted && g.Status != model.GoalStatusCompleted:
		t := stamp
		return &t
	case next != model.GoalStatusCompleted:
		return nil
	default:
		return g.CompletedAt
	}
}

// MilestoneCompletion applies the same timestamp law to a milestone's
// is_completed flag.
func MilestoneCompletion(m *model.Milestone, completed bool, stamp time.Time) {
	m.IsCompleted = completed
	if completed {
		t := stamp
		m.CompletedAt = &t
	} else {
		m.CompletedAt = nil
	}
}
