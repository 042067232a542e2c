package roadmap

import (
	"errors"
	"fmt"
	"time"

	"github.com/pathbound/pathbound/internal/model"
)

// The ordering engine keeps order_index dense and unique per
// (owner, status) bucket: after any insert, delete or move the indices
// in a bucket are exactly 0..n-1. Planners are pure functions over a
// board; they emit the full change set (moved goal plus every shifted
// neighbor) and never touch the store themselves.

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrInvalidStatus     = errors.New("invalid goal status")
	ErrStaleMove         = errors.New("move does not match current board state")
)

// Move is the declarative form of a kanban drag: pick the goal up at
// (FromStatus, FromIndex), drop it at (ToStatus, ToIndex). Gesture and
// DOM specifics stay in the client; only this tuple crosses the wire.
type Move struct {
	GoalID     string `json:"goal_id"`
	FromStatus string `json:"from_status"`
	FromIndex  int    `json:"from_index"`
	ToStatus   string `json:"to_status"`
	ToIndex    int    `json:"to_index"`
}

// Change is one goal's new placement. Neighbor changes carry the
// goal's existing status and completion timestamp unchanged.
type Change struct {
	GoalID      string     `json:"goal_id"`
	Status      string     `json:"status"`
	OrderIndex  int        `json:"order_index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func unchanged(g *model.Goal, index int) Change {
	return Change{GoalID: g.ID, Status: g.Status, OrderIndex: index, CompletedAt: g.CompletedAt}
}

// NextOrderIndex returns the index a goal appended to the bucket
// receives. Density makes this the bucket size.
func NextOrderIndex(b *Board, status string) int {
	return b.BucketSize(status)
}

// PlanMove computes the change set for a drag from (FromStatus,
// FromIndex) to (ToStatus, ToIndex). A drop back onto the source slot
// is a no-op and yields an empty plan. The stamp is used for the
// completion timestamp when the move enters the completed column.
func PlanMove(b *Board, mv Move, stamp time.Time) ([]Change, error) {
	g := b.Goal(mv.GoalID)
	if g == nil {
		return nil, ErrGoalNotFound
	}
	if !model.ValidGoalStatus(mv.ToStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, mv.ToStatus)
	}
	if g.Status != mv.FromStatus || g.OrderIndex != mv.FromIndex {
		return nil, fmt.Errorf("%w: goal %s is at (%s, %d)", ErrStaleMove, g.ID, g.Status, g.OrderIndex)
	}

	sameBucket := mv.FromStatus == mv.ToStatus
	destSize := b.BucketSize(mv.ToStatus)
	maxIndex := destSize
	if sameBucket {
		// The goal already occupies a slot in this bucket.
		maxIndex = destSize - 1
	}
	if mv.ToIndex < 0 || mv.ToIndex > maxIndex {
		return nil, fmt.Errorf("%w: index %d out of range for %s", ErrStaleMove, mv.ToIndex, mv.ToStatus)
	}

	if sameBucket && mv.FromIndex == mv.ToIndex {
		return nil, nil
	}

	var changes []Change

	if sameBucket {
		// Neighbors strictly between the two slots shift one step
		// toward the vacated slot.
		for _, n := range b.Bucket(mv.FromStatus) {
			if n.ID == g.ID {
				continue
			}
			switch {
			case mv.FromIndex < mv.ToIndex && n.OrderIndex > mv.FromIndex && n.OrderIndex <= mv.ToIndex:
				changes = append(changes, unchanged(n, n.OrderIndex-1))
			case mv.FromIndex > mv.ToIndex && n.OrderIndex >= mv.ToIndex && n.OrderIndex < mv.FromIndex:
				changes = append(changes, unchanged(n, n.OrderIndex+1))
			}
		}
	} else {
		// Close the gap left in the source bucket.
		for _, n := range b.Bucket(mv.FromStatus) {
			if n.OrderIndex > mv.FromIndex {
				changes = append(changes, unchanged(n, n.OrderIndex-1))
			}
		}
		// Open a slot in the destination bucket.
		for _, n := range b.Bucket(mv.ToStatus) {
			if n.OrderIndex >= mv.ToIndex {
				changes = append(changes, unchanged(n, n.OrderIndex+1))
			}
		}
	}

	changes = append(changes, Change{
		GoalID:      g.ID,
		Status:      mv.ToStatus,
		OrderIndex:  mv.ToIndex,
		CompletedAt: completionStamp(g, mv.ToStatus, stamp),
	})

	return changes, nil
}

// PlanDelete computes the re-densify change set for removing a goal:
// every goal above it in the bucket shifts down one. The deleted goal
// itself is not part of the plan.
func PlanDelete(b *Board, goalID string) ([]Change, error) {
	g := b.Goal(goalID)
	if g == nil {
		return nil, ErrGoalNotFound
	}

	var changes []Change
	for _, n := range b.Bucket(g.Status) {
		if n.OrderIndex > g.OrderIndex {
			changes = append(changes, unchanged(n, n.OrderIndex-1))
		}
	}
	return changes, nil
}
