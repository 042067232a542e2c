package roadmap

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pathbound/pathbound/internal/model"
)

var ErrMutationInFlight = errors.New("a previous change is still saving")

// Store is the slice of the persistent store the controller needs.
// The calls behind it are independent row mutations, not a server-side
// transaction: a crash mid-batch can leave some neighbors persisted
// and others not. That window is accepted; the controller guarantees
// all-or-nothing only for the in-memory state via snapshot rollback.
type Store interface {
	// UpdatePositions persists a change set (order_index, status,
	// completed_at per goal).
	UpdatePositions(owner string, changes []Change) error
	// DeleteGoal removes a goal and cascades to its milestones.
	DeleteGoal(owner, goalID string) error
	// SetMilestoneCompleted persists one milestone's completion pair.
	SetMilestoneCompleted(owner, goalID, milestoneID string, completed bool, completedAt *time.Time) error
}

// Controller applies every core mutation to the board first, then asks
// the store to catch up. On any store failure the pre-mutation
// snapshot is restored in full, so readers never observe a torn state.
// Mutations are serialized per board: the whole board counts as busy
// while a persist step is outstanding, and overlapping mutations are
// rejected. Rollback restores a whole-board snapshot, so a narrower
// guard would let a failed mutation erase a sibling change that the
// store had already acknowledged.
type Controller struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	board *Board
	busy  bool
}

func NewController(board *Board, store Store) *Controller {
	return &Controller{
		store: store,
		now:   time.Now,
		board: board,
	}
}

// Goals returns a consistent deep copy of the current collection for
// the view adapters.
func (c *Controller) Goals() []*model.Goal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.Goals()
}

// AddGoal places an already-persisted goal onto the board. The editor
// persists first (it is not optimistic), then publishes here.
func (c *Controller) AddGoal(g *model.Goal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board.Add(g.Clone())
}

// ReplaceGoal swaps in the persisted result of an editor update.
func (c *Controller) ReplaceGoal(g *model.Goal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board.Remove(g.ID)
	c.board.Add(g.Clone())
}

// Move executes a kanban drag as one atomic logical mutation: the
// dragged goal and every shifted neighbor stand together or roll back
// together.
func (c *Controller) Move(mv Move) error {
	return c.mutate("move goal", mv.GoalID, func(b *Board) (func() error, error) {
		changes, err := PlanMove(b, mv, c.now())
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			// Dropped back onto the source slot.
			return nil, nil
		}
		b.Apply(changes)
		return func() error {
			return c.store.UpdatePositions(b.Owner(), changes)
		}, nil
	})
}

// SetStatus is the explicit status selection from the detail view. It
// behaves like dropping the goal at the end of the destination column.
// The position read and the move plan happen in one critical section,
// so a concurrent change cannot turn the derived move stale.
func (c *Controller) SetStatus(goalID, status string) error {
	return c.mutate("change status", goalID, func(b *Board) (func() error, error) {
		g := b.Goal(goalID)
		if g == nil {
			return nil, ErrGoalNotFound
		}
		if g.Status == status {
			return nil, nil
		}
		mv := Move{
			GoalID:     goalID,
			FromStatus: g.Status,
			FromIndex:  g.OrderIndex,
			ToStatus:   status,
			ToIndex:    NextOrderIndex(b, status),
		}
		changes, err := PlanMove(b, mv, c.now())
		if err != nil {
			return nil, err
		}
		b.Apply(changes)
		return func() error {
			return c.store.UpdatePositions(b.Owner(), changes)
		}, nil
	})
}

// Delete removes a goal and its milestones, re-densifying the bucket
// it left. A failed cascade rolls the goal back onto the board: local
// state never shows a goal whose milestones may still be in the store,
// or the reverse.
func (c *Controller) Delete(goalID string) error {
	return c.mutate("delete goal", goalID, func(b *Board) (func() error, error) {
		changes, err := PlanDelete(b, goalID)
		if err != nil {
			return nil, err
		}
		b.Remove(goalID)
		b.Apply(changes)
		return func() error {
			if err := c.store.DeleteGoal(b.Owner(), goalID); err != nil {
				return err
			}
			if len(changes) == 0 {
				return nil
			}
			return c.store.UpdatePositions(b.Owner(), changes)
		}, nil
	})
}

// ToggleMilestone flips one milestone's completion pair. Rollback on
// failure is scoped to that pair; siblings and the parent goal are
// untouched. It still takes the board-wide busy guard: the pair
// rollback writes through the live milestone pointer, which a
// concurrent whole-board restore would detach.
func (c *Controller) ToggleMilestone(goalID, milestoneID string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrMutationInFlight
	}
	g := c.board.Goal(goalID)
	if g == nil {
		c.mu.Unlock()
		return ErrGoalNotFound
	}
	var ms *model.Milestone
	for _, m := range g.Milestones {
		if m.ID == milestoneID {
			ms = m
			break
		}
	}
	if ms == nil {
		c.mu.Unlock()
		return ErrMilestoneNotFound
	}

	prevCompleted := ms.IsCompleted
	prevAt := ms.CompletedAt
	MilestoneCompletion(ms, !prevCompleted, c.now())
	completed, completedAt := ms.IsCompleted, ms.CompletedAt

	c.busy = true
	c.mu.Unlock()

	err := c.store.SetMilestoneCompleted(c.board.Owner(), goalID, milestoneID, completed, completedAt)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		ms.IsCompleted = prevCompleted
		ms.CompletedAt = prevAt
		c.mu.Unlock()
		slog.Warn("milestone toggle failed, rolled back", "goal_id", goalID, "milestone_id", milestoneID, "error", err)
		return fmt.Errorf("toggle milestone: %w", err)
	}
	c.mu.Unlock()
	return nil
}

// mutate runs the snapshot/apply/persist/rollback cycle. plan inspects
// and mutates the board under the lock and returns the persistence
// step, or nil when the mutation turned out to be a no-op. The persist
// step runs outside the lock so readers see the new state while the
// store calls are in flight, but the busy flag stays up for its whole
// duration: no other mutation may start until it resolves, which keeps
// the snapshot a faithful rollback target.
func (c *Controller) mutate(action, goalID string, plan func(b *Board) (func() error, error)) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrMutationInFlight
	}

	snap := c.board.Snapshot()
	persist, err := plan(c.board)
	if err != nil {
		c.board.Restore(snap)
		c.mu.Unlock()
		return err
	}
	if persist == nil {
		c.mu.Unlock()
		return nil
	}
	c.busy = true
	c.mu.Unlock()

	err = persist()

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.board.Restore(snap)
		c.mu.Unlock()
		slog.Warn(action+" failed, rolled back", "goal_id", goalID, "error", err)
		return fmt.Errorf("%s: %w", action, err)
	}
	c.mu.Unlock()
	return nil
}
