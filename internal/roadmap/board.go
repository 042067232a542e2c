package roadmap

import (
	"sort"

	"github.com/pathbound/pathbound/internal/model"
)

// Board is the in-memory goal collection for one owner. It is what the
// view adapters project and what the controller mutates optimistically
// ahead of the store. All goals on a board belong to the same user.
type Board struct {
	owner string
	goals []*model.Goal
}

func NewBoard(owner string, goals []*model.Goal) *Board {
	b := &Board{owner: owner, goals: make([]*model.Goal, 0, len(goals))}
	b.goals = append(b.goals, goals...)
	return b
}

func (b *Board) Owner() string {
	return b.owner
}

// Goals returns a deep copy of the collection. Callers get a stable
// view that later mutations cannot tear.
func (b *Board) Goals() []*model.Goal {
	out := make([]*model.Goal, len(b.goals))
	for i, g := range b.goals {
		out[i] = g.Clone()
	}
	return out
}

func (b *Board) Goal(id string) *model.Goal {
	for _, g := range b.goals {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Bucket returns the goals in one status column sorted by order index.
func (b *Board) Bucket(status string) []*model.Goal {
	var out []*model.Goal
	for _, g := range b.goals {
		if g.Status == status {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func (b *Board) BucketSize(status string) int {
	n := 0
	for _, g := range b.goals {
		if g.Status == status {
			n++
		}
	}
	return n
}

// Snapshot deep-copies the whole collection, milestones included.
func (b *Board) Snapshot() []*model.Goal {
	snap := make([]*model.Goal, len(b.goals))
	for i, g := range b.goals {
		snap[i] = g.Clone()
	}
	return snap
}

// Restore discards the current collection and reinstates a snapshot.
func (b *Board) Restore(snap []*model.Goal) {
	b.goals = make([]*model.Goal, len(snap))
	copy(b.goals, snap)
}

// Apply writes a change set onto the collection. Unknown goal ids are
// ignored; the planner only emits ids it read from this board.
func (b *Board) Apply(changes []Change) {
	for _, ch := range changes {
		g := b.Goal(ch.GoalID)
		if g == nil {
			continue
		}
		g.Status = ch.Status
		g.OrderIndex = ch.OrderIndex
		g.CompletedAt = ch.CompletedAt
	}
}

func (b *Board) Add(g *model.Goal) {
	b.goals = append(b.goals, g)
}

// Remove takes a goal out of the collection and returns it, or nil if
// the id is unknown.
func (b *Board) Remove(id string) *model.Goal {
	for i, g := range b.goals {
		if g.ID == id {
			b.goals = append(b.goals[:i], b.goals[i+1:]...)
			return g
		}
	}
	return nil
}
