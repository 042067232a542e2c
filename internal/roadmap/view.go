package roadmap

import (
	"sort"

	"github.com/pathbound/pathbound/internal/model"
)

// View adapters are pure projections of a goal collection plus an
// optional category filter. They never touch the store.

// Column is one kanban lane: a status and its goals in order.
type Column struct {
	Status string        `json:"status"`
	Goals  []*model.Goal `json:"goals"`
}

var statusRank = map[string]int{
	model.GoalStatusPlanned:    0,
	model.GoalStatusInProgress: 1,
	model.GoalStatusCompleted:  2,
	model.GoalStatusPaused:     3,
}

// FilterByCategory keeps goals in the given category; the empty
// string keeps everything.
func FilterByCategory(goals []*model.Goal, category string) []*model.Goal {
	if category == "" {
		return goals
	}
	var out []*model.Goal
	for _, g := range goals {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// Timeline projects the collection as one flat list in ascending
// order_index. Status is not a layout axis here, only a marker, so
// ties across buckets break by column order, then creation time.
func Timeline(goals []*model.Goal, category string) []*model.Goal {
	out := append([]*model.Goal(nil), FilterByCategory(goals, category)...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if statusRank[a.Status] != statusRank[b.Status] {
			return statusRank[a.Status] < statusRank[b.Status]
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}

// Kanban projects the collection into four columns, one per status,
// each sorted by order_index ascending. Empty columns are present so
// the client always renders four lanes.
func Kanban(goals []*model.Goal, category string) []Column {
	filtered := FilterByCategory(goals, category)
	columns := make([]Column, 0, len(model.GoalStatuses))
	for _, status := range model.GoalStatuses {
		col := Column{Status: status, Goals: []*model.Goal{}}
		for _, g := range filtered {
			if g.Status == status {
				col.Goals = append(col.Goals, g)
			}
		}
		sort.Slice(col.Goals, func(i, j int) bool {
			return col.Goals[i].OrderIndex < col.Goals[j].OrderIndex
		})
		columns = append(columns, col)
	}
	return columns
}
