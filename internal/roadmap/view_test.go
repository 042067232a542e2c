package roadmap

import (
	"testing"
	"time"

	"github.com/pathbound/pathbound/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewFixture() []*model.Goal {
	g0 := testGoal("g0", model.GoalStatusPlanned, 0)
	g0.Category = model.GoalCategoryCertificate
	g1 := testGoal("g1", model.GoalStatusPlanned, 1)
	g2 := testGoal("g2", model.GoalStatusInProgress, 0)
	g2.Category = model.GoalCategoryCertificate
	done := time.Now().Add(-time.Hour)
	g3 := testGoal("g3", model.GoalStatusCompleted, 0)
	g3.CompletedAt = &done
	g4 := testGoal("g4", model.GoalStatusCompleted, 1)
	g4.CompletedAt = &done
	return []*model.Goal{g4, g1, g3, g0, g2}
}

func TestKanbanColumns(t *testing.T) {
	columns := Kanban(viewFixture(), "")

	require.Len(t, columns, 4)
	assert.Equal(t, model.GoalStatusPlanned, columns[0].Status)
	assert.Equal(t, model.GoalStatusInProgress, columns[1].Status)
	assert.Equal(t, model.GoalStatusCompleted, columns[2].Status)
	assert.Equal(t, model.GoalStatusPaused, columns[3].Status)

	ids := func(col Column) []string {
		var out []string
		for _, g := range col.Goals {
			out = append(out, g.ID)
		}
		return out
	}
	assert.Equal(t, []string{"g0", "g1"}, ids(columns[0]))
	assert.Equal(t, []string{"g2"}, ids(columns[1]))
	assert.Equal(t, []string{"g3", "g4"}, ids(columns[2]))
	assert.Empty(t, columns[3].Goals)
}

func TestKanbanCategoryFilter(t *testing.T) {
	columns := Kanban(viewFixture(), model.GoalCategoryCertificate)

	var total int
	for _, col := range columns {
		total += len(col.Goals)
	}
	assert.Equal(t, 2, total)
	// Empty lanes still render.
	require.Len(t, columns, 4)
}

func TestTimelineOrder(t *testing.T) {
	goals := Timeline(viewFixture(), "")

	require.Len(t, goals, 5)
	// Ascending order_index; ties break by column order.
	assert.Equal(t, []string{"g0", "g2", "g3", "g1", "g4"}, []string{
		goals[0].ID, goals[1].ID, goals[2].ID, goals[3].ID, goals[4].ID,
	})
}

func TestTimelineDoesNotMutateInput(t *testing.T) {
	input := viewFixture()
	first := input[0].ID

	Timeline(input, "")
	assert.Equal(t, first, input[0].ID)
}

func TestFilterByCategoryEmptyKeepsAll(t *testing.T) {
	input := viewFixture()
	assert.Len(t, FilterByCategory(input, ""), 5)
	assert.Empty(t, FilterByCategory(input, model.GoalCategoryEducation))
}
