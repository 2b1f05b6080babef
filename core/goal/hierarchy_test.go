package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(nodes []*HierarchicalGoal) []string {
	nums := make([]string, 0, len(nodes))
	for _, n := range nodes {
		nums = append(nums, n.GoalNumber)
	}
	return nums
}

func sampleGoals() []Goal {
	return []Goal{
		{ID: "g10", GoalNumber: "10"},
		{ID: "g2-10", GoalNumber: "2.10", ParentID: sPtr("g2"), Level: LevelGoal},
		{ID: "g1", GoalNumber: "1"},
		{ID: "g2", GoalNumber: "2"},
		{ID: "g2-2", GoalNumber: "2.2", ParentID: sPtr("g2"), Level: LevelGoal},
		{ID: "g2-2-1", GoalNumber: "2.2.1", ParentID: sPtr("g2-2"), Level: LevelSubGoal},
		{ID: "g1-1", GoalNumber: "1.1", ParentID: sPtr("g1"), Level: LevelGoal},
	}
}

func TestBuildHierarchy(t *testing.T) {
	goals := sampleGoals()
	roots := BuildHierarchy(goals)

	assert.Equal(t, len(goals), Count(roots))
	assert.Equal(t, []string{"1", "2", "10"}, numbers(roots))
	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, []string{"2.2", "2.10"}, numbers(roots[1].Children))
	assert.Equal(t, []string{"2.2.1"}, numbers(roots[1].Children[0].Children))
	assert.Empty(t, roots[2].Children)

	// input untouched
	assert.Equal(t, "g10", goals[0].ID)
}

func TestBuildHierarchy_orphan(t *testing.T) {
	goals := []Goal{
		{ID: "g1", GoalNumber: "1"},
		{ID: "orphan", GoalNumber: "3.1", ParentID: sPtr("deleted"), Level: LevelGoal},
	}
	roots := BuildHierarchy(goals)
	assert.Equal(t, []string{"1", "3.1"}, numbers(roots))
}

func TestBuildHierarchy_cycle(t *testing.T) {
	goals := []Goal{
		{ID: "a", GoalNumber: "1.1", ParentID: sPtr("b")},
		{ID: "b", GoalNumber: "1.2", ParentID: sPtr("a")},
		{ID: "c", GoalNumber: "1.1.1", ParentID: sPtr("a")},
	}
	roots := BuildHierarchy(goals)
	assert.Equal(t, 3, Count(roots))
	assert.Equal(t, []string{"1.1", "1.2"}, numbers(roots))
	assert.Equal(t, []string{"1.1.1"}, numbers(roots[0].Children))
}

func TestBuildHierarchy_stable(t *testing.T) {
	goals := []Goal{
		{ID: "first", GoalNumber: "1"},
		{ID: "second", GoalNumber: "1"},
	}
	roots := BuildHierarchy(goals)
	require.Len(t, roots, 2)
	assert.Equal(t, "first", roots[0].ID)
	assert.Equal(t, "second", roots[1].ID)
}

func TestBuildHierarchy_roundTrip(t *testing.T) {
	first := BuildHierarchy(sampleGoals())
	flat := Flatten(first)
	assert.Equal(t, []string{"1", "1.1", "2", "2.2", "2.2.1", "2.10", "10"}, func() []string {
		nums := make([]string, 0, len(flat))
		for _, g := range flat {
			nums = append(nums, g.GoalNumber)
		}
		return nums
	}())

	second := BuildHierarchy(flat)
	assert.Equal(t, first, second)
}

func TestBuildHierarchy_empty(t *testing.T) {
	roots := BuildHierarchy(nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}
