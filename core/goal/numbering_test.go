package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sPtr(s string) *string { return &s }

func TestNextGoalNumber(t *testing.T) {
	goals := []Goal{
		{ID: "g1", GoalNumber: "1", Level: LevelObjective},
		{ID: "g2", GoalNumber: "2", Level: LevelObjective},
		{ID: "g10", GoalNumber: "10", Level: LevelObjective},
		{ID: "g2-1", GoalNumber: "2.1", Level: LevelGoal, ParentID: sPtr("g2")},
		{ID: "g2-3", GoalNumber: "2.3", Level: LevelGoal, ParentID: sPtr("g2")},
		{ID: "g2-3-1", GoalNumber: "2.3.1", Level: LevelSubGoal, ParentID: sPtr("g2-3")},
		{ID: "bad", GoalNumber: "2.x", Level: LevelGoal, ParentID: sPtr("g2")},
	}

	tests := []struct {
		name     string
		goals    []Goal
		parentID *string
		level    Level
		want     string
	}{
		{name: "first root", goals: nil, level: LevelObjective, want: "1"},
		{name: "next root", goals: goals, level: LevelObjective, want: "11"},
		{name: "first child", goals: goals, parentID: sPtr("g1"), level: LevelGoal, want: "1.1"},
		{name: "next child skips unparseable", goals: goals, parentID: sPtr("g2"), level: LevelGoal, want: "2.4"},
		{name: "sub-goal", goals: goals, parentID: sPtr("g2-3"), level: LevelSubGoal, want: "2.3.2"},
		{name: "nil parent is root", goals: goals, level: LevelGoal, want: "1"},
		{name: "missing parent without siblings", goals: goals, parentID: sPtr("ghost"), level: LevelGoal, want: "1"},
		{
			name: "missing parent with siblings",
			goals: []Goal{
				{ID: "c1", GoalNumber: "4.1", Level: LevelGoal, ParentID: sPtr("ghost")},
				{ID: "c2", GoalNumber: "4.2", Level: LevelGoal, ParentID: sPtr("ghost")},
			},
			parentID: sPtr("ghost"), level: LevelGoal, want: "4.3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextGoalNumber(tt.goals, tt.parentID, tt.level))
		})
	}
}

func TestNextGoalNumber_scenario(t *testing.T) {
	goals := []Goal{{ID: "g1", GoalNumber: "1", Level: LevelObjective}}

	second := NextGoalNumber(goals, nil, LevelObjective)
	assert.Equal(t, "2", second)
	goals = append(goals, Goal{ID: "g2", GoalNumber: second, Level: LevelObjective})

	assert.Equal(t, "2.1", NextGoalNumber(goals, sPtr("g2"), LevelGoal))
}

func TestNextGoalNumber_neverDuplicatesSerially(t *testing.T) {
	goals := []Goal{{ID: "root", GoalNumber: "3", Level: LevelObjective}}
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		n := NextGoalNumber(goals, sPtr("root"), LevelGoal)
		assert.Falsef(t, seen[n], "duplicate number %s", n)
		seen[n] = true
		goals = append(goals, Goal{ID: n, GoalNumber: n, Level: LevelGoal, ParentID: sPtr("root")})
	}
	assert.True(t, seen["3.25"])
}

func TestCompareGoalNumbers(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "1", 0},
		{"2", "10", -1},
		{"10", "2", 1},
		{"1.2", "1.10", -1},
		{"1", "1.0", 0},
		{"1", "1.1", -1},
		{"2.1", "1.9", 1},
		{"x", "0", 0},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, CompareGoalNumbers(tt.a, tt.b), "CompareGoalNumbers(%q, %q)", tt.a, tt.b)
	}
}
