package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kipimo/core/metric"
)

func fPtr(f float64) *float64 { return &f }

func withMetrics(values ...[2]*float64) Goal {
	g := Goal{ID: "g", GoalNumber: "1"}
	for _, v := range values {
		g.Metrics = append(g.Metrics, metric.Metric{CurrentValue: v[0], TargetValue: v[1]})
	}
	return g
}

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name string
		goal Goal
		want int
	}{
		{name: "no metrics", goal: Goal{}, want: 0},
		{name: "half way", goal: withMetrics([2]*float64{fPtr(50), fPtr(100)}), want: 50},
		{name: "capped", goal: withMetrics([2]*float64{fPtr(150), fPtr(100)}), want: 100},
		{
			name: "ignores incomplete metrics",
			goal: withMetrics(
				[2]*float64{nil, fPtr(100)},
				[2]*float64{fPtr(10), nil},
				[2]*float64{fPtr(10), fPtr(0)},
				[2]*float64{fPtr(30), fPtr(100)},
			),
			want: 30,
		},
		{name: "only incomplete metrics", goal: withMetrics([2]*float64{nil, fPtr(100)}), want: 0},
		{
			name: "cap applies per metric",
			goal: withMetrics([2]*float64{fPtr(300), fPtr(100)}, [2]*float64{fPtr(0), fPtr(100)}),
			want: 50,
		},
		{
			name: "rounds half up",
			goal: withMetrics([2]*float64{fPtr(1), fPtr(2)}, [2]*float64{fPtr(2), fPtr(2)}, [2]*float64{fPtr(2), fPtr(2)}, [2]*float64{fPtr(3), fPtr(100)}),
			want: 63, // (50+100+100+3)/4 = 63.25
		},
		{name: "negative values floor at 0", goal: withMetrics([2]*float64{fPtr(-20), fPtr(100)}), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateProgress(tt.goal))
		})
	}
}

func TestCalculateProgress_noRollUp(t *testing.T) {
	child := withMetrics([2]*float64{fPtr(90), fPtr(100)})
	child.ID, child.ParentID = "child", sPtr("parent")
	parent := Goal{ID: "parent", GoalNumber: "1"}

	roots := BuildHierarchy([]Goal{parent, child})
	assert.Equal(t, 0, CalculateProgress(roots[0].Goal))
	assert.Equal(t, 90, CalculateProgress(roots[0].Children[0].Goal))
}

func TestCalculateProgress_lincoln(t *testing.T) {
	g := withMetrics([2]*float64{fPtr(40), fPtr(50)}, [2]*float64{fPtr(90), fPtr(100)})
	assert.Equal(t, 85, CalculateProgress(g))
	assert.Equal(t, StatusOnTrack, GetStatus(g))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		progress int
		detail   string
		want     Status
	}{
		{100, "", StatusCompleted},
		{99, "", StatusOnTrack},
		{70, "", StatusOnTrack},
		{69, "", StatusAtRisk},
		{40, "", StatusAtRisk},
		{39, "", StatusCritical},
		{0, "", StatusCritical},
		{0, StatusDetailCompleted, StatusCompleted},
		{55, StatusDetailOnHold, StatusAtRisk},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, StatusFor(tt.progress, tt.detail), "StatusFor(%d, %q)", tt.progress, tt.detail)
	}
}

func TestGetStatus_completedDetail(t *testing.T) {
	g := Goal{StatusDetail: StatusDetailCompleted}
	assert.Equal(t, StatusCompleted, GetStatus(g))
}
