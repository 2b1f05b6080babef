package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kipimo/core/dashboard"
	"github.com/trezcool/kipimo/core/metric"
)

func TestProgressColor(t *testing.T) {
	tests := []struct {
		value float64
		want  Color
	}{
		{100, ColorGreen},
		{80, ColorGreen},
		{79.9, ColorYellow},
		{60, ColorYellow},
		{59, ColorOrange},
		{40, ColorOrange},
		{39.99, ColorRed},
		{0, ColorRed},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, ProgressColor(tt.value), "ProgressColor(%v)", tt.value)
	}
}

func TestQualitativeLabel(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{95, "Excellent"},
		{90, "Excellent"},
		{89, "Great"},
		{80, "Great"},
		{79, "Good"},
		{70, "Good"},
		{69, "Off Target"},
		{40, "Off Target"},
		{39, "Critical"},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, QualitativeLabel(tt.value), "QualitativeLabel(%v)", tt.value)
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, "4.25", Score(85).StringFixed(2))
	assert.Equal(t, "5.00", Score(100).StringFixed(2))
	assert.Equal(t, "0.00", Score(0).StringFixed(2))
	assert.Equal(t, "3.37", Score(67.3).StringFixed(2))
}

func TestEffectiveProgress(t *testing.T) {
	assert.Equal(t, 85.0, EffectiveProgress(Goal{OverallProgress: fPtr(60), OverallProgressOverride: fPtr(85)}))
	assert.Equal(t, 60.0, EffectiveProgress(Goal{OverallProgress: fPtr(60)}))
	assert.Equal(t, 0.0, EffectiveProgress(Goal{}))
	assert.Equal(t, 0.0, EffectiveProgress(Goal{OverallProgress: fPtr(60), OverallProgressOverride: fPtr(0)}))
}

func TestProgressBucket(t *testing.T) {
	withMetric := []metric.Metric{{CurrentValue: fPtr(45), TargetValue: fPtr(50)}}
	tests := []struct {
		name   string
		g      Goal
		want   dashboard.Bucket
		wantOk bool
	}{
		{name: "nothing to bucket", g: Goal{}, wantOk: false},
		{name: "stale persisted progress only", g: Goal{OverallProgress: fPtr(90)}, wantOk: false},
		{name: "metrics", g: Goal{Metrics: withMetric}, want: dashboard.BucketOnTrack, wantOk: true},
		{name: "override wins", g: Goal{Metrics: withMetric, OverallProgressOverride: fPtr(100)}, want: dashboard.BucketComplete, wantOk: true},
		{name: "zero override", g: Goal{OverallProgressOverride: fPtr(0)}, want: dashboard.BucketCritical, wantOk: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProgressBucket(tt.g)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDisplay(t *testing.T) {
	overridden := func(mode DisplayMode) Goal {
		return Goal{
			OverallProgress:            fPtr(60),
			OverallProgressOverride:    fPtr(85),
			OverallProgressDisplayMode: mode,
			OverallProgressCustomValue: "Ahead of plan",
		}
	}

	tests := []struct {
		name string
		goal Goal
		want Display
	}{
		{
			name: "percentage",
			goal: overridden(DisplayPercentage),
			want: Display{Mode: DisplayPercentage, Visible: true, ShowBar: true, Text: "85%", Value: 85, Color: ColorGreen},
		},
		{
			name: "qualitative",
			goal: overridden(DisplayQualitative),
			want: Display{Mode: DisplayQualitative, Visible: true, ShowBar: true, Text: "Great", Value: 85, Color: ColorGreen},
		},
		{
			name: "score",
			goal: overridden(DisplayScore),
			want: Display{Mode: DisplayScore, Visible: true, ShowBar: true, Text: "4.25/5.00", Value: 85, Color: ColorGreen},
		},
		{
			name: "custom",
			goal: overridden(DisplayCustom),
			want: Display{Mode: DisplayCustom, Visible: true, ShowBar: true, Text: "Ahead of plan", Value: 85, Color: ColorGreen},
		},
		{
			name: "color only",
			goal: overridden(DisplayColorOnly),
			want: Display{Mode: DisplayColorOnly, Visible: true, ShowBar: true, Value: 85, Color: ColorGreen},
		},
		{
			name: "hidden",
			goal: overridden(DisplayHidden),
			want: Display{Mode: DisplayHidden},
		},
		{
			name: "no override falls back to calculated",
			goal: Goal{OverallProgress: fPtr(60), OverallProgressDisplayMode: DisplayPercentage},
			want: Display{Mode: DisplayPercentage, Visible: true, ShowBar: true, Text: "60%", Value: 60, Color: ColorYellow},
		},
		{
			name: "unknown mode renders as percentage",
			goal: Goal{OverallProgress: fPtr(42.5)},
			want: Display{Mode: DisplayPercentage, Visible: true, ShowBar: true, Text: "43%", Value: 42.5, Color: ColorOrange},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDisplay(tt.goal))
		})
	}
}
