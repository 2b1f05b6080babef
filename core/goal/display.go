package goal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/dashboard"
)

type DisplayMode string

const (
	DisplayPercentage  DisplayMode = "percentage"
	DisplayQualitative DisplayMode = "qualitative"
	DisplayScore       DisplayMode = "score"
	DisplayCustom      DisplayMode = "custom"
	DisplayColorOnly   DisplayMode = "color-only"
	DisplayHidden      DisplayMode = "hidden"

	DefaultDisplayMode = DisplayPercentage
)

var DisplayModes = []DisplayMode{
	DisplayPercentage, DisplayQualitative, DisplayScore, DisplayCustom, DisplayColorOnly, DisplayHidden,
}

func (m DisplayMode) IsValid() bool {
	for _, dm := range DisplayModes {
		if m == dm {
			return true
		}
	}
	return false
}

// Color is a progress color token.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
)

// ProgressColor maps a progress value to its color: >=80 green, >=60 yellow, >=40 orange, else red.
// Both the override preview and the goal display use it.
func ProgressColor(value float64) Color {
	switch {
	case value >= 80:
		return ColorGreen
	case value >= 60:
		return ColorYellow
	case value >= 40:
		return ColorOrange
	default:
		return ColorRed
	}
}

// QualitativeLabel maps a progress value to its label:
// >=90 Excellent, >=80 Great, >=70 Good, >=40 Off Target, else Critical.
func QualitativeLabel(value float64) string {
	switch {
	case value >= 90:
		return "Excellent"
	case value >= 80:
		return "Great"
	case value >= 70:
		return "Good"
	case value >= 40:
		return "Off Target"
	default:
		return "Critical"
	}
}

// Score converts a 0-100 progress value to a 0-5 score, rounded to 2 decimals.
func Score(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Div(decimal.NewFromInt(20)).Round(2)
}

// EffectiveProgress is the override when set, else the calculated progress, else 0.
func EffectiveProgress(g Goal) float64 {
	if g.OverallProgressOverride != nil {
		return *g.OverallProgressOverride
	}
	if g.OverallProgress != nil {
		return *g.OverallProgress
	}
	return 0
}

// ProgressBucket is the dashboard bucket of a goal: its override when set, else its calculated
// progress. A goal with neither an override nor metrics has nothing to bucket.
func ProgressBucket(g Goal) (dashboard.Bucket, bool) {
	if g.HasOverride() {
		return dashboard.BucketFor(*g.OverallProgressOverride), true
	}
	if len(g.Metrics) == 0 {
		return "", false
	}
	return dashboard.BucketFor(float64(CalculateProgress(g))), true
}

// Display is how the progress of a goal renders.
type Display struct {
	Mode    DisplayMode `json:"mode"`
	Visible bool        `json:"visible"`
	ShowBar bool        `json:"show_bar"`
	Text    string      `json:"text"`
	Value   float64     `json:"value"` // fills the bar
	Color   Color       `json:"color"`
}

// ResolveDisplay resolves the displayed progress of `g` from its display mode.
func ResolveDisplay(g Goal) Display {
	mode := g.OverallProgressDisplayMode
	if !mode.IsValid() {
		mode = DefaultDisplayMode
	}
	if mode == DisplayHidden {
		return Display{Mode: mode}
	}

	value := EffectiveProgress(g)
	d := Display{
		Mode:    mode,
		Visible: true,
		ShowBar: true,
		Value:   value,
		Color:   ProgressColor(value),
	}
	switch mode {
	case DisplayPercentage:
		d.Text = fmt.Sprintf("%d%%", int(core.Round(value)))
	case DisplayQualitative:
		d.Text = QualitativeLabel(value)
	case DisplayScore:
		d.Text = Score(value).StringFixed(2) + "/5.00"
	case DisplayCustom:
		d.Text = g.OverallProgressCustomValue
	case DisplayColorOnly:
		d.Text = ""
	}
	return d
}
