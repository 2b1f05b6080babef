// Package report builds the district reports exported as CSV, JSON or YAML.
package report

import (
	"time"

	"github.com/trezcool/kipimo/core/dashboard"
	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
)

type GoalRow struct {
	GoalNumber     string           `json:"goal_number" yaml:"goal_number"`
	Level          string           `json:"level" yaml:"level"`
	Title          string           `json:"title" yaml:"title"`
	StatusDetail   string           `json:"status_detail" yaml:"status_detail"`
	Progress       int              `json:"progress" yaml:"progress"` // calculated from metrics
	Status         goal.Status      `json:"status" yaml:"status"`
	Override       *float64         `json:"override,omitempty" yaml:"override,omitempty"`
	OverrideReason string           `json:"override_reason,omitempty" yaml:"override_reason,omitempty"`
	Display        string           `json:"display" yaml:"display"`
	Bucket         dashboard.Bucket `json:"bucket,omitempty" yaml:"bucket,omitempty"` // empty without override or metrics
	MetricCount    int              `json:"metric_count" yaml:"metric_count"`
}

type MetricRow struct {
	GoalNumber   string           `json:"goal_number" yaml:"goal_number"`
	Name         string           `json:"name" yaml:"name"`
	MetricType   metric.Type      `json:"metric_type" yaml:"metric_type"`
	CurrentValue *float64         `json:"current_value" yaml:"current_value"`
	TargetValue  *float64         `json:"target_value" yaml:"target_value"`
	Unit         string           `json:"unit" yaml:"unit"`
	Status       metric.Status    `json:"status" yaml:"status"`
	Bucket       dashboard.Bucket `json:"bucket" yaml:"bucket"`
}

type Summary struct {
	District      string           `json:"district" yaml:"district"`
	Slug          string           `json:"slug" yaml:"slug"`
	StrategyCount int              `json:"strategy_count" yaml:"strategy_count"`
	GoalCount     int              `json:"goal_count" yaml:"goal_count"`
	SubGoalCount  int              `json:"sub_goal_count" yaml:"sub_goal_count"`
	MetricCount   int              `json:"metric_count" yaml:"metric_count"`
	LastActivity  *time.Time       `json:"last_activity" yaml:"last_activity"`
	Buckets       dashboard.Counts `json:"buckets" yaml:"buckets"`
}

// Report is everything exported about a district.
type Report struct {
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Summary     Summary     `json:"summary" yaml:"summary"`
	Goals       []GoalRow   `json:"goals" yaml:"goals"`
	Metrics     []MetricRow `json:"metrics" yaml:"metrics"`
}

// GoalRows builds one row per goal, in the given order. Goals need their metrics attached.
func GoalRows(goals []goal.Goal) []GoalRow {
	rows := make([]GoalRow, 0, len(goals))
	for _, g := range goals {
		// rows reflect the live calculation, not the last persisted one
		progress := goal.CalculateProgress(g)
		calculated := float64(progress)
		g.OverallProgress = &calculated
		bucket, _ := goal.ProgressBucket(g)
		rows = append(rows, GoalRow{
			GoalNumber:     g.GoalNumber,
			Level:          g.Level.String(),
			Title:          g.Title,
			StatusDetail:   g.StatusDetail,
			Progress:       progress,
			Status:         goal.StatusFor(progress, g.StatusDetail),
			Override:       g.OverallProgressOverride,
			OverrideReason: g.OverallProgressOverrideReason,
			Display:        goal.ResolveDisplay(g).Text,
			Bucket:         bucket,
			MetricCount:    len(g.Metrics),
		})
	}
	return rows
}

// MetricRows builds one row per metric of `goals`, metrics without thresholds falling back to `def`.
func MetricRows(goals []goal.Goal, def metric.Thresholds) []MetricRow {
	rows := make([]MetricRow, 0)
	for _, g := range goals {
		for _, m := range g.Metrics {
			rows = append(rows, MetricRow{
				GoalNumber:   g.GoalNumber,
				Name:         m.Name,
				MetricType:   m.MetricType,
				CurrentValue: m.CurrentValue,
				TargetValue:  m.TargetValue,
				Unit:         m.Unit,
				Status:       m.CurrentStatus(def),
				Bucket:       m.Status,
			})
		}
	}
	return rows
}

func newSummary(s district.Summary) Summary {
	return Summary{
		District:      s.Name,
		Slug:          s.Slug,
		StrategyCount: s.StrategyCount,
		GoalCount:     s.GoalCount,
		SubGoalCount:  s.SubGoalCount,
		MetricCount:   s.MetricCount,
		LastActivity:  s.LastActivity,
		Buckets:       s.Buckets,
	}
}

// Build assembles the report of a district from its goals (sorted, with metrics attached).
func Build(d district.District, goals []goal.Goal, def metric.Thresholds, now time.Time) Report {
	return Report{
		GeneratedAt: now,
		Summary:     newSummary(district.Summarize(d, goals)),
		Goals:       GoalRows(goals),
		Metrics:     MetricRows(goals, def),
	}
}
