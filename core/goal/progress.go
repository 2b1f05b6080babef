package goal

import "github.com/trezcool/kipimo/core"

// Status is the goal-level status derived from its progress.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusOnTrack   Status = "on-track"
	StatusAtRisk    Status = "at-risk"
	StatusCritical  Status = "critical"
)

// fixed, unlike metric thresholds
const (
	completedThreshold = 100
	onTrackThreshold   = 70
	atRiskThreshold    = 40
)

// CalculateProgress averages the progress of the metrics attached to `g`, each capped at 100,
// and rounds it to an integer in [0, 100].
// Metrics without a current value, a target or with a zero target are ignored.
// Child goals are not rolled up: a goal without metrics of its own has no progress.
func CalculateProgress(g Goal) int {
	var (
		sum   float64
		count int
	)
	for _, m := range g.Metrics {
		if p, ok := m.Progress(); ok {
			sum += p
			count++
		}
	}
	if count == 0 {
		return 0
	}
	avg := int(core.Round(sum / float64(count)))
	if avg < 0 {
		return 0
	}
	return avg
}

// GetStatus classifies `g` from its calculated progress, unless it is explicitly completed.
func GetStatus(g Goal) Status {
	return StatusFor(CalculateProgress(g), g.StatusDetail)
}

// StatusFor classifies a progress value.
func StatusFor(progress int, statusDetail string) Status {
	switch {
	case statusDetail == StatusDetailCompleted || progress >= completedThreshold:
		return StatusCompleted
	case progress >= onTrackThreshold:
		return StatusOnTrack
	case progress >= atRiskThreshold:
		return StatusAtRisk
	default:
		return StatusCritical
	}
}
