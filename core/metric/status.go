package metric

// Status is the per-metric status computed from actual vs. target.
type Status string

const (
	StatusOnTarget  Status = "on-target"
	StatusOffTarget Status = "off-target"
	StatusCritical  Status = "critical"
	StatusNoData    Status = "no-data"
)

// Thresholds are ratios of actual/target. For higher-is-better metrics a ratio >= OnTarget is
// on-target and a ratio >= OffTarget is off-target. Lower-is-better metrics mirror them around 1.0.
type Thresholds struct {
	OnTarget  float64 `json:"on_target" yaml:"on_target"`
	OffTarget float64 `json:"off_target" yaml:"off_target"`
}

// DefaultThresholds are used when the configuration does not provide any.
var DefaultThresholds = Thresholds{OnTarget: 0.95, OffTarget: 0.8}

func (t Thresholds) orDefault(def Thresholds) Thresholds {
	if t.OnTarget <= 0 {
		t.OnTarget = def.OnTarget
	}
	if t.OffTarget <= 0 {
		t.OffTarget = def.OffTarget
	}
	return t
}

// ResolveStatus classifies a metric value. A missing value or a zero target yields no-data.
func ResolveStatus(actual, target *float64, higherIsBetter bool, t Thresholds) Status {
	if actual == nil || target == nil || *target == 0 {
		return StatusNoData
	}
	ratio := *actual / *target

	if higherIsBetter {
		switch {
		case ratio >= t.OnTarget:
			return StatusOnTarget
		case ratio >= t.OffTarget:
			return StatusOffTarget
		default:
			return StatusCritical
		}
	}

	switch {
	case ratio <= 2-t.OnTarget:
		return StatusOnTarget
	case ratio <= 2-t.OffTarget:
		return StatusOffTarget
	default:
		return StatusCritical
	}
}
