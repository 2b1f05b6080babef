package metric

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

type VisualizationType string

const (
	VisualizationLine     VisualizationType = "line"
	VisualizationBar      VisualizationType = "bar"
	VisualizationGauge    VisualizationType = "gauge"
	VisualizationNumber   VisualizationType = "number"
	VisualizationProgress VisualizationType = "progress"
)

var ErrUnknownVisualization = errors.New("unknown visualization type")

// VisualizationConfig is implemented by every visualization variant.
type VisualizationConfig interface {
	VisualizationType() VisualizationType
	validate() error
}

type LineConfig struct {
	ShowTarget bool   `json:"show_target"`
	ShowPoints bool   `json:"show_points"`
	YAxisLabel string `json:"y_axis_label,omitempty"`
}

type BarConfig struct {
	Horizontal bool `json:"horizontal"`
	Stacked    bool `json:"stacked"`
	ShowTarget bool `json:"show_target"`
}

type GaugeConfig struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type NumberConfig struct {
	Prefix   string `json:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	Decimals int    `json:"decimals"`
}

type ProgressConfig struct {
	ShowPercentage bool `json:"show_percentage"`
}

func (LineConfig) VisualizationType() VisualizationType     { return VisualizationLine }
func (BarConfig) VisualizationType() VisualizationType      { return VisualizationBar }
func (GaugeConfig) VisualizationType() VisualizationType    { return VisualizationGauge }
func (NumberConfig) VisualizationType() VisualizationType   { return VisualizationNumber }
func (ProgressConfig) VisualizationType() VisualizationType { return VisualizationProgress }

func (LineConfig) validate() error     { return nil }
func (BarConfig) validate() error      { return nil }
func (ProgressConfig) validate() error { return nil }

func (c GaugeConfig) validate() error {
	if c.Max <= c.Min {
		return errors.New("gauge max must be greater than min")
	}
	return nil
}

func (c NumberConfig) validate() error {
	if c.Decimals < 0 || c.Decimals > 6 {
		return errors.New("number decimals must be between 0 and 6")
	}
	return nil
}

// Visualization is the chart configuration of a metric, a sum type keyed by visualization_type.
// The zero value means "no visualization".
type Visualization struct {
	Config VisualizationConfig
}

func NewVisualization(cfg VisualizationConfig) *Visualization {
	return &Visualization{Config: cfg}
}

func (v Visualization) Type() VisualizationType {
	if v.Config == nil {
		return ""
	}
	return v.Config.VisualizationType()
}

func (v Visualization) Validate() error {
	if v.Config == nil {
		return nil
	}
	return v.Config.validate()
}

type visualizationJSON struct {
	Type   VisualizationType `json:"visualization_type"`
	Config json.RawMessage   `json:"config,omitempty"`
}

func (v Visualization) MarshalJSON() ([]byte, error) {
	if v.Config == nil {
		return []byte("null"), nil
	}
	cfg, err := json.Marshal(v.Config)
	if err != nil {
		return nil, err
	}
	return json.Marshal(visualizationJSON{Type: v.Config.VisualizationType(), Config: cfg})
}

func (v *Visualization) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		v.Config = nil
		return nil
	}
	var raw visualizationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var cfg VisualizationConfig
	switch raw.Type {
	case VisualizationLine:
		cfg = new(LineConfig)
	case VisualizationBar:
		cfg = new(BarConfig)
	case VisualizationGauge:
		cfg = &GaugeConfig{Max: 100}
	case VisualizationNumber:
		cfg = new(NumberConfig)
	case VisualizationProgress:
		cfg = new(ProgressConfig)
	default:
		return errors.Wrap(ErrUnknownVisualization, fmt.Sprintf("%q", raw.Type))
	}
	if len(raw.Config) > 0 && string(raw.Config) != "null" {
		if err := json.Unmarshal(raw.Config, cfg); err != nil {
			return errors.Wrapf(err, "decoding %s config", raw.Type)
		}
	}

	// store values, not pointers, so that type switches stay simple
	switch c := cfg.(type) {
	case *LineConfig:
		v.Config = *c
	case *BarConfig:
		v.Config = *c
	case *GaugeConfig:
		v.Config = *c
	case *NumberConfig:
		v.Config = *c
	case *ProgressConfig:
		v.Config = *c
	}
	return nil
}

// Value implements driver.Valuer; the visualization is stored as JSON text.
func (v Visualization) Value() (driver.Value, error) {
	if v.Config == nil {
		return nil, nil
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (v *Visualization) Scan(src interface{}) error {
	var data []byte
	switch s := src.(type) {
	case nil:
		v.Config = nil
		return nil
	case string:
		data = []byte(s)
	case []byte:
		data = s
	default:
		return errors.Errorf("metric.Visualization: cannot scan %T", src)
	}
	if len(data) == 0 || string(data) == "null" {
		v.Config = nil
		return nil
	}
	return v.UnmarshalJSON(data)
}
