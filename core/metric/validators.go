package metric

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kipimo/core"
)

var (
	metricTypeTag  = "metrictype"
	metricTypeText = "invalid metric type"

	thresholdsOrderTag  = "thresholdsorder"
	thresholdsOrderText = "critical threshold must be lower than the off-target threshold"

	visualizationTag = "visualization"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(metricTypeTag, metricTypeValidation)
	core.RegisterCustomTranslation(validate, translator, metricTypeTag, metricTypeText)

	validate.RegisterStructValidation(metricStructValidation, NewMetric{}, UpdateMetric{})
	core.RegisterCustomTranslation(validate, translator, thresholdsOrderTag, thresholdsOrderText)
	_ = validate.RegisterTranslation(
		visualizationTag, translator,
		func(t ut.Translator) error { return t.Add(visualizationTag, "{0}", false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(visualizationTag, fe.Param())
			return s
		},
	)
}

func metricTypeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).IsValid()
}

// metricStructValidation does struct level validation on NewMetric and UpdateMetric.
func metricStructValidation(sl validator.StructLevel) {
	var (
		critical, offTarget *float64
		viz                 *Visualization
	)
	switch m := sl.Current().Interface().(type) {
	case NewMetric:
		critical, offTarget, viz = m.RiskThresholdCritical, m.RiskThresholdOffTarget, &m.Visualization
	case UpdateMetric:
		critical, offTarget, viz = m.RiskThresholdCritical, m.RiskThresholdOffTarget, m.Visualization
	default:
		return
	}

	if critical != nil && offTarget != nil && *critical >= *offTarget {
		sl.ReportError(*critical, "risk_threshold_critical", "RiskThresholdCritical", thresholdsOrderTag, "")
	}
	if viz != nil {
		if err := viz.Validate(); err != nil {
			sl.ReportError(viz.Type(), "visualization", "Visualization", visualizationTag, err.Error())
		}
	}
}

// Validate validates a NewMetric.
func (nm *NewMetric) Validate(validate *validator.Validate) error {
	return validate.Struct(nm)
}

// Validate validates an UpdateMetric.
func (um *UpdateMetric) Validate(validate *validator.Validate) error {
	return validate.Struct(um)
}

func (uv UpdateValue) Validate(validate *validator.Validate) error {
	return validate.Struct(uv)
}
