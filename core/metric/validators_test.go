package metric

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kipimo/core"
)

func newValidate() (*validator.Validate, func(err error) map[string]string) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	fields := func(err error) map[string]string {
		got := make(map[string]string)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return got
		}
		for _, fe := range verrs {
			got[fe.Field()] = fe.Translate(translator)
		}
		return got
	}
	return validate, fields
}

func TestNewMetric_Validate(t *testing.T) {
	validate, fields := newValidate()

	valid := NewMetric{Name: "Graduation rate", MetricType: TypePercent}
	assert.NoError(t, valid.Validate(validate))

	invalid := NewMetric{
		Name:                   "  ",
		MetricType:             "gibberish",
		RiskThresholdCritical:  fPtr(0.9),
		RiskThresholdOffTarget: fPtr(0.8),
		Visualization:          Visualization{Config: GaugeConfig{Min: 10, Max: 0}},
	}
	err := invalid.Validate(validate)
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"name":                    "this field cannot be blank",
		"metric_type":             metricTypeText,
		"risk_threshold_critical": thresholdsOrderText,
		"visualization":           "gauge max must be greater than min",
	}, fields(err))
}

func TestUpdateValue_Validate(t *testing.T) {
	validate, fields := newValidate()

	assert.NoError(t, UpdateValue{Value: fPtr(0)}.Validate(validate))

	err := UpdateValue{}.Validate(validate)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"value": "this field is required"}, fields(err))
}
