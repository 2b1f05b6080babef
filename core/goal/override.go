package goal

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
)

const MinOverrideReasonLen = 10

// ProgressOverride is a manual progress value replacing the calculated one.
type ProgressOverride struct {
	Value       *float64    `json:"value"`
	DisplayMode DisplayMode `json:"display_mode"`
	CustomValue string      `json:"custom_value"`
	Reason      string      `json:"reason"`
}

// Validate checks the override without touching any store.
func (o *ProgressOverride) Validate() error {
	o.Reason = core.CleanString(o.Reason)
	o.CustomValue = core.CleanString(o.CustomValue)

	var flds []core.FieldError
	if o.Value == nil {
		flds = append(flds, core.FieldError{Field: "value", Error: "this field is required"})
	} else if *o.Value < 0 || *o.Value > 100 {
		flds = append(flds, core.FieldError{Field: "value", Error: "value must be between 0 and 100"})
	}
	if o.DisplayMode != "" && !o.DisplayMode.IsValid() {
		flds = append(flds, core.FieldError{Field: "display_mode", Error: displayModeText})
	}
	if o.DisplayMode == DisplayCustom && o.CustomValue == "" {
		flds = append(flds, core.FieldError{Field: "custom_value", Error: customValueText})
	}
	if n := utf8.RuneCountInString(o.Reason); n < MinOverrideReasonLen {
		flds = append(flds, core.FieldError{
			Field: "reason",
			Error: fmt.Sprintf("please provide a reason of at least %d characters (currently %d)", MinOverrideReasonLen, n),
		})
	}

	if len(flds) > 0 {
		return core.NewValidationError(errors.New("invalid progress override"), flds...)
	}
	return nil
}
