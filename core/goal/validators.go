package goal

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kipimo/core"
)

var (
	goalLevelTag  = "goallevel"
	goalLevelText = "level must be 0 (strategic objective), 1 (goal) or 2 (sub-goal)"

	displayModeTag  = "displaymode"
	displayModeText = "invalid display mode"

	customValueTag  = "customvalue"
	customValueText = "a custom value is required with the custom display mode"

	rootLevelTag  = "rootlevel"
	rootLevelText = "top-level goals must be at level 0 and only them"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(goalLevelTag, goalLevelValidation)
	core.RegisterCustomTranslation(validate, translator, goalLevelTag, goalLevelText)

	_ = validate.RegisterValidation(displayModeTag, displayModeValidation)
	core.RegisterCustomTranslation(validate, translator, displayModeTag, displayModeText)

	validate.RegisterStructValidation(goalStructValidation, NewGoal{}, UpdateGoal{})
	core.RegisterCustomTranslation(validate, translator, customValueTag, customValueText)
	core.RegisterCustomTranslation(validate, translator, rootLevelTag, rootLevelText)
}

func goalLevelValidation(fl validator.FieldLevel) bool {
	return Level(fl.Field().Int()).IsValid()
}

func displayModeValidation(fl validator.FieldLevel) bool {
	return DisplayMode(fl.Field().String()).IsValid()
}

// goalStructValidation does struct level validation on NewGoal and UpdateGoal.
func goalStructValidation(sl validator.StructLevel) {
	switch g := sl.Current().Interface().(type) {
	case NewGoal:
		if g.DisplayMode == DisplayCustom && g.CustomValue == "" {
			sl.ReportError(g.CustomValue, "overall_progress_custom_value", "CustomValue", customValueTag, "")
		}
		if g.Level != nil {
			isRoot := g.ParentID == nil
			if isRoot != (*g.Level == LevelObjective) {
				sl.ReportError(*g.Level, "level", "Level", rootLevelTag, "")
			}
		}
	case UpdateGoal:
		if g.DisplayMode != nil && *g.DisplayMode == DisplayCustom && g.CustomValue != nil && *g.CustomValue == "" {
			sl.ReportError(*g.CustomValue, "overall_progress_custom_value", "CustomValue", customValueTag, "")
		}
	}
}

// Validate cleans and validates a NewGoal.
func (ng *NewGoal) Validate(validate *validator.Validate) error {
	ng.Clean()
	return validate.Struct(ng)
}

// Validate cleans and validates an UpdateGoal.
func (ug *UpdateGoal) Validate(validate *validator.Validate) error {
	ug.Clean()
	return validate.Struct(ug)
}
