package applet

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	resonateerrors "github.com/MauliQT/resonate/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	appletIDPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	pluginNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("applet_id", func(fl validator.FieldLevel) bool {
			return appletIDPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("plugin_name", func(fl validator.FieldLevel) bool {
			return pluginNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate performs schema and structural validation on an applet
// definition. The invariant is at least one input and one output stage;
// modifiers and triggers are optional.
func Validate(a *Applet) error {
	if a == nil {
		return resonateerrors.NewValidationError("applet", "definition is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(a); err != nil {
		return convertValidationError(err)
	}

	if len(a.Inputs) == 0 {
		return resonateerrors.NewValidationError("inputs", "at least one input stage is required", nil)
	}
	if len(a.Outputs) == 0 {
		return resonateerrors.NewValidationError("outputs", "at least one output stage is required", nil)
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return resonateerrors.NewValidationError(field, msg, err)
	}

	return resonateerrors.NewValidationError("applet", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
