// Package validator wraps go-playground/validator for request bodies.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"param,omitempty"`
}

// ValidationError carries every failed field of one request body.
type ValidationError struct {
	Fields []*ErrorResponse
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Value != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", f.FailedField, f.Tag, f.Value))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", f.FailedField, f.Tag))
	}
	return strings.Join(msgs, "; ")
}

var (
	validate          = validator.New()
	discountValueExpr = regexp.MustCompile(`^\d+(\.\d+)?%?$`)
)

func init() {
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// "15%" or "10000"
	_ = validate.RegisterValidation("discount_value", func(fl validator.FieldLevel) bool {
		return discountValueExpr.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}

// ValidateStruct returns the failed fields of data, or nil.
func ValidateStruct(data interface{}) []*ErrorResponse {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{FailedField: "body", Tag: "invalid"}}
	}
	out := make([]*ErrorResponse, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &ErrorResponse{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}
	return out
}

// EchoValidator plugs ValidateStruct into echo.Echo.Validator.
type EchoValidator struct{}

func (EchoValidator) Validate(i interface{}) error {
	if fields := ValidateStruct(i); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
