// internal/payload/validate.go
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"audit-dashboard/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors match what the caller sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads and decodes an audit payload from r. Malformed JSON fails fast
// with a ValidationError. A field of the wrong JSON type is reported against
// that field, alongside every schema failure in the rest of the payload: the
// decoder keeps filling the remaining fields past a type mismatch, so they
// can still be validated and reported in the same response.
func Decode(r io.Reader) (*Audit, error) {
	var a Audit
	dec := json.NewDecoder(r)
	if err := dec.Decode(&a); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, apperr.NewValidation("(body)", "invalid JSON")
		}
		field := typeErr.Field
		if field == "" {
			field = "(root)"
		}
		fields := []apperr.FieldError{{
			Field:  field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}}
		var verr *apperr.ValidationError
		if errors.As(Validate(&a), &verr) {
			for _, fe := range verr.Fields {
				// The mismatched field was left zero, skip its knock-on
				// "required" failure.
				if fe.Field == field {
					continue
				}
				fields = append(fields, fe)
			}
		}
		return nil, &apperr.ValidationError{Fields: fields}
	}
	return &a, nil
}

// Validate checks the payload against the audit schema and returns every
// failing field at once, so callers can fix all of them before retrying.
func Validate(a *Audit) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewValidation("(payload)", err.Error())
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:  fieldPath(fe),
			Reason: reason(fe),
		})
	}
	return &apperr.ValidationError{Fields: fields}
}

// fieldPath strips the root struct name from validator's namespace, leaving
// the payload's JSON path (e.g. "findings[0].severity").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
