// Package validate wraps go-playground/validator with the request rules used
// by the HTTP handlers.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidationError maps JSON field names to the rule they failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so clients see the fields they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerRules(v)

	return &Validator{validate: v}
}

// Struct validates s and returns a *ValidationError on failure.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldName(fe)] = fe.Tag()
	}
	return out
}

// fieldName strips the struct prefix and any slice index from the namespace,
// so "req.dietGoals[2]" becomes "dietGoals".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func registerRules(v *validator.Validate) {
	rules := map[string]validator.Func{
		"simpleemail": func(fl validator.FieldLevel) bool {
			return domain.IsValidEmail(strings.TrimSpace(fl.Field().String()))
		},
		"dietgoal": func(fl validator.FieldLevel) bool {
			return domain.DietGoal(fl.Field().String()).IsValid()
		},
		"allergy": func(fl validator.FieldLevel) bool {
			return domain.Allergy(fl.Field().String()).IsValid()
		},
	}
	for tag, fn := range rules {
		// Registration only fails for empty tags or nil funcs.
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
}
