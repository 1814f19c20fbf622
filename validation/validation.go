// Package validation holds the document-shape rules shared by request
// binding and service-level checks.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sajag-gupta/riseup/domain"
)

var (
	once       sync.Once
	standalone *validator.Validate
)

var customRules = map[string]validator.Func{
	"role_signup": func(fl validator.FieldLevel) bool {
		r := domain.Role(fl.Field().String())
		return r == domain.RoleFan || r == domain.RoleArtist
	},
	"role": func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	},
	"item_type": func(fl validator.FieldLevel) bool {
		return domain.ItemType(fl.Field().String()).Valid()
	},
	"visibility": func(fl validator.FieldLevel) bool {
		v := domain.Visibility(fl.Field().String())
		return v == domain.VisibilityPublic || v == domain.VisibilitySubscribers
	},
	"tier": func(fl validator.FieldLevel) bool {
		return domain.Tier(fl.Field().String()).Valid()
	},
	"analytics_action": func(fl validator.FieldLevel) bool {
		a := domain.AnalyticsAction(fl.Field().String())
		for _, known := range domain.AnalyticsActions {
			if a == known {
				return true
			}
		}
		return false
	},
	"analytics_context": func(fl validator.FieldLevel) bool {
		c := domain.AnalyticsContext(fl.Field().String())
		for _, known := range domain.AnalyticsContexts {
			if c == known {
				return true
			}
		}
		return false
	},
	"future_date": func(fl validator.FieldLevel) bool {
		if t, ok := fl.Field().Interface().(time.Time); ok {
			return t.After(time.Now())
		}
		s := fl.Field().String()
		if s == "" {
			return true
		}
		t, err := time.Parse(time.RFC3339, s)
		return err == nil && t.After(time.Now())
	},
}

func register(v *validator.Validate) error {
	for tag, fn := range customRules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// Setup registers the custom tags on gin's binding validator so `binding`
// struct tags can use them.
func Setup() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return register(v)
}

// Struct validates s using `validate` struct tags.
func Struct(s interface{}) error {
	once.Do(func() {
		standalone = validator.New()
		if err := register(standalone); err != nil {
			panic(err)
		}
	})
	return standalone.Struct(s)
}

// Message flattens validator errors into one readable line. Other errors
// are returned as-is.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "url":
		return field + " must be a valid url"
	case "future_date":
		return field + " must be in the future"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
