package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Error carries per-field validation messages keyed by the field's json name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field builds an Error for a single field.
func Field(name, message string) *Error {
	return &Error{Fields: map[string]string{name: message}}
}

// AsError returns the validation error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return IsSlug(fl.Field().String())
		})
		_ = v.RegisterValidation("flagkey", func(fl validator.FieldLevel) bool {
			return IsFlagKey(fl.Field().String())
		})
		_ = v.RegisterValidationCtx("year", func(ctx context.Context, fl validator.FieldLevel) bool {
			y := fl.Field().Int()
			return y >= 0 && y <= int64(maxYear(nowFrom(ctx), fl.Param()))
		})
		instance = v
	})
	return instance
}

type nowKey struct{}

// WithNow fixes the time that clock-relative rules such as year compare against.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, now)
}

func nowFrom(ctx context.Context) time.Time {
	if t, ok := ctx.Value(nowKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// maxYear is the latest year accepted by year=<ahead>.
func maxYear(now time.Time, ahead string) int {
	n, _ := strconv.Atoi(ahead)
	return now.Year() + n
}

// Struct validates s using its `validate` tags and returns an *Error describing
// every failing field, or nil.
func Struct(s any) error {
	return StructCtx(context.Background(), s)
}

// StructCtx is Struct with a context carried into context-aware rules.
func StructCtx(ctx context.Context, s any) error {
	err := get().StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe, nowFrom(ctx))
	}
	return out
}

func message(fe validator.FieldError, now time.Time) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must contain only lowercase letters, digits and dashes"
	case "flagkey":
		return "must match [a-z0-9_.-]{1,64}"
	case "isbn":
		return "must be a valid ISBN-10 or ISBN-13"
	case "year":
		return fmt.Sprintf("must be between 0 and %d", maxYear(now, fe.Param()))
	default:
		return "is invalid"
	}
}

// IsSlug reports whether s is a lowercase dash-separated slug.
func IsSlug(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// IsFlagKey reports whether s is a valid feature flag key.
func IsFlagKey(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' && c != '.' && c != '-' {
			return false
		}
	}
	return true
}
