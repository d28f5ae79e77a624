package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// TagSlug validates letters, digits, underscores and hyphens only.
	TagSlug = "slug"
	// TagSiteURL validates an absolute http(s) or ftp(s) URL with a host.
	TagSiteURL = "siteurl"
)

var (
	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	allowedURLSchemes = map[string]struct{}{
		"http":  {},
		"https": {},
		"ftp":   {},
		"ftps":  {},
	}

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so field errors line up with API payloads
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0] //nolint:mnd
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation(TagSlug, func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation(TagSiteURL, func(fl validator.FieldLevel) bool {
		return IsSiteURL(fl.Field().String())
	})

	return v
}

// IsSlug reports whether s is a valid slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// IsSiteURL reports whether s is an absolute URL with an accepted scheme and a host.
func IsSiteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	if _, ok := allowedURLSchemes[strings.ToLower(u.Scheme)]; !ok {
		return false
	}

	return u.Host != ""
}

// Struct runs the validator tags of data and converts failures into an *Error.
// It returns nil when data is valid.
func Struct(data any) *Error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return Single("__all__", CodeInvalid, err.Error(), nil)
	}

	out := New()
	for _, fe := range validationErrors {
		out.Add(fe.Field(), toFieldError(fe))
	}

	return out
}

func toFieldError(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required":
		return FieldError{Code: CodeRequired, Message: "This field is required."}
	case "max":
		limit, _ := strconv.Atoi(fe.Param())
		shown := 0

		if s, ok := fe.Value().(string); ok {
			shown = utf8.RuneCountInString(s)
		}

		return MaxLengthError(limit, shown)
	case "email":
		return FieldError{Code: CodeInvalid, Message: "Enter a valid email address."}
	case TagSiteURL:
		return FieldError{Code: CodeInvalid, Message: "Enter a valid URL."}
	case TagSlug:
		return FieldError{
			Code:    CodeInvalid,
			Message: "Enter a valid 'slug' consisting of letters, numbers, underscores or hyphens.",
		}
	default:
		return FieldError{
			Code:    CodeInvalid,
			Message: fmt.Sprintf("Enter a valid value (failed rule %q).", fe.Tag()),
			Params:  map[string]any{"rule": fe.Tag()},
		}
	}
}

// MaxLengthError builds the failure for a string longer than limit characters.
func MaxLengthError(limit, shown int) FieldError {
	return FieldError{
		Code:    CodeMaxLength,
		Message: fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", limit, shown),
		Params:  map[string]any{"limit_value": limit, "show_value": shown},
	}
}
