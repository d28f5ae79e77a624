// Package i18n provides the language provider consumed by the translation layer:
// the default language, the language of the current request and BCP 47 code handling.
package i18n

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

var (
	// ErrInvalidLanguage is returned when a code is not a well-formed BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language code")
	// ErrUnsupportedLanguage is returned when a code is not in the configured language list.
	ErrUnsupportedLanguage = errors.New("language is not supported")
)

// Provider resolves the languages used when reading and writing translated values.
type Provider interface {
	// CurrentLanguage returns the language of the request carried by ctx,
	// or the default language when none was set.
	CurrentLanguage(ctx context.Context) string
	// DefaultLanguage returns the fallback language.
	DefaultLanguage() string
	// Normalize canonicalises a language code and checks it is accepted.
	Normalize(code string) (string, error)
}

type ctxKey struct{}

// WithLanguage returns a copy of ctx carrying the request language.
func WithLanguage(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, ctxKey{}, code)
}

// FromContext returns the request language stored by WithLanguage.
func FromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(ctxKey{}).(string)
	return code, ok && code != ""
}

// Languages is a static Provider built from configuration.
type Languages struct {
	def       string
	supported []language.Tag
	matcher   language.Matcher
}

// New creates a provider. An empty supported list accepts any well-formed code.
// The default language is always part of the supported list.
func New(defaultLanguage string, supported []string) (*Languages, error) {
	defTag, err := language.Parse(defaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("%w: default language %q", ErrInvalidLanguage, defaultLanguage)
	}

	l := &Languages{def: defTag.String()}

	if len(supported) == 0 {
		return l, nil
	}

	l.supported = append(l.supported, defTag)

	for _, code := range supported {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
		}

		if tag != defTag {
			l.supported = append(l.supported, tag)
		}
	}

	l.matcher = language.NewMatcher(l.supported)

	return l, nil
}

// DefaultLanguage implements Provider.
func (l *Languages) DefaultLanguage() string {
	return l.def
}

// CurrentLanguage implements Provider.
func (l *Languages) CurrentLanguage(ctx context.Context) string {
	if code, ok := FromContext(ctx); ok {
		if normalized, err := l.Normalize(code); err == nil {
			return normalized
		}
	}

	return l.def
}

// Normalize implements Provider.
func (l *Languages) Normalize(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
	}

	if len(l.supported) == 0 {
		return tag.String(), nil
	}

	for _, s := range l.supported {
		if s == tag {
			return tag.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag.String())
}

// Supported returns the configured language codes, default first.
// It is empty when any language is accepted.
func (l *Languages) Supported() []string {
	out := make([]string, 0, len(l.supported))
	for _, tag := range l.supported {
		out = append(out, tag.String())
	}

	return out
}

// Match picks the best language for an Accept-Language header value.
// It falls back to the default language.
func (l *Languages) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.def
	}

	if l.matcher == nil {
		return tags[0].String()
	}

	_, index, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return l.def
	}

	return l.supported[index].String()
}
