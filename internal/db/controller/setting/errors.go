package setting

import (
	"errors"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrTranslationNotFound is returned when deleting a translation that does not exist.
	ErrTranslationNotFound = errors.New("translation not found")
	// ErrNoValueAvailable is returned when neither the requested nor the default language has a value.
	ErrNoValueAvailable = errors.New("no value available in the requested or default language")
	// ErrNotTranslatable is returned by translation calls on a kind stored without languages.
	ErrNotTranslatable = errors.New("setting kind is not translated")
	// ErrConstraintViolation is returned when the database rejects a write through a unique index.
	// The write path reports it as ErrTooManyForKey, which still unwraps to this error.
	ErrConstraintViolation = errors.New("storage constraint violation")
	// ErrUnknownKind is returned for a kind name that does not exist.
	ErrUnknownKind = errors.New("unknown setting kind")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = db.ErrDBNil
)

// Validation codes specific to settings.
const (
	// ErrTooManyForKey matches the cardinality failure with errors.Is.
	ErrTooManyForKey validation.Code = "too_many_for_key"
	// CodeKindMismatch rejects a value whose kind differs from the setting's kind.
	CodeKindMismatch validation.Code = "kind_mismatch"
)
