package setting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

const (
	siteField     = "site"
	keyField      = "key"
	kindField     = "kind"
	languageField = "language"
)

// Candidate is a setting about to be written, as seen by Validate.
// ID is zero for a new setting. KeyName is used when KeyID is zero.
type Candidate struct {
	ID       uint64
	SiteID   uint64
	KeyID    uint
	KeyName  string
	Kind     Kind
	Value    Value
	Language string

	// keepValue skips value rules on updates that leave the value alone.
	keepValue bool
	// lockKey share locks the key row until the write transaction ends,
	// a concurrent policy change of the key waits for the write.
	lockKey bool
}

// checked is a candidate that passed validation.
type checked struct {
	key      *models.Key
	value    Value
	language string
}

// TooManyForKey is the failure reported when a key allows a single value per site.
func TooManyForKey(keyName string) *validation.Error {
	return validation.Single(keyField, string(ErrTooManyForKey),
		fmt.Sprintf("The %s only allows a single value per site.", keyName),
		map[string]any{"key_name": keyName})
}

// Validate runs every write rule against c without writing: references,
// value rules of the kind, language and the key's cardinality policy.
// It returns nil, nil when c may be written.
func (r *GormRepository) Validate(ctx context.Context, c Candidate) (*validation.Error, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	verr, err := r.checkSite(ctx, c.SiteID)
	if err != nil {
		return nil, err
	}

	_, verr, err = r.validateWith(ctx, r.db.WithContext(ctx), c, verr)

	return verr, err
}

// checkSite asks the site directory about siteID. It runs outside of write
// transactions because the directory may use its own connection.
func (r *GormRepository) checkSite(ctx context.Context, siteID uint64) (*validation.Error, error) {
	if siteID == 0 {
		return validation.Single(siteField, validation.CodeRequired, "This field is required.", nil), nil
	}

	if _, err := r.sites.GetSite(ctx, siteID); err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return doesNotExist(siteField, "site", siteID), nil
		}

		return nil, fmt.Errorf("failed to look up site %d: %w", siteID, err)
	}

	return nil, nil //nolint:nilnil
}

// validateWith checks everything but the site through q, which is the write
// transaction on the write paths. base carries failures found earlier.
func (r *GormRepository) validateWith(
	ctx context.Context, q *gorm.DB, c Candidate, base *validation.Error,
) (checked, *validation.Error, error) {
	var (
		out  checked
		verr = validation.New().Merge(base)
	)

	k, err := r.lookupKey(q, c)
	if err != nil {
		return out, nil, err
	}

	switch {
	case k == nil && c.KeyID == 0 && c.KeyName == "":
		verr.Add(keyField, validation.FieldError{Code: validation.CodeRequired, Message: "This field is required."})
	case k == nil && c.KeyID != 0:
		verr.Merge(doesNotExist(keyField, "key", c.KeyID))
	case k == nil:
		verr.Merge(doesNotExist(keyField, "key", c.KeyName))
	}

	out.key = k

	if !c.Kind.Valid() {
		verr.Add(kindField, validation.FieldError{
			Code:    validation.CodeInvalid,
			Message: fmt.Sprintf("%q is not a valid kind.", string(c.Kind)),
		})

		return out, verr.OrNil(), nil
	}

	if !c.keepValue {
		out.value = c.Value
		if out.value == nil && c.Kind == KindBoolean {
			out.value = BooleanValue(true)
		}

		switch {
		case out.value == nil:
			verr.Add(valueField, validation.FieldError{Code: validation.CodeRequired, Message: "This field is required."})
		case out.value.Kind() != c.Kind:
			verr.Add(valueField, validation.FieldError{
				Code:    string(CodeKindMismatch),
				Message: fmt.Sprintf("Expected a %s value, got %s.", c.Kind.DisplayName(), out.value.Kind().DisplayName()),
				Params:  map[string]any{"expected": string(c.Kind), "got": string(out.value.Kind())},
			})
		default:
			verr.Merge(validateValue(out.value))
		}
	}

	if c.Kind.Translated() {
		lang, lerr := r.language(ctx, c.Language)
		if lerr != nil {
			verr.Add(languageField, validation.FieldError{
				Code:    validation.CodeInvalid,
				Message: fmt.Sprintf("%q is not an accepted language.", c.Language),
				Params:  map[string]any{"language": c.Language},
			})
		}

		out.language = lang
	}

	if k != nil && c.SiteID != 0 {
		tooMany, err := r.checkCardinality(q, k, c.SiteID, c.ID)
		if err != nil {
			return out, nil, err
		}

		verr.Merge(tooMany)
	}

	return out, verr.OrNil(), nil
}

// checkCardinality fails when k allows one setting per site and another
// setting than excludeID already exists for (siteID, k), whatever its kind.
func (r *GormRepository) checkCardinality(q *gorm.DB, k *models.Key, siteID, excludeID uint64) (*validation.Error, error) {
	if k.AllowMultiples {
		return nil, nil
	}

	count, err := countForKey(q, siteID, k.ID, excludeID)
	if err != nil {
		return nil, err
	}

	if count > 0 {
		return TooManyForKey(k.Name), nil
	}

	return nil, nil
}

func (r *GormRepository) lookupKey(q *gorm.DB, c Candidate) (*models.Key, error) {
	var (
		k   models.Key
		err error
	)

	if c.lockKey {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthShare})
	}

	switch {
	case c.KeyID != 0:
		err = q.First(&k, c.KeyID).Error
	case c.KeyName != "":
		err = q.Where("name = ?", c.KeyName).First(&k).Error
	default:
		return nil, nil //nolint:nilnil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &k, nil
}

func countForKey(q *gorm.DB, siteID uint64, keyID uint, excludeID uint64) (int64, error) {
	var count int64

	tx := q.Model(&models.Setting{}).Where("site_id = ? AND key_id = ?", siteID, keyID)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}

	if err := tx.Count(&count).Error; err != nil {
		return 0, err //nolint:wrapcheck
	}

	return count, nil
}

func doesNotExist(field, what string, ref any) *validation.Error {
	return validation.Single(field, validation.CodeDoesNotExist,
		fmt.Sprintf("Select a valid %s. %v is not one of the available choices.", what, ref),
		map[string]any{"value": ref})
}

func isTooManyForKey(err error) bool {
	return errors.Is(err, ErrTooManyForKey)
}

func isValidation(err error) bool {
	return errors.Is(err, validation.ErrInvalid)
}
