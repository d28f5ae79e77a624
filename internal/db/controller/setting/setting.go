// Package setting stores typed, optionally translated settings per site and key.
//
// Every setting shares one envelope row (site, key, weight, kind). The value
// lives in the value table of its kind, or for translated kinds in one
// translation row per language.
package setting

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
	"github.com/GoSiteSettings/GoSiteSettings/internal/logger"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

// KeyRef is the part of a key carried by a setting.
type KeyRef struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	AllowMultiples bool   `json:"allow_multiples"`
}

// Setting is the kind independent handle of a stored setting.
// For translated kinds Value is resolved for the requested language and
// Language tells which language it came from; Value is nil when neither
// the requested nor the default language has one.
type Setting struct {
	ID        uint64
	SiteID    uint64
	SiteName  string
	Key       KeyRef
	Weight    int
	Kind      Kind
	Value     Value
	Language  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KindName is the display name of the setting's kind.
func (s *Setting) KindName() string {
	return s.Kind.DisplayName()
}

// CreateInput describes a new setting. The key is given by KeyID or KeyName.
// Language applies to translated kinds and defaults to the request language.
type CreateInput struct {
	SiteID   uint64
	KeyID    uint
	KeyName  string
	Kind     Kind
	Value    Value
	Weight   int
	Language string
}

// Changes lists the envelope fields and value to update. Nil fields are kept.
// Language selects the translation a new Value is written to.
type Changes struct {
	SiteID   *uint64
	KeyID    *uint
	Weight   *int
	Value    Value
	Language string
}

// Filter narrows ListSettings. Zero fields do not filter.
// Language resolves translated values, falling back to the default language;
// with TranslatedOnly translated settings without a value in Language are skipped.
type Filter struct {
	SiteID         uint64
	KeyID          uint
	KeyName        string
	Kind           Kind
	Language       string
	TranslatedOnly bool
	PageSize       int
}

// Repository is the read, write and validate API of the settings store.
type Repository interface {
	CreateSetting(ctx context.Context, in CreateInput) (*Setting, error)
	GetSetting(ctx context.Context, id uint64) (*Setting, error)
	UpdateSetting(ctx context.Context, id uint64, changes Changes) (*Setting, error)
	DeleteSetting(ctx context.Context, id uint64) error

	SetTranslation(ctx context.Context, id uint64, lang string, v Value) error
	GetTranslation(ctx context.Context, id uint64, lang string) (Value, string, error)
	DeleteTranslation(ctx context.Context, id uint64, lang string) error
	Translations(ctx context.Context, id uint64) (map[string]Value, error)

	ListSettings(ctx context.Context, f Filter) iter.Seq2[*Setting, error]
	CountForKey(ctx context.Context, siteID uint64, keyID uint) (int64, error)

	Validate(ctx context.Context, c Candidate) (*validation.Error, error)
}

// GormRepository implements Repository with gorm.
type GormRepository struct {
	db    *gorm.DB
	sites site.Directory
	langs i18n.Provider
	log   zerolog.Logger
}

var _ Repository = (*GormRepository)(nil)

// NewRepository returns a repository on gdb. Sites are resolved through sites
// and languages through langs.
func NewRepository(gdb *gorm.DB, sites site.Directory, langs i18n.Provider) *GormRepository {
	return &GormRepository{
		db:    gdb,
		sites: sites,
		langs: langs,
		log:   logger.Component("setting"),
	}
}

// CreateSetting validates in and stores it in one transaction.
func (r *GormRepository) CreateSetting(ctx context.Context, in CreateInput) (_ *Setting, err error) {
	defer func() { observeWrite("create", err) }()

	if r.db == nil {
		return nil, ErrDBNil
	}

	siteErr, err := r.checkSite(ctx, in.SiteID)
	if err != nil {
		return nil, err
	}

	var (
		row models.Setting
		ok  checked
	)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var verr *validation.Error

		ok, verr, err = r.validateWith(ctx, tx, Candidate{
			SiteID:   in.SiteID,
			KeyID:    in.KeyID,
			KeyName:  in.KeyName,
			Kind:     in.Kind,
			Value:    in.Value,
			Language: in.Language,
			lockKey:  true,
		}, siteErr)
		if err != nil {
			return err
		}

		if verr != nil {
			return verr
		}

		row = models.Setting{
			SiteID:     in.SiteID,
			KeyID:      ok.key.ID,
			Weight:     in.Weight,
			Kind:       string(in.Kind),
			SingleSlot: models.SingleSlotFor(ok.key.AllowMultiples),
		}

		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return storageError(err)
		}

		return r.writeValue(tx, in.Kind, row.ID, ok)
	})
	if err != nil {
		return nil, r.writeError(err, ok.key)
	}

	r.log.Debug().Uint64("id", row.ID).Uint64("site", row.SiteID).Str("key", ok.key.Name).
		Str("kind", row.Kind).Msg("setting created")

	return r.GetSetting(i18nContext(ctx, ok.language), row.ID)
}

// GetSetting returns the setting with its value resolved for the request language.
func (r *GormRepository) GetSetting(ctx context.Context, id uint64) (*Setting, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	q := r.db.WithContext(ctx)

	row, err := r.envelope(q, id)
	if err != nil {
		return nil, err
	}

	lang := r.langs.CurrentLanguage(ctx)

	page, err := r.resolve(q, []envelopeRow{row}, lang)
	if err != nil {
		return nil, err
	}

	return page[0], nil
}

// UpdateSetting applies changes to the setting. The kind never changes,
// a value of another kind fails validation.
func (r *GormRepository) UpdateSetting(ctx context.Context, id uint64, changes Changes) (_ *Setting, err error) {
	defer func() { observeWrite("update", err) }()

	if r.db == nil {
		return nil, ErrDBNil
	}

	var siteErr *validation.Error

	if changes.SiteID != nil {
		if siteErr, err = r.checkSite(ctx, *changes.SiteID); err != nil {
			return nil, err
		}
	}

	var (
		row models.Setting
		ok  checked
	)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSettingNotFound
			}

			return err
		}

		c := Candidate{
			ID:        row.ID,
			SiteID:    row.SiteID,
			KeyID:     row.KeyID,
			Kind:      Kind(row.Kind),
			Value:     changes.Value,
			Language:  changes.Language,
			keepValue: changes.Value == nil,
			lockKey:   true,
		}

		if changes.SiteID != nil {
			c.SiteID = *changes.SiteID
		}

		if changes.KeyID != nil {
			c.KeyID = *changes.KeyID
		}

		var verr *validation.Error

		ok, verr, err = r.validateWith(ctx, tx, c, siteErr)
		if err != nil {
			return err
		}

		if verr != nil {
			return verr
		}

		row.SiteID = c.SiteID
		row.KeyID = ok.key.ID
		row.SingleSlot = models.SingleSlotFor(ok.key.AllowMultiples)

		if changes.Weight != nil {
			row.Weight = *changes.Weight
		}

		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return storageError(err)
		}

		if changes.Value == nil {
			return nil
		}

		return r.writeValue(tx, c.Kind, row.ID, ok)
	})
	if err != nil {
		return nil, r.writeError(err, ok.key)
	}

	r.log.Debug().Uint64("id", row.ID).Msg("setting updated")

	return r.GetSetting(i18nContext(ctx, ok.language), row.ID)
}

// DeleteSetting removes the setting with its value and translations.
func (r *GormRepository) DeleteSetting(ctx context.Context, id uint64) (err error) {
	defer func() { observeWrite("delete", err) }()

	if r.db == nil {
		return ErrDBNil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Setting

		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSettingNotFound
			}

			return err
		}

		if err := removeValues(tx, Kind(row.Kind), row.ID); err != nil {
			return err
		}

		result := tx.Delete(&models.Setting{}, row.ID)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrSettingNotFound
		}

		r.log.Debug().Uint64("id", row.ID).Msg("setting deleted")

		return nil
	})
}

// CountForKey counts the settings of any kind for (siteID, keyID).
func (r *GormRepository) CountForKey(ctx context.Context, siteID uint64, keyID uint) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNil
	}

	return countForKey(r.db.WithContext(ctx), siteID, keyID, 0)
}

func (r *GormRepository) writeValue(tx *gorm.DB, k Kind, settingID uint64, ok checked) error {
	if k.Translated() {
		return storeTranslation(tx, k, settingID, ok.language, ok.value)
	}

	return storeValue(tx, settingID, ok.value)
}

// writeError reports a unique index rejection as the cardinality failure of
// key and keeps the low-level error reachable through errors.Is.
func (r *GormRepository) writeError(err error, key *models.Key) error {
	if !errors.Is(err, ErrConstraintViolation) {
		if db.IsForeignKeyViolation(err) {
			return validation.Single("__all__", validation.CodeDoesNotExist,
				"The referenced site or key no longer exists.", nil).WithCause(err)
		}

		return err
	}

	name := ""
	if key != nil {
		name = key.Name
	}

	r.log.Warn().Err(err).Str("key", name).Msg("concurrent write rejected by the single value index")

	return TooManyForKey(name).WithCause(err)
}

func (r *GormRepository) envelope(q *gorm.DB, id uint64) (envelopeRow, error) {
	var rows []envelopeRow

	if err := envelopeQuery(q).Where("settings.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return envelopeRow{}, err //nolint:wrapcheck
	}

	if len(rows) == 0 {
		return envelopeRow{}, ErrSettingNotFound
	}

	return rows[0], nil
}

// language normalises code, empty means the request language.
func (r *GormRepository) language(ctx context.Context, code string) (string, error) {
	if code == "" {
		return r.langs.CurrentLanguage(ctx), nil
	}

	lang, err := r.langs.Normalize(code)
	if err != nil {
		return "", fmt.Errorf("language %q: %w", code, err)
	}

	return lang, nil
}

func i18nContext(ctx context.Context, lang string) context.Context {
	if lang == "" {
		return ctx
	}

	return i18n.WithLanguage(ctx, lang)
}
