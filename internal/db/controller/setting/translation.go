package setting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

// SetTranslation stores v as the value of a translated setting in lang,
// replacing an existing value in that language.
func (r *GormRepository) SetTranslation(ctx context.Context, id uint64, lang string, v Value) (err error) {
	defer func() { observeWrite("translate", err) }()

	if r.db == nil {
		return ErrDBNil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.translatable(tx, id)
		if err != nil {
			return err
		}

		k := Kind(row.Kind)
		verr := validation.New()

		switch {
		case v == nil:
			verr.Add(valueField, validation.FieldError{Code: validation.CodeRequired, Message: "This field is required."})
		case v.Kind() != k:
			verr.Add(valueField, validation.FieldError{
				Code:    string(CodeKindMismatch),
				Message: fmt.Sprintf("Expected a %s value, got %s.", k.DisplayName(), v.Kind().DisplayName()),
				Params:  map[string]any{"expected": string(k), "got": string(v.Kind())},
			})
		default:
			verr.Merge(validateValue(v))
		}

		code, lerr := r.requiredLanguage(lang)
		if lerr != nil {
			verr.Merge(lerr)
		}

		if !verr.Empty() {
			return verr
		}

		if err := storeTranslation(tx, k, row.ID, code, v); err != nil {
			return err
		}

		// touch the envelope so listings see the change
		return tx.Model(&row).Update("updated_at", tx.NowFunc()).Error
	})
}

// GetTranslation returns the value of a translated setting in lang, falling
// back to the default language. The second result is the language of the value.
func (r *GormRepository) GetTranslation(ctx context.Context, id uint64, lang string) (Value, string, error) {
	if r.db == nil {
		return nil, "", ErrDBNil
	}

	q := r.db.WithContext(ctx)

	row, err := r.translatable(q, id)
	if err != nil {
		return nil, "", err
	}

	code, lerr := r.requiredLanguage(lang)
	if lerr != nil {
		return nil, "", lerr
	}

	k := Kind(row.Kind)

	resolved, err := r.loadTranslations(q, k, []uint64{row.ID}, code)
	if err != nil {
		return nil, "", err
	}

	t, ok := resolved[row.ID]
	if !ok {
		return nil, "", ErrNoValueAvailable
	}

	return newTranslatedValue(k, t.Value), t.LanguageCode, nil
}

// DeleteTranslation removes the value of a translated setting in lang.
func (r *GormRepository) DeleteTranslation(ctx context.Context, id uint64, lang string) (err error) {
	defer func() { observeWrite("untranslate", err) }()

	if r.db == nil {
		return ErrDBNil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.translatable(tx, id)
		if err != nil {
			return err
		}

		code, lerr := r.requiredLanguage(lang)
		if lerr != nil {
			return lerr
		}

		result := tx.Table(Kind(row.Kind).translationTable()).
			Where("setting_id = ? AND language_code = ?", row.ID, code).
			Delete(&models.TranslationRow{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrTranslationNotFound
		}

		return nil
	})
}

// Translations returns the values of a translated setting by language.
func (r *GormRepository) Translations(ctx context.Context, id uint64) (map[string]Value, error) {
	if r.db == nil {
		return nil, ErrDBNil
	}

	q := r.db.WithContext(ctx)

	row, err := r.translatable(q, id)
	if err != nil {
		return nil, err
	}

	k := Kind(row.Kind)

	var rows []models.TranslationRow

	err = q.Table(k.translationTable()).
		Where("setting_id = ?", row.ID).
		Order("language_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]Value, len(rows))
	for _, t := range rows {
		out[t.LanguageCode] = newTranslatedValue(k, t.Value)
	}

	return out, nil
}

// translatable loads the envelope of id and fails for kinds without translations.
func (r *GormRepository) translatable(q *gorm.DB, id uint64) (models.Setting, error) {
	var row models.Setting

	if err := q.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, ErrSettingNotFound
		}

		return row, err
	}

	if !Kind(row.Kind).Translated() {
		return row, fmt.Errorf("%w: %s", ErrNotTranslatable, row.Kind)
	}

	return row, nil
}

// requiredLanguage normalises an explicit language code.
func (r *GormRepository) requiredLanguage(code string) (string, *validation.Error) {
	if code == "" {
		return "", validation.Single(languageField, validation.CodeRequired, "This field is required.", nil)
	}

	lang, err := r.langs.Normalize(code)
	if err != nil {
		return "", validation.Single(languageField, validation.CodeInvalid,
			fmt.Sprintf("%q is not an accepted language.", code),
			map[string]any{"language": code}).WithCause(err)
	}

	return lang, nil
}
