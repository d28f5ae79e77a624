package setting

import (
	"context"
	"iter"
	"time"

	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
)

// DefaultPageSize is the number of envelopes ListSettings loads per query.
const DefaultPageSize = 100

// envelopeRow is a settings row joined with its key and site.
type envelopeRow struct {
	ID                uint64
	SiteID            uint64
	SiteName          string
	KeyID             uint
	KeyName           string
	KeyAllowMultiples bool
	Weight            int
	Kind              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func envelopeQuery(q *gorm.DB) *gorm.DB {
	return q.Table("settings").
		Select("settings.id, settings.site_id, COALESCE(sites.name, '') AS site_name, settings.key_id, " +
			"setting_keys.name AS key_name, setting_keys.allow_multiples AS key_allow_multiples, " +
			"settings.weight, settings.kind, settings.created_at, settings.updated_at").
		Joins("JOIN setting_keys ON setting_keys.id = settings.key_id").
		Joins("LEFT JOIN sites ON sites.id = settings.site_id")
}

// ListSettings returns the settings matching f ordered by site, key name,
// weight descending and id. The sequence is lazy: envelopes are read one page
// at a time and values are loaded per page. Every range starts a fresh query.
func (r *GormRepository) ListSettings(ctx context.Context, f Filter) iter.Seq2[*Setting, error] {
	return func(yield func(*Setting, error) bool) {
		if r.db == nil {
			yield(nil, ErrDBNil)
			return
		}

		if f.Kind != "" && !f.Kind.Valid() {
			yield(nil, ErrUnknownKind)
			return
		}

		lang, err := r.language(ctx, f.Language)
		if err != nil {
			yield(nil, err)
			return
		}

		size := f.PageSize
		if size <= 0 {
			size = DefaultPageSize
		}

		for offset := 0; ; offset += size {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			page, err := r.listPage(ctx, f, lang, size, offset)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, s := range page {
				if !yield(s, nil) {
					return
				}
			}

			if len(page) < size {
				return
			}
		}
	}
}

func (r *GormRepository) listPage(ctx context.Context, f Filter, lang string, size, offset int) ([]*Setting, error) {
	q := r.db.WithContext(ctx)
	tx := envelopeQuery(q)

	if f.SiteID != 0 {
		tx = tx.Where("settings.site_id = ?", f.SiteID)
	}

	if f.KeyID != 0 {
		tx = tx.Where("settings.key_id = ?", f.KeyID)
	}

	if f.KeyName != "" {
		tx = tx.Where("setting_keys.name = ?", f.KeyName)
	}

	if f.Kind != "" {
		tx = tx.Where("settings.kind = ?", string(f.Kind))
	}

	if f.TranslatedOnly {
		tx = tx.Where(translatedIn(q, lang))
	}

	var rows []envelopeRow

	err := tx.Order("settings.site_id ASC").
		Order("setting_keys.name ASC").
		Order("settings.weight DESC").
		Order("settings.id ASC").
		Limit(size).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return r.resolve(q, rows, lang)
}

// translatedIn matches non-translated settings and translated settings with a value in lang.
func translatedIn(q *gorm.DB, lang string) *gorm.DB {
	cond := q.Where("settings.kind NOT IN ?", translatedKindNames())

	for _, k := range Kinds() {
		if !k.Translated() {
			continue
		}

		sub := q.Table(k.translationTable()+" AS t").
			Select("1").
			Where("t.setting_id = settings.id AND t.language_code = ?", lang)

		cond = cond.Or("EXISTS (?)", sub)
	}

	return cond
}

func translatedKindNames() []string {
	var names []string

	for _, k := range Kinds() {
		if k.Translated() {
			names = append(names, string(k))
		}
	}

	return names
}

// resolve loads the values of rows, batched per kind, and builds the handles.
func (r *GormRepository) resolve(q *gorm.DB, rows []envelopeRow, lang string) ([]*Setting, error) {
	idsByKind := make(map[Kind][]uint64)
	for _, row := range rows {
		k := Kind(row.Kind)
		idsByKind[k] = append(idsByKind[k], row.ID)
	}

	values := make(map[uint64]Value, len(rows))
	languages := make(map[uint64]string)

	for k, ids := range idsByKind {
		if k.Translated() {
			resolved, err := r.loadTranslations(q, k, ids, lang)
			if err != nil {
				return nil, err
			}

			for id, t := range resolved {
				values[id] = newTranslatedValue(k, t.Value)
				languages[id] = t.LanguageCode
			}

			continue
		}

		codec, ok := valueCodecs[k]
		if !ok {
			continue
		}

		loaded, err := codec.load(q, ids)
		if err != nil {
			return nil, err
		}

		for id, v := range loaded {
			values[id] = v
		}
	}

	out := make([]*Setting, 0, len(rows))

	for _, row := range rows {
		out = append(out, &Setting{
			ID:       row.ID,
			SiteID:   row.SiteID,
			SiteName: row.SiteName,
			Key: KeyRef{
				ID:             row.KeyID,
				Name:           row.KeyName,
				AllowMultiples: row.KeyAllowMultiples,
			},
			Weight:    row.Weight,
			Kind:      Kind(row.Kind),
			Value:     values[row.ID],
			Language:  languages[row.ID],
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}

	return out, nil
}

// loadTranslations returns per setting the translation in lang, else in the default language.
func (r *GormRepository) loadTranslations(q *gorm.DB, k Kind, ids []uint64, lang string) (map[uint64]models.TranslationRow, error) {
	def := r.langs.DefaultLanguage()

	var rows []models.TranslationRow

	err := q.Table(k.translationTable()).
		Where("setting_id IN ? AND language_code IN ?", ids, []string{lang, def}).
		Find(&rows).Error
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	out := make(map[uint64]models.TranslationRow, len(ids))

	for _, row := range rows {
		current, seen := out[row.SettingID]
		if !seen || (row.LanguageCode == lang && current.LanguageCode != lang) {
			out[row.SettingID] = row
		}
	}

	return out, nil
}
