package setting

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
)

// valueCodec maps a non-translated kind to its value table.
type valueCodec struct {
	model func() any
	row   func(settingID uint64, v Value) any
	load  func(q *gorm.DB, ids []uint64) (map[uint64]Value, error)
}

var valueCodecs = map[Kind]valueCodec{ //nolint:gochecknoglobals
	KindDateTime: {
		model: func() any { return &models.DateTimeSettingValue{} },
		row: func(id uint64, v Value) any {
			return &models.DateTimeSettingValue{SettingID: id, Value: v.(DateTimeValue).Time} //nolint:forcetypeassert
		},
		load: func(q *gorm.DB, ids []uint64) (map[uint64]Value, error) {
			return loadRows(q, ids, func(r models.DateTimeSettingValue) (uint64, Value) {
				return r.SettingID, NewDateTime(r.Value)
			})
		},
	},
	KindDate: {
		model: func() any { return &models.DateSettingValue{} },
		row: func(id uint64, v Value) any {
			return &models.DateSettingValue{SettingID: id, Value: datatypes.Date(v.(DateValue).Time)} //nolint:forcetypeassert
		},
		load: func(q *gorm.DB, ids []uint64) (map[uint64]Value, error) {
			return loadRows(q, ids, func(r models.DateSettingValue) (uint64, Value) {
				return r.SettingID, NewDate(time.Time(r.Value).Date())
			})
		},
	},
	KindTime: {
		model: func() any { return &models.TimeSettingValue{} },
		row: func(id uint64, v Value) any {
			return &models.TimeSettingValue{SettingID: id, Value: datatypes.Time(v.(TimeValue).Duration)} //nolint:forcetypeassert
		},
		load: func(q *gorm.DB, ids []uint64) (map[uint64]Value, error) {
			return loadRows(q, ids, func(r models.TimeSettingValue) (uint64, Value) {
				return r.SettingID, TimeValue{time.Duration(r.Value).Truncate(time.Microsecond)}
			})
		},
	},
	KindBoolean: {
		model: func() any { return &models.BooleanSettingValue{} },
		row: func(id uint64, v Value) any {
			return &models.BooleanSettingValue{SettingID: id, Value: bool(v.(BooleanValue))} //nolint:forcetypeassert
		},
		load: func(q *gorm.DB, ids []uint64) (map[uint64]Value, error) {
			return loadRows(q, ids, func(r models.BooleanSettingValue) (uint64, Value) {
				return r.SettingID, BooleanValue(r.Value)
			})
		},
	},
	KindNumber: {
		model: func() any { return &models.NumberSettingValue{} },
		row: func(id uint64, v Value) any {
			return &models.NumberSettingValue{SettingID: id, Value: int32(v.(NumberValue))} //nolint:forcetypeassert
		},
		load: func(q *gorm.DB, ids []uint64) (map[uint64]Value, error) {
			return loadRows(q, ids, func(r models.NumberSettingValue) (uint64, Value) {
				return r.SettingID, NumberValue(r.Value)
			})
		},
	},
	KindDecimal: {
		model: func() any { return &models.DecimalSettingValue{} },
		row: func(id uint64, v Value) any {
			return &models.DecimalSettingValue{SettingID: id, Value: v.(DecimalValue).Decimal} //nolint:forcetypeassert
		},
		load: func(q *gorm.DB, ids []uint64) (map[uint64]Value, error) {
			return loadRows(q, ids, func(r models.DecimalSettingValue) (uint64, Value) {
				return r.SettingID, DecimalValue{r.Value}
			})
		},
	},
	KindEmail: {
		model: func() any { return &models.EmailSettingValue{} },
		row: func(id uint64, v Value) any {
			return &models.EmailSettingValue{SettingID: id, Value: string(v.(EmailValue))} //nolint:forcetypeassert
		},
		load: func(q *gorm.DB, ids []uint64) (map[uint64]Value, error) {
			return loadRows(q, ids, func(r models.EmailSettingValue) (uint64, Value) {
				return r.SettingID, EmailValue(r.Value)
			})
		},
	},
}

func loadRows[T any](q *gorm.DB, ids []uint64, conv func(T) (uint64, Value)) (map[uint64]Value, error) {
	var rows []T

	if err := q.Where("setting_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err //nolint:wrapcheck
	}

	out := make(map[uint64]Value, len(rows))

	for _, r := range rows {
		id, v := conv(r)
		out[id] = v
	}

	return out, nil
}

// newTranslatedValue wraps a stored translation in the value type of k.
func newTranslatedValue(k Kind, s string) Value {
	switch k {
	case KindChar:
		return CharValue(s)
	case KindText:
		return TextValue(s)
	case KindSlug:
		return SlugValue(s)
	case KindURL:
		return URLValue(s)
	default:
		return nil
	}
}

// storeValue inserts or replaces the value record of a non-translated setting.
func storeValue(tx *gorm.DB, settingID uint64, v Value) error {
	codec, ok := valueCodecs[v.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s has no value table", ErrUnknownKind, v.Kind())
	}

	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(codec.row(settingID, v)).Error
}

// storeTranslation inserts or replaces the value of a translated setting in lang.
func storeTranslation(tx *gorm.DB, k Kind, settingID uint64, lang string, v Value) error {
	return tx.Table(k.translationTable()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_id"}, {Name: "language_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.TranslationRow{SettingID: settingID, LanguageCode: lang, Value: v.String()}).Error
}

// removeValues deletes the value record or every translation of a setting.
func removeValues(tx *gorm.DB, k Kind, settingID uint64) error {
	if k.Translated() {
		return tx.Table(k.translationTable()).Where("setting_id = ?", settingID).Delete(&models.TranslationRow{}).Error
	}

	codec, ok := valueCodecs[k]
	if !ok {
		return nil
	}

	return tx.Where("setting_id = ?", settingID).Delete(codec.model()).Error
}

// storageError classifies errors of the low-level inserts and updates.
func storageError(err error) error {
	if err == nil {
		return nil
	}

	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}

	return err
}
