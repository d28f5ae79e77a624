package models

// Translation records of the translated kinds, one row per (setting, language).
// The four tables share the column layout of TranslationRow and differ only in
// the declared size of the value column.

// CharSettingTranslation is a language variant of a short text setting.
type CharSettingTranslation struct {
	ID           uint64   `gorm:"primaryKey"`
	SettingID    uint64   `gorm:"not null;uniqueIndex:idx_char_translations_lang,priority:1"`
	Setting      *Setting `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	LanguageCode string   `gorm:"size:15;not null;uniqueIndex:idx_char_translations_lang,priority:2"`
	Value        string   `gorm:"size:140;not null"`
}

// TableName specifies the database table name.
func (CharSettingTranslation) TableName() string { return "char_setting_translations" }

// TextSettingTranslation is a language variant of a long text setting.
type TextSettingTranslation struct {
	ID           uint64   `gorm:"primaryKey"`
	SettingID    uint64   `gorm:"not null;uniqueIndex:idx_text_translations_lang,priority:1"`
	Setting      *Setting `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	LanguageCode string   `gorm:"size:15;not null;uniqueIndex:idx_text_translations_lang,priority:2"`
	Value        string   `gorm:"type:text;not null"`
}

// TableName specifies the database table name.
func (TextSettingTranslation) TableName() string { return "text_setting_translations" }

// SlugSettingTranslation is a language variant of a slug setting.
type SlugSettingTranslation struct {
	ID           uint64   `gorm:"primaryKey"`
	SettingID    uint64   `gorm:"not null;uniqueIndex:idx_slug_translations_lang,priority:1"`
	Setting      *Setting `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	LanguageCode string   `gorm:"size:15;not null;uniqueIndex:idx_slug_translations_lang,priority:2"`
	Value        string   `gorm:"size:140;not null"`
}

// TableName specifies the database table name.
func (SlugSettingTranslation) TableName() string { return "slug_setting_translations" }

// URLSettingTranslation is a language variant of a URL setting.
type URLSettingTranslation struct {
	ID           uint64   `gorm:"primaryKey"`
	SettingID    uint64   `gorm:"not null;uniqueIndex:idx_url_translations_lang,priority:1"`
	Setting      *Setting `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	LanguageCode string   `gorm:"size:15;not null;uniqueIndex:idx_url_translations_lang,priority:2"`
	Value        string   `gorm:"size:2048;not null"`
}

// TableName specifies the database table name.
func (URLSettingTranslation) TableName() string { return "url_setting_translations" }

// TranslationRow is the common read/write shape of every translation table.
// Use it with db.Table(name).
type TranslationRow struct {
	ID           uint64
	SettingID    uint64
	LanguageCode string
	Value        string
}
