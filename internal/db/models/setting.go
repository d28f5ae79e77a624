// Package models contains database model definitions.
package models

import "time"

// Setting is the envelope shared by every setting kind.
// The kind-specific value lives in a value table (non-translated kinds)
// or in a translation table keyed by language (translated kinds).
type Setting struct {
	// ID is the unique identifier for the setting.
	ID uint64 `gorm:"primaryKey"`
	// SiteID references the site the setting belongs to.
	SiteID uint64 `gorm:"not null;index:idx_settings_site_key,priority:1;uniqueIndex:idx_settings_single_per_site,priority:1"`
	// Site is the associated site (foreign key, deletion restricted).
	Site *Site `gorm:"foreignKey:SiteID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// KeyID references the configuration key.
	KeyID uint `gorm:"not null;index:idx_settings_site_key,priority:2;uniqueIndex:idx_settings_single_per_site,priority:2"`
	// Key is the associated key (foreign key, deletion restricted).
	Key *Key `gorm:"foreignKey:KeyID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// Weight orders several settings sharing a site and key, highest first.
	Weight int `gorm:"not null;default:0"`
	// Kind is the value kind discriminant. It never changes after creation.
	Kind string `gorm:"type:varchar(20);not null;index"`
	// SingleSlot is true when the key allows one setting per site and NULL otherwise.
	// Together with SiteID and KeyID it forms a unique index, so the database rejects
	// a second setting for a single-value key even when two writers race.
	SingleSlot *bool `gorm:"uniqueIndex:idx_settings_single_per_site,priority:3"`
	// CreatedAt is the timestamp when the setting was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the setting was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}

// SingleSlotFor returns the SingleSlot column value matching a key policy.
func SingleSlotFor(allowMultiples bool) *bool {
	if allowMultiples {
		return nil
	}

	single := true

	return &single
}
