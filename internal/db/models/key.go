package models

import "time"

// Key is a named configuration slot with a cardinality policy.
type Key struct {
	// ID is the unique identifier for the key.
	ID uint `gorm:"primaryKey"`
	// Name is the globally unique key name, e.g. "contact_email".
	Name string `gorm:"size:140;not null;uniqueIndex"`
	// Description is an optional free text explanation.
	Description *string `gorm:"type:text"`
	// AllowMultiples tells whether a site may hold more than one setting for the key.
	// No database default is declared: GORM would replace an explicit false with it.
	AllowMultiples bool `gorm:"not null"`
	// CreatedAt is the timestamp when the key was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the key was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Key model.
func (Key) TableName() string {
	return "setting_keys"
}

// DescriptionOrEmpty returns the description or an empty string.
func (k *Key) DescriptionOrEmpty() string {
	if k.Description == nil {
		return ""
	}

	return *k.Description
}
