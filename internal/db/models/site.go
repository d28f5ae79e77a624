package models

// Site is the minimal record of a tenant site settings are attached to.
// Sites are managed outside of this application; the table only backs
// referential integrity and the site directory.
type Site struct {
	// ID is the unique identifier for the site.
	ID uint64 `gorm:"primaryKey"`
	// Name is the human-readable site name.
	Name string `gorm:"size:100;not null"`
	// Domain is the unique domain name of the site.
	Domain string `gorm:"size:255;not null;uniqueIndex"`
}

// TableName specifies the database table name for the Site model.
func (Site) TableName() string {
	return "sites"
}
