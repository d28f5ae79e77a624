// Package site reads the minimal site records settings are attached to.
package site

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

var (
	// ErrSiteNotFound is returned when a site is not found.
	ErrSiteNotFound = errors.New("site not found")
	// ErrDuplicateDomain is returned when a site with the same domain exists.
	ErrDuplicateDomain = errors.New("site domain already in use")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = db.ErrDBNil
)

// Info is what the settings store needs to know about a site.
type Info struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Directory resolves sites by identifier.
type Directory interface {
	GetSite(ctx context.Context, id uint64) (Info, error)
}

// GormDirectory implements Directory on the sites table.
type GormDirectory struct {
	db *gorm.DB
}

// NewDirectory returns a Directory backed by gdb.
func NewDirectory(gdb *gorm.DB) *GormDirectory {
	return &GormDirectory{db: gdb}
}

// GetSite implements Directory.
func (d *GormDirectory) GetSite(ctx context.Context, id uint64) (Info, error) {
	s, err := GetByID(ctx, d.db, id)
	if err != nil {
		return Info{}, err
	}

	return toInfo(s), nil
}

type input struct {
	Name   string `json:"name"   validate:"required,max=100"`
	Domain string `json:"domain" validate:"required,max=255,hostname_rfc1123"`
}

// Create adds a site.
func Create(ctx context.Context, gdb *gorm.DB, name, domain string) (*models.Site, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	if verr := validation.Struct(input{Name: name, Domain: domain}); verr != nil {
		return nil, verr
	}

	s := &models.Site{Name: name, Domain: domain}

	if err := gdb.WithContext(ctx).Create(s).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateDomain
		}

		return nil, err
	}

	return s, nil
}

// Ensure returns the site with domain, creating it when missing.
func Ensure(ctx context.Context, gdb *gorm.DB, name, domain string) (*models.Site, bool, error) {
	if gdb == nil {
		return nil, false, ErrDBNil
	}

	var s models.Site

	err := gdb.WithContext(ctx).Where("domain = ?", domain).First(&s).Error
	if err == nil {
		return &s, false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created, err := Create(ctx, gdb, name, domain)
	if err != nil {
		return nil, false, err
	}

	return created, true, nil
}

// GetByID retrieves a site by its ID.
func GetByID(ctx context.Context, gdb *gorm.DB, id uint64) (*models.Site, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	var s models.Site

	if err := gdb.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}

		return nil, err
	}

	return &s, nil
}

// List returns every site ordered by ID.
func List(ctx context.Context, gdb *gorm.DB) ([]models.Site, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	var sites []models.Site

	if err := gdb.WithContext(ctx).Order("id ASC").Find(&sites).Error; err != nil {
		return nil, err
	}

	return sites, nil
}

func toInfo(s *models.Site) Info {
	return Info{ID: s.ID, Name: s.Name, Domain: s.Domain}
}
