// Package key manages the registry of setting keys and their cardinality policy.
package key

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

const (
	nameQueryPattern = "name = ?"

	// MaxNameLength is the longest accepted key name.
	MaxNameLength = 140

	// CodeMultiplesExist rejects disabling allow_multiples while a site holds several settings.
	CodeMultiplesExist validation.Code = "multiples_exist"
)

var (
	// ErrKeyNotFound is returned when a key is not found.
	ErrKeyNotFound = errors.New("key not found")
	// ErrDuplicateKeyName is returned when creating or renaming a key onto a name already in use.
	ErrDuplicateKeyName = errors.New("key name already in use")
	// ErrKeyInUse is returned when deleting a key that settings still reference.
	ErrKeyInUse = errors.New("key is referenced by settings")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = db.ErrDBNil
)

// input holds the field rules of a key.
type input struct {
	Name        string `json:"name"        validate:"required,max=140"`
	Description string `json:"description"`
}

// Changes lists the key fields to update. Nil fields are left untouched,
// an empty Description clears it.
type Changes struct {
	Name           *string
	Description    *string
	AllowMultiples *bool
}

// Create registers a new key.
func Create(ctx context.Context, gdb *gorm.DB, name string, description *string, allowMultiples bool) (*models.Key, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	if verr := validation.Struct(input{Name: name}); verr != nil {
		return nil, verr
	}

	k := &models.Key{
		Name:           name,
		Description:    emptyToNil(description),
		AllowMultiples: allowMultiples,
	}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, name, 0); err != nil {
			return err
		}

		return tx.Create(k).Error
	})
	if err != nil {
		return nil, mapWriteError(err)
	}

	return k, nil
}

// Get retrieves a key by its name.
func Get(ctx context.Context, gdb *gorm.DB, name string) (*models.Key, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	var k models.Key

	result := gdb.WithContext(ctx).Where(nameQueryPattern, name).First(&k)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}

		return nil, result.Error
	}

	return &k, nil
}

// GetByID retrieves a key by its ID.
func GetByID(ctx context.Context, gdb *gorm.DB, id uint) (*models.Key, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	var k models.Key

	result := gdb.WithContext(ctx).First(&k, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}

		return nil, result.Error
	}

	return &k, nil
}

// List returns every key ordered by name.
func List(ctx context.Context, gdb *gorm.DB) ([]models.Key, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	var keys []models.Key

	result := gdb.WithContext(ctx).Order("name ASC").Find(&keys)
	if result.Error != nil {
		return nil, result.Error
	}

	return keys, nil
}

// Update applies changes to the key with the given ID.
// Turning allow_multiples off is refused while any site holds more than one
// setting for the key; otherwise the settings' single slot marker follows the policy.
func Update(ctx context.Context, gdb *gorm.DB, id uint, changes Changes) (*models.Key, error) {
	if gdb == nil {
		return nil, ErrDBNil
	}

	var k models.Key

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// setting writes share lock the key row, the policy check sees them committed
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).First(&k, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrKeyNotFound
			}

			return err
		}

		if changes.Name != nil && *changes.Name != k.Name {
			if verr := validation.Struct(input{Name: *changes.Name}); verr != nil {
				return verr
			}

			if err := ensureNameFree(tx, *changes.Name, k.ID); err != nil {
				return err
			}

			k.Name = *changes.Name
		}

		if changes.Description != nil {
			k.Description = emptyToNil(changes.Description)
		}

		if changes.AllowMultiples != nil && *changes.AllowMultiples != k.AllowMultiples {
			if !*changes.AllowMultiples {
				if err := ensureNoMultiples(tx, &k); err != nil {
					return err
				}
			}

			k.AllowMultiples = *changes.AllowMultiples

			if err := tx.Model(&models.Setting{}).
				Where("key_id = ?", k.ID).
				Update("single_slot", models.SingleSlotFor(k.AllowMultiples)).Error; err != nil {
				return fmt.Errorf("failed to switch single slot markers: %w", err)
			}
		}

		return tx.Save(&k).Error
	})
	if err != nil {
		return nil, mapWriteError(err)
	}

	return &k, nil
}

// Delete removes the key with the given ID. Keys referenced by settings are kept.
func Delete(ctx context.Context, gdb *gorm.DB, id uint) error {
	if gdb == nil {
		return ErrDBNil
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&models.Setting{}).Where("key_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}

		if inUse > 0 {
			return ErrKeyInUse
		}

		result := tx.Delete(&models.Key{}, id)
		if result.Error != nil {
			if db.IsForeignKeyViolation(result.Error) {
				return ErrKeyInUse
			}

			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrKeyNotFound
		}

		return nil
	})
}

func ensureNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64

	q := tx.Model(&models.Key{}).Where(nameQueryPattern, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrDuplicateKeyName
	}

	return nil
}

func ensureNoMultiples(tx *gorm.DB, k *models.Key) error {
	var siteIDs []uint64

	err := tx.Model(&models.Setting{}).
		Select("site_id").
		Where("key_id = ?", k.ID).
		Group("site_id").
		Having("COUNT(*) > 1").
		Pluck("site_id", &siteIDs).Error
	if err != nil {
		return err
	}

	if len(siteIDs) == 0 {
		return nil
	}

	return validation.Single("allow_multiples", string(CodeMultiplesExist),
		fmt.Sprintf("The %s has several values on %d site(s), remove them before disallowing multiples.", k.Name, len(siteIDs)),
		map[string]any{"key_name": k.Name, "site_ids": siteIDs})
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrDuplicateKeyName
	}

	return err
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	v := *s

	return &v
}
