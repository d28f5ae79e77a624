package db

import "errors"

var (
	// ErrNilConfig is returned if Open is called without a database config.
	ErrNilConfig = errors.New("database config is nil")

	// ErrDBNil is returned if a nil *gorm.DB is passed.
	ErrDBNil = errors.New("database connection is nil")
)
