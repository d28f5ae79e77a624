package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnsupportedDBEngine error if config db.engine is not sqlite, mysql or postgres.
	ErrUnsupportedDBEngine = errors.New("config db.engine is not supported")

	// ErrEmptySQLitePath error if the sqlite engine is used without db.path.
	ErrEmptySQLitePath = errors.New("config db.path can not be empty for sqlite")

	// ErrMissingDBHostOrName error if a network database lacks db.host or db.name.
	ErrMissingDBHostOrName = errors.New("config db.host and db.name are required for mysql and postgres")

	// ErrEmptyDefaultLanguage error if config i18n.defaultLanguage is empty.
	ErrEmptyDefaultLanguage = errors.New("config i18n.defaultLanguage can not be empty")
)
