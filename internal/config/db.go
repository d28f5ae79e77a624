package config

import "time"

// Supported database engines.
const (
	DBEngineSQLite   = "sqlite"
	DBEngineMySQL    = "mysql"
	DBEnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Engine   string // sqlite, mysql or postgres
	Path     string // sqlite database file, ":memory:" for a private in-memory database
	Extras   string // extra DSN parameters appended as-is
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string // postgres only

	MaxOpenConns int
	MaxIdleConns int

	SlowQueryThreshold time.Duration // queries slower than this are logged as warnings
	LogQueries         bool          // trace every SQL statement
}
