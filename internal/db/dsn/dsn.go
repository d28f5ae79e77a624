// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
)

const (
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432

	// MemoryPath opens a private in-memory sqlite database.
	MemoryPath = ":memory:"

	mysqlDefaultExtras = "charset=utf8mb4&parseTime=True&loc=UTC"
	sqlitePragmas      = "_pragma=foreign_keys(1)"
	sqliteFilePragmas  = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
)

// Create builds the Data Source Name for the configured engine.
func Create(dbCfg *config.DB) (string, error) {
	switch dbCfg.Engine {
	case config.DBEngineMySQL:
		return MySQL(dbCfg), nil
	case config.DBEnginePostgres:
		return Postgres(dbCfg), nil
	case config.DBEngineSQLite, "":
		return SQLite(dbCfg), nil
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnsupportedDBEngine, dbCfg.Engine)
	}
}

// MySQL builds a go-sql-driver DSN. Extras replace the utf8mb4/parseTime/UTC defaults.
func MySQL(dbCfg *config.DB) string {
	port := dbCfg.Port
	if port == 0 {
		port = defaultMySQLPort
	}

	extras := dbCfg.Extras
	if extras == "" {
		extras = mysqlDefaultExtras
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		port,
		dbCfg.Name,
		extras,
	)
}

// Postgres builds a libpq keyword/value DSN.
func Postgres(dbCfg *config.DB) string {
	port := dbCfg.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	sslMode := dbCfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		dbCfg.Host, port, dbCfg.User, dbCfg.Password, dbCfg.Name, sslMode)

	if dbCfg.Extras != "" {
		out += " " + dbCfg.Extras
	}

	return out
}

// SQLite builds a glebarez/sqlite DSN with foreign keys enabled.
// File databases also get WAL and a busy timeout.
func SQLite(dbCfg *config.DB) string {
	path := dbCfg.Path
	if path == "" {
		path = MemoryPath
	}

	params := []string{sqlitePragmas}

	if path != MemoryPath {
		params = append(params, sqliteFilePragmas)
	}

	if dbCfg.Extras != "" {
		params = append(params, dbCfg.Extras)
	}

	return path + "?" + strings.Join(params, "&")
}
