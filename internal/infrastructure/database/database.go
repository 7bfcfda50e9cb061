package database

import (
	"strings"

	"github.com/amanuelrf/reliance-mobile/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SQLitePrefix marks a DSN that should open a local SQLite file instead of Postgres.
const SQLitePrefix = "sqlite:"

// Open opens a GORM DB from DSN. A "sqlite:" DSN opens a local SQLite database,
// anything else is treated as a Postgres URL.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, SQLitePrefix) {
		return OpenSQLite(strings.TrimPrefix(dsn, SQLitePrefix))
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// OpenSQLite opens path (":memory:" for tests) with a single connection so concurrent
// readers and transactions share one database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// AutoMigrate creates or updates the company and credit tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Company{}, &domain.CreditCheck{}, &domain.CreditCheckHistory{})
}
