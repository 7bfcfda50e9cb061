package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amanuelrf/reliance-mobile/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpen_SQLitePrefixMigrates(t *testing.T) {
	db, err := Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	assert.True(t, db.Migrator().HasTable(&domain.Company{}))
	assert.True(t, db.Migrator().HasTable(&domain.CreditCheck{}))
	assert.True(t, db.Migrator().HasTable(&domain.CreditCheckHistory{}))
}

func TestCompanyUniquePerOwnerAmongLiveRows(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	owner := uuid.New()
	mc := int64(123)
	first := &domain.Company{OwnerID: owner, Name: "First", MCNumber: &mc}
	require.NoError(t, db.Create(first).Error)

	err = db.Create(&domain.Company{OwnerID: owner, Name: "Second", MCNumber: &mc}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	// Another owner may hold the same MC number.
	require.NoError(t, db.Create(&domain.Company{OwnerID: uuid.New(), Name: "Other", MCNumber: &mc}).Error)

	// Once the first row is soft-deleted the number is free again.
	require.NoError(t, db.Delete(first).Error)
	require.NoError(t, db.Create(&domain.Company{OwnerID: owner, Name: "Third", MCNumber: &mc}).Error)

	// Companies without registry numbers never collide.
	require.NoError(t, db.Create(&domain.Company{OwnerID: owner, Name: "No Numbers A"}).Error)
	require.NoError(t, db.Create(&domain.Company{OwnerID: owner, Name: "No Numbers B"}).Error)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
