package site

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenAndMigrate(&config.DB{Engine: config.DBEngineSQLite, Path: ":memory:"})
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() { _ = db.Close(gdb) })

	return gdb
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		siteName      string
		domain        string
		expectedError error
	}{
		{name: "nil database", siteName: "Example", domain: "example.com", expectedError: ErrDBNil},
		{name: "successful create", dbParam: gdb, siteName: "Example", domain: "example.com"},
		{name: "duplicate domain", dbParam: gdb, siteName: "Other", domain: "example.com", expectedError: ErrDuplicateDomain},
		{name: "empty name", dbParam: gdb, siteName: "", domain: "empty.example", expectedError: validation.ErrInvalid},
		{name: "invalid domain", dbParam: gdb, siteName: "Bad", domain: "not a domain", expectedError: validation.ErrInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Create(ctx, tc.dbParam, tc.siteName, tc.domain)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)

				return
			}

			require.NoError(t, err)
			assert.NotZero(t, s.ID)
			assert.Equal(t, tc.domain, s.Domain)
		})
	}
}

func TestEnsure(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)

	first, created, err := Ensure(ctx, gdb, "Example", "example.com")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := Ensure(ctx, gdb, "Renamed", "example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Example", again.Name)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)

	s, err := Create(ctx, gdb, "Example", "example.com")
	require.NoError(t, err)

	var dir Directory = NewDirectory(gdb)

	info, err := dir.GetSite(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, Info{ID: s.ID, Name: "Example", Domain: "example.com"}, info)

	_, err = dir.GetSite(ctx, s.ID+1)
	require.ErrorIs(t, err, ErrSiteNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)

	for _, domain := range []string{"b.example", "a.example", "c.example"} {
		_, err := Create(ctx, gdb, domain, domain)
		require.NoError(t, err)
	}

	sites, err := List(ctx, gdb)
	require.NoError(t, err)
	require.Len(t, sites, 3)

	// ordered by id, i.e. creation order
	assert.Equal(t, "b.example", sites[0].Domain)
	assert.Equal(t, "c.example", sites[2].Domain)
}
