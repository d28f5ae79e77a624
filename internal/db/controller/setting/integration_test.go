//go:build integration

package setting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/key"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/models"
	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
	"github.com/GoSiteSettings/GoSiteSettings/internal/validation"
)

// setupPostgresRepo starts a PostgreSQL container and returns a repository on it.
func setupPostgresRepo(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("site_settings"),
		postgres.WithUsername("site_settings"),
		postgres.WithPassword("site_settings"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	gdb, err := db.OpenAndMigrate(&config.DB{
		Engine:       config.DBEnginePostgres,
		Host:         host,
		Port:         port.Int(),
		User:         "site_settings",
		Password:     "site_settings",
		Name:         "site_settings",
		MaxOpenConns: 10,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close(gdb) })

	langs, err := i18n.New("en", []string{"en", "fr", "de"})
	require.NoError(t, err)

	first, err := site.Create(ctx, gdb, "Example", "example.com")
	require.NoError(t, err)

	second, err := site.Create(ctx, gdb, "Example Shop", "shop.example.com")
	require.NoError(t, err)

	return &fixture{
		ctx:    ctx,
		gdb:    gdb,
		repo:   NewRepository(gdb, site.NewDirectory(gdb), langs),
		first:  first,
		second: second,
	}
}

func TestPostgres(t *testing.T) {
	f := setupPostgresRepo(t)

	t.Run("round trip keeps precision", func(t *testing.T) {
		k := f.key(t, "precise", true)

		values := []Value{
			mustDecimal(t, "12345.6789"),
			NewDateTime(time.Date(2024, 5, 1, 13, 45, 30, 123456000, time.UTC)),
			NewTime(23, 59, 59, 999999000),
			NewDate(1999, time.December, 31),
			NumberValue(2147483647),
		}

		for _, v := range values {
			s := f.create(t, f.first.ID, k, v, 0)

			got, err := f.repo.GetSetting(f.ctx, s.ID)
			require.NoError(t, err)
			assert.True(t, Equal(v, got.Value), "want %s got %v", v, got.Value)
		}
	})

	t.Run("translation fallback", func(t *testing.T) {
		k := f.key(t, "banner_text", true)
		s := f.create(t, f.first.ID, k, CharValue("Hello"), 0)
		require.NoError(t, f.repo.SetTranslation(f.ctx, s.ID, "fr", CharValue("Bonjour")))

		v, lang, err := f.repo.GetTranslation(f.ctx, s.ID, "de")
		require.NoError(t, err)
		assert.Equal(t, CharValue("Hello"), v)
		assert.Equal(t, "en", lang)

		got := collect(t, f.repo.ListSettings(f.ctx, Filter{KeyID: k.ID, Language: "fr", TranslatedOnly: true}))
		require.Len(t, got, 1)
		assert.Equal(t, CharValue("Bonjour"), got[0].Value)
	})

	// Without a shared connection the count check races and the unique index decides.
	t.Run("concurrent writers on a single value key", func(t *testing.T) {
		k, err := key.Create(f.ctx, f.gdb, "contact_email", nil, false)
		require.NoError(t, err)

		const writers = 16

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			created  int
			rejected int
		)

		for range writers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := f.repo.CreateSetting(f.ctx, CreateInput{
					SiteID: f.second.ID,
					KeyID:  k.ID,
					Kind:   KindEmail,
					Value:  EmailValue("info@example.com"),
				})

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					created++
				case assert.ErrorIs(t, err, ErrTooManyForKey):
					rejected++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, writers-1, rejected)

		count, err := f.repo.CountForKey(f.ctx, f.second.ID, k.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	// A key switched to a single value while writers add values: either the
	// switch is refused or every site ends with at most one setting.
	t.Run("policy change races with writers", func(t *testing.T) {
		const (
			rounds  = 10
			writers = 8
		)

		for round := range rounds {
			k, err := key.Create(f.ctx, f.gdb, fmt.Sprintf("phone_%d", round), nil, true)
			require.NoError(t, err)

			f.create(t, f.first.ID, k, CharValue("+49 30 1234"), 0)

			var (
				wg        sync.WaitGroup
				updateErr error
			)

			wg.Add(1)

			go func() {
				defer wg.Done()

				_, updateErr = key.Update(f.ctx, f.gdb, k.ID, key.Changes{AllowMultiples: ptr(false)})
			}()

			for i := range writers {
				wg.Add(1)

				go func() {
					defer wg.Done()

					_, err := f.repo.CreateSetting(f.ctx, CreateInput{
						SiteID: f.first.ID,
						KeyID:  k.ID,
						Kind:   KindChar,
						Value:  CharValue(fmt.Sprintf("+49 30 %d", i)),
					})
					if err != nil {
						assert.ErrorIs(t, err, ErrTooManyForKey)
					}
				}()
			}

			wg.Wait()

			var stored models.Key
			require.NoError(t, f.gdb.First(&stored, k.ID).Error)

			count, err := f.repo.CountForKey(f.ctx, f.first.ID, k.ID)
			require.NoError(t, err)

			if updateErr != nil {
				var verr *validation.Error
				require.True(t, errors.As(updateErr, &verr), "round %d: %v", round, updateErr)
				assert.Equal(t, []string{string(key.CodeMultiplesExist)}, verr.Codes("allow_multiples"))
				assert.True(t, stored.AllowMultiples, "round %d", round)
				assert.Greater(t, count, int64(1), "round %d", round)

				continue
			}

			assert.False(t, stored.AllowMultiples, "round %d", round)
			assert.Equal(t, int64(1), count, "round %d", round)

			var multiSlots int64
			require.NoError(t, f.gdb.Model(&models.Setting{}).
				Where("key_id = ? AND single_slot IS NULL", k.ID).
				Count(&multiSlots).Error)
			assert.Zero(t, multiSlots, "round %d: every setting of a single value key holds the slot", round)
		}
	})
}
