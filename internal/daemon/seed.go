package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
	"github.com/GoSiteSettings/GoSiteSettings/internal/db/controller/site"
)

// seed creates the configured sites that do not exist yet.
// Existing sites are matched by domain and left unchanged.
func seed(ctx context.Context, cfg *config.Config, gdb *gorm.DB) error {
	for _, s := range cfg.Sites {
		found, created, err := site.Ensure(ctx, gdb, s.Name, s.Domain)
		if err != nil {
			return fmt.Errorf("failed to seed site %q: %w", s.Domain, err)
		}

		if created {
			log.Info().Uint64("site", found.ID).Str("domain", found.Domain).Msg("site created")
		}
	}

	return nil
}
