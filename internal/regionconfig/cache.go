package regionconfig

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/errors"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/openstates"
)

// MetadataFetcher provides the chamber-to-title mapping for a region from the
// external metadata API. *openstates.Client satisfies this.
type MetadataFetcher interface {
	RegionMetadata(ctx context.Context, region string) (map[string]string, error)
}

// Cache supplies RegionConfigs, populating the durable store lazily on first
// miss. Lookup failures degrade to an empty config so resolution can continue
// without titles.
type Cache struct {
	store   Store
	fetcher MetadataFetcher
	group   singleflight.Group
	logger  *slog.Logger
}

// NewCache creates a region config cache over the given store and fetcher.
func NewCache(store Store, fetcher MetadataFetcher, logger *slog.Logger) *Cache {
	return &Cache{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Lookup returns the config for a region. The second return value reports
// whether a usable config was found; when false, the returned config is empty
// and recipients will carry bare names.
//
// Concurrent misses for the same region are collapsed into a single metadata
// fetch.
func (c *Cache) Lookup(ctx context.Context, region string) (domain.RegionConfig, bool) {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		return domain.RegionConfig{}, false
	}

	cfg, err := c.store.Get(ctx, region)
	if err == nil {
		return cfg, true
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		// Store trouble is not fatal for the request; fall through to the
		// metadata API so the signer still gets recipients.
		c.logger.WarnContext(ctx, "region config store read failed",
			slog.String("region", region),
			slog.String("error", err.Error()),
		)
	}

	v, err, _ := c.group.Do(region, func() (any, error) {
		return c.populate(ctx, region)
	})
	if err != nil {
		return domain.RegionConfig{}, false
	}
	return v.(domain.RegionConfig), true
}

// populate fetches region metadata and stores the resulting config. The store
// write is best-effort: a failed write is logged and the fetched config is
// still returned for this request.
func (c *Cache) populate(ctx context.Context, region string) (domain.RegionConfig, error) {
	titles, err := c.fetcher.RegionMetadata(ctx, region)
	if err != nil {
		if errors.Is(err, openstates.ErrNoChambers) {
			c.logger.InfoContext(ctx, "no chamber metadata for region",
				slog.String("region", region),
			)
		} else {
			c.logger.ErrorContext(ctx, "region metadata fetch failed",
				slog.String("region", region),
				slog.String("error", err.Error()),
			)
		}
		return domain.RegionConfig{}, err
	}

	cfg := domain.RegionConfig{
		Region: region,
		Titles: titles,
	}

	if err := c.store.Put(ctx, cfg); err != nil {
		c.logger.ErrorContext(ctx, "region config store write failed",
			slog.String("region", region),
			slog.String("error", err.Error()),
		)
	}

	return cfg, nil
}
