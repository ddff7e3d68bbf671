package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/geocode"
)

var resolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipient_resolutions_total",
		Help: "Total recipient resolutions by outcome",
	},
	[]string{"outcome"},
)

const (
	outcomeResolved     = "resolved"
	outcomeNoCredential = "no_credential"
	outcomeNoGeocoder   = "no_geocoder"
	outcomeNotGeocoded  = "not_geocoded"
	outcomeNoOfficials  = "no_officials"
	outcomeLookupFailed = "lookup_failed"
)

// Directory is the legislator directory consulted per resolution.
// *openstates.Client satisfies this.
type Directory interface {
	HasCredential() bool
	LegislatorsByLocation(ctx context.Context, coord domain.GeoCoordinate) ([]domain.LegislatorRecord, error)
}

// RegionConfigSource supplies the chamber title mapping for a region.
// *regionconfig.Cache satisfies this.
type RegionConfigSource interface {
	Lookup(ctx context.Context, region string) (domain.RegionConfig, bool)
}

// Resolver turns a signer's address into a deduplicated, display-ready
// recipient list. Every failure mode degrades to an empty list; backend
// trouble is never surfaced to the signer.
type Resolver struct {
	directory Directory
	geocoder  geocode.Geocoder
	regions   RegionConfigSource
	logger    *slog.Logger
}

// New creates a resolver. A nil geocoder means no geocoding capability is
// configured; resolution then aborts before any network call.
func New(directory Directory, geocoder geocode.Geocoder, regions RegionConfigSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		geocoder:  geocoder,
		regions:   regions,
		logger:    logger,
	}
}

// Resolve runs the pipeline: credential check, region config lookup, geocode,
// directory query, recipient assembly, dedup. The output is stable for
// identical input: recipients keep directory order, and the first occurrence
// of an email wins.
func (r *Resolver) Resolve(ctx context.Context, addr domain.AddressRecord) []domain.Recipient {
	if !r.directory.HasCredential() {
		r.logger.ErrorContext(ctx, "no directory API credential configured")
		resolutionsTotal.WithLabelValues(outcomeNoCredential).Inc()
		return nil
	}

	// Best effort: a missing region config only costs the honorific titles.
	regionCfg, _ := r.regions.Lookup(ctx, addr.Region)

	if r.geocoder == nil {
		r.logger.ErrorContext(ctx, "no geocoding capability configured")
		resolutionsTotal.WithLabelValues(outcomeNoGeocoder).Inc()
		return nil
	}

	coord, err := r.geocoder.Geocode(ctx, addr)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			r.logger.InfoContext(ctx, "address not geocodable",
				slog.String("region", addr.Region),
				slog.String("postal_code", addr.PostalCode),
			)
		} else {
			r.logger.ErrorContext(ctx, "geocoding failed",
				slog.String("region", addr.Region),
				slog.String("error", err.Error()),
			)
		}
		resolutionsTotal.WithLabelValues(outcomeNotGeocoded).Inc()
		return nil
	}

	records, err := r.directory.LegislatorsByLocation(ctx, coord)
	if err != nil {
		r.logger.ErrorContext(ctx, "directory lookup failed",
			slog.Float64("latitude", coord.Latitude),
			slog.Float64("longitude", coord.Longitude),
			slog.String("error", err.Error()),
		)
		resolutionsTotal.WithLabelValues(outcomeLookupFailed).Inc()
		return nil
	}

	recipients := assemble(records, regionCfg)

	if len(recipients) == 0 {
		resolutionsTotal.WithLabelValues(outcomeNoOfficials).Inc()
	} else {
		resolutionsTotal.WithLabelValues(outcomeResolved).Inc()
	}

	r.logger.InfoContext(ctx, "recipients resolved",
		slog.String("region", addr.Region),
		slog.Int("directory_records", len(records)),
		slog.Int("recipients", len(recipients)),
	)

	return recipients
}

// assemble filters unusable records, formats display names, and deduplicates
// by case-insensitive email.
func assemble(records []domain.LegislatorRecord, regionCfg domain.RegionConfig) []domain.Recipient {
	seen := make(map[string]struct{}, len(records))
	recipients := make([]domain.Recipient, 0, len(records))

	for _, rec := range records {
		if !rec.Usable() {
			continue
		}

		recipient := domain.Recipient{
			Email:    rec.Email,
			Name:     regionCfg.DisplayName(rec),
			PhotoURL: rec.PhotoURL,
		}

		key := recipient.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		recipients = append(recipients, recipient)
	}

	return recipients
}
