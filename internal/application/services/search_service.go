package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/providers"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/teeoff"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

const (
	geoCityCachePrefix  = "geocity:"
	geoCityCacheSeconds = 3600

	providerDateLayout = "Jan 02 2006"
)

// SearchService runs the search-and-normalize pipeline against the
// upstream provider.
type SearchService struct {
	provider teeoff.Client
	cache    providers.CacheProvider
	radius   int
	metrics  *observability.Metrics
}

// NewSearchService creates a new search service.
func NewSearchService(provider teeoff.Client, cache providers.CacheProvider, radiusMiles int, metrics *observability.Metrics) *SearchService {
	return &SearchService{
		provider: provider,
		cache:    cache,
		radius:   radiusMiles,
		metrics:  metrics,
	}
}

// ValidateFilter checks the parts of a filter the provider cannot.
func (s *SearchService) ValidateFilter(filter *entities.SearchFilter) error {
	if filter == nil {
		return apperrors.NewValidationError("search filter is required")
	}
	if strings.TrimSpace(filter.City) == "" {
		return apperrors.NewValidationError("city is required")
	}
	if filter.Date.IsZero() {
		return apperrors.NewValidationError("date is required")
	}
	if filter.TimeMin > filter.TimeMax {
		return apperrors.NewValidationError("time window minimum exceeds maximum")
	}
	return nil
}

// ResolveCity geocodes the city, caching hits. A response without hits
// is not an error; the caller keeps its previous position.
func (s *SearchService) ResolveCity(ctx context.Context, city string) (entities.Coordinates, bool, error) {
	key := geoCityCachePrefix + strings.ToLower(strings.TrimSpace(city))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var coords entities.Coordinates
			if err := json.Unmarshal(cached, &coords); err == nil {
				return coords, true, nil
			}
		}
	}

	result, err := s.provider.GeoCity(ctx, city)
	if err != nil {
		return entities.Coordinates{}, false, err
	}
	if len(result.Hits) == 0 {
		return entities.Coordinates{}, false, nil
	}

	coords := entities.Coordinates{
		Latitude:  result.Hits[0].Latitude,
		Longitude: result.Hits[0].Longitude,
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(coords); err == nil {
			if err := s.cache.Set(ctx, key, encoded, geoCityCacheSeconds); err != nil {
				observability.LoggerFromContext(ctx).Warn().
					Err(err).
					Str("city", city).
					Msg("failed to cache geocity result")
			}
		}
	}

	return coords, true, nil
}

// Search runs one search-and-normalize pass. Geocoding failures surface;
// they are the one upstream error the caller must see.
func (s *SearchService) Search(ctx context.Context, filter *entities.SearchFilter) ([]entities.FacilityTeeTimes, error) {
	ctx, span := observability.StartSpan(ctx, "SearchService.Search")
	defer span.End()

	result, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}

	return Normalize(result, filter.City), nil
}

// SearchFacility runs one search pass keeping only the named facility's
// groups. The filter's city still seeds geocoding; the match itself is on
// the facility name, which is all an alert rule's course carries.
func (s *SearchService) SearchFacility(ctx context.Context, filter *entities.SearchFilter, facilityName string) ([]entities.FacilityTeeTimes, error) {
	ctx, span := observability.StartSpan(ctx, "SearchService.SearchFacility")
	defer span.End()

	result, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}

	return NormalizeFacility(result, facilityName), nil
}

func (s *SearchService) fetch(ctx context.Context, filter *entities.SearchFilter) (*teeoff.SearchResult, error) {
	if err := s.ValidateFilter(filter); err != nil {
		return nil, err
	}

	geo := filter.Geo
	if coords, found, err := s.ResolveCity(ctx, filter.City); err != nil {
		return nil, err
	} else if found {
		geo = coords
	}

	start := time.Now()
	result, err := s.provider.SearchTeeTimes(ctx, s.buildRequest(filter, geo))
	if s.metrics != nil {
		s.metrics.UpstreamDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *SearchService) buildRequest(filter *entities.SearchFilter, geo entities.Coordinates) *teeoff.SearchRequest {
	players := filter.Players
	if players == "" {
		players = "any"
	}
	holes := filter.Holes
	if holes == "" {
		holes = "any"
	}

	return &teeoff.SearchRequest{
		Radius:            s.radius,
		Latitude:          geo.Latitude,
		Longitude:         geo.Longitude,
		PageSize:          30,
		PageNumber:        1,
		SearchType:        1,
		SortBy:            "Facilities.Distance.relevancy",
		SortDirection:     0,
		Date:              filter.Date.Format(providerDateLayout),
		PriceMax:          10000,
		Players:           players,
		Holes:             holes,
		TimeMin:           filter.TimeMin,
		TimeMax:           filter.TimeMax,
		RateType:          "all",
		View:              "Grouping",
		TeeTimeCount:      15,
		CurrentClientDate: time.Now().Format(providerDateLayout),
	}
}

// absoluteDetailURL turns a provider-relative slot path into the absolute
// URL stored on a watch.
func absoluteDetailURL(base, detailURL string) string {
	if strings.HasPrefix(detailURL, "http://") || strings.HasPrefix(detailURL, "https://") {
		return detailURL
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(detailURL, "/"))
}
