package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/teeoff"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

type stubProvider struct {
	geoResult    *teeoff.GeoCityResult
	geoErr       error
	searchResult *teeoff.SearchResult
	searchErr    error
	lastRequest  *teeoff.SearchRequest
	geoCalls     int
}

func (s *stubProvider) GeoCity(ctx context.Context, city string) (*teeoff.GeoCityResult, error) {
	s.geoCalls++
	if s.geoErr != nil {
		return nil, s.geoErr
	}
	if s.geoResult == nil {
		return &teeoff.GeoCityResult{}, nil
	}
	return s.geoResult, nil
}

func (s *stubProvider) GeoCityRaw(ctx context.Context, city string) (*teeoff.RawResponse, error) {
	return nil, nil
}

func (s *stubProvider) SearchTeeTimes(ctx context.Context, req *teeoff.SearchRequest) (*teeoff.SearchResult, error) {
	s.lastRequest = req
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if s.searchResult == nil {
		return &teeoff.SearchResult{}, nil
	}
	return s.searchResult, nil
}

func (s *stubProvider) SearchRaw(ctx context.Context, body []byte) (*teeoff.RawResponse, error) {
	return nil, nil
}

type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, apperrors.NewNotFoundError("key not found")
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func testFilter() *entities.SearchFilter {
	return &entities.SearchFilter{
		City:    "Seattle",
		Date:    time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC),
		Players: "any",
		Holes:   "18",
		TimeMin: 5,
		TimeMax: 12,
	}
}

func TestSearchService_ValidateFilter(t *testing.T) {
	svc := NewSearchService(&stubProvider{}, nil, 25, nil)

	t.Run("rejects a missing city", func(t *testing.T) {
		filter := testFilter()
		filter.City = "  "
		err := svc.ValidateFilter(filter)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects an inverted time window", func(t *testing.T) {
		filter := testFilter()
		filter.TimeMin, filter.TimeMax = 14, 6
		err := svc.ValidateFilter(filter)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("accepts a complete filter", func(t *testing.T) {
		assert.NoError(t, svc.ValidateFilter(testFilter()))
	})
}

func TestSearchService_ResolveCity(t *testing.T) {
	t.Run("uses the first geocoding hit", func(t *testing.T) {
		provider := &stubProvider{geoResult: &teeoff.GeoCityResult{
			Hits: []teeoff.GeoHit{{Name: "Seattle", Latitude: 47.6, Longitude: -122.3}},
		}}
		svc := NewSearchService(provider, nil, 25, nil)

		coords, found, err := svc.ResolveCity(context.Background(), "Seattle")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 47.6, coords.Latitude)
	})

	t.Run("missing hits is not an error", func(t *testing.T) {
		svc := NewSearchService(&stubProvider{}, nil, 25, nil)
		_, found, err := svc.ResolveCity(context.Background(), "Nowhere")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("caches geocoded coordinates", func(t *testing.T) {
		provider := &stubProvider{geoResult: &teeoff.GeoCityResult{
			Hits: []teeoff.GeoHit{{Name: "Seattle", Latitude: 47.6, Longitude: -122.3}},
		}}
		svc := NewSearchService(provider, newMemoryCache(), 25, nil)

		_, _, err := svc.ResolveCity(context.Background(), "Seattle")
		require.NoError(t, err)
		coords, found, err := svc.ResolveCity(context.Background(), "Seattle")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, -122.3, coords.Longitude)
		assert.Equal(t, 1, provider.geoCalls)
	})
}

func TestSearchService_Search(t *testing.T) {
	t.Run("geocodes then searches and normalizes", func(t *testing.T) {
		provider := &stubProvider{
			geoResult: &teeoff.GeoCityResult{
				Hits: []teeoff.GeoHit{{Name: "Seattle", Latitude: 47.6, Longitude: -122.3}},
			},
			searchResult: &teeoff.SearchResult{
				Facilities: []teeoff.Facility{
					{Name: "Foo", Address: teeoff.Address{City: "Seattle"}, TeeTimes: []teeoff.TeeTime{
						{Time: "6:00 AM", Players: 4, DetailURL: "book/1"},
					}},
					{Name: "Elsewhere", Address: teeoff.Address{City: "Tacoma"}},
				},
			},
		}
		svc := NewSearchService(provider, nil, 25, nil)

		groups, err := svc.Search(context.Background(), testFilter())
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Foo", groups[0].FacilityName)

		require.NotNil(t, provider.lastRequest)
		assert.Equal(t, 47.6, provider.lastRequest.Latitude)
		assert.Equal(t, 25, provider.lastRequest.Radius)
		assert.Equal(t, "May 21 2026", provider.lastRequest.Date)
		assert.Equal(t, 5, provider.lastRequest.TimeMin)
	})

	t.Run("surfaces geocoding failures", func(t *testing.T) {
		provider := &stubProvider{geoErr: apperrors.NewUpstreamError("boom", nil)}
		svc := NewSearchService(provider, nil, 25, nil)

		_, err := svc.Search(context.Background(), testFilter())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUpstream))
	})

	t.Run("surfaces search failures to the caller", func(t *testing.T) {
		provider := &stubProvider{
			geoResult: &teeoff.GeoCityResult{Hits: []teeoff.GeoHit{{Latitude: 1, Longitude: 2}}},
			searchErr: apperrors.NewUpstreamError("provider returned status 502", nil),
		}
		svc := NewSearchService(provider, nil, 25, nil)

		_, err := svc.Search(context.Background(), testFilter())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUpstream))
	})
}

func TestSearchService_SearchFacility(t *testing.T) {
	provider := &stubProvider{
		geoResult: &teeoff.GeoCityResult{Hits: []teeoff.GeoHit{{Latitude: 47.6, Longitude: -122.3}}},
		searchResult: &teeoff.SearchResult{
			Facilities: []teeoff.Facility{
				{Name: "Foo Golf Club", Address: teeoff.Address{City: "Seattle"}},
				{Name: "Bar Links", Address: teeoff.Address{City: "Seattle"}},
			},
		},
	}
	svc := NewSearchService(provider, nil, 25, nil)

	filter := &entities.SearchFilter{
		City:    "Foo Golf Club",
		Date:    time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC),
		TimeMin: 5,
		TimeMax: 20,
	}
	groups, err := svc.SearchFacility(context.Background(), filter, "Foo Golf Club")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Foo Golf Club", groups[0].FacilityName)
}

func TestAbsoluteDetailURL(t *testing.T) {
	assert.Equal(t, "https://www.teeoff.com/book/1", absoluteDetailURL("https://www.teeoff.com", "book/1"))
	assert.Equal(t, "https://www.teeoff.com/book/1", absoluteDetailURL("https://www.teeoff.com/", "/book/1"))
	assert.Equal(t, "https://other.example/x", absoluteDetailURL("https://www.teeoff.com", "https://other.example/x"))
}
