package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teewatch/teewatch/internal/api/handlers"
	"github.com/teewatch/teewatch/internal/application/services"
	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/teeoff"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

func searchFixture(client *stubTeeOffClient) *handlers.SearchHandler {
	svc := services.NewSearchService(client, nil, 25, nil)
	return handlers.NewSearchHandler(svc, time.Minute, nil)
}

func TestSearchHandler_Search(t *testing.T) {
	t.Run("requires the city parameter", func(t *testing.T) {
		handler := searchFixture(&stubTeeOffClient{})

		req := httptest.NewRequest("GET", "/api/search", nil)
		w := httptest.NewRecorder()
		handler.Search(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown players and holes values", func(t *testing.T) {
		handler := searchFixture(&stubTeeOffClient{})

		req := httptest.NewRequest("GET", "/api/search?city=Seattle&players=9", nil)
		w := httptest.NewRecorder()
		handler.Search(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		req = httptest.NewRequest("GET", "/api/search?city=Seattle&holes=12", nil)
		w = httptest.NewRecorder()
		handler.Search(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an inverted time window", func(t *testing.T) {
		handler := searchFixture(&stubTeeOffClient{})

		req := httptest.NewRequest("GET", "/api/search?city=Seattle&timeMin=15&timeMax=6", nil)
		w := httptest.NewRecorder()
		handler.Search(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns normalized groups", func(t *testing.T) {
		client := &stubTeeOffClient{
			geoResult: &teeoff.GeoCityResult{Hits: []teeoff.GeoHit{{Latitude: 47.6, Longitude: -122.3}}},
			searchResult: &teeoff.SearchResult{
				Facilities: []teeoff.Facility{
					{Name: "Foo", Address: teeoff.Address{City: "Seattle"}, TeeTimes: []teeoff.TeeTime{
						{Time: "6:00 AM", Players: 4, DetailURL: "book/1", Price: teeoff.Price{RoundedSuperScriptFormattedValue: "$10"}},
					}},
				},
			},
		}
		handler := searchFixture(client)

		req := httptest.NewRequest("GET", "/api/search?city=Seattle&date=2026-05-21", nil)
		w := httptest.NewRecorder()
		handler.Search(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Results []entities.FacilityTeeTimes `json:"results"`
			Count   int                         `json:"count"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Equal(t, 1, resp.Count)
		require.Len(t, resp.Results[0].Slots, 1)
		assert.Equal(t, "up to 4", resp.Results[0].Slots[0].PlayerCount)
		assert.Equal(t, "$10", resp.Results[0].Slots[0].Price)
	})

	t.Run("no matching facilities is an explicit empty result", func(t *testing.T) {
		client := &stubTeeOffClient{
			geoResult: &teeoff.GeoCityResult{Hits: []teeoff.GeoHit{{Latitude: 1, Longitude: 2}}},
			searchResult: &teeoff.SearchResult{
				Facilities: []teeoff.Facility{{Name: "Elsewhere", Address: teeoff.Address{City: "Tacoma"}}},
			},
		}
		handler := searchFixture(client)

		req := httptest.NewRequest("GET", "/api/search?city=Seattle", nil)
		w := httptest.NewRecorder()
		handler.Search(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, float64(0), resp["count"])
		assert.NotNil(t, resp["results"])
	})

	t.Run("surfaces geocoding failures", func(t *testing.T) {
		client := &stubTeeOffClient{geoErr: apperrors.NewUpstreamError("provider request failed", nil)}
		handler := searchFixture(client)

		req := httptest.NewRequest("GET", "/api/search?city=Seattle", nil)
		w := httptest.NewRecorder()
		handler.Search(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
