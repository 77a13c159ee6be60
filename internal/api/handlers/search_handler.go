package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/teewatch/teewatch/internal/application/services"
	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
)

const searchDateLayout = "2006-01-02"

// SearchHandler serves normalized tee-time search, one-shot and as a
// live SSE session.
type SearchHandler struct {
	search       *services.SearchService
	pollInterval time.Duration
	metrics      *observability.Metrics
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search *services.SearchService, pollInterval time.Duration, metrics *observability.Metrics) *SearchHandler {
	return &SearchHandler{
		search:       search,
		pollInterval: pollInterval,
		metrics:      metrics,
	}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	groups, err := h.search.Search(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	// An empty result is an explicit "no results" payload, not an error.
	if groups == nil {
		groups = []entities.FacilityTeeTimes{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": groups,
		"count":   len(groups),
	})
}

// Stream handles GET /api/search/stream: a live search session that
// re-polls on an interval and emits one snapshot event per applied poll.
func (h *SearchHandler) Stream(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	poller := services.NewPoller(h.search, *filter, h.pollInterval, h.metrics)
	go poller.Run(r.Context())

	sendEvent(w, "connected", map[string]interface{}{
		"city":      filter.City,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	logger := observability.LoggerFromContext(r.Context())
	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("city", filter.City).Msg("search stream closed")
			return
		case <-heartbeat.C:
			sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case snapshot := <-poller.Updates():
			sendEvent(w, "snapshot", snapshot)
			flusher.Flush()
		}
	}
}

func parseSearchFilter(r *http.Request) (*entities.SearchFilter, error) {
	query := r.URL.Query()

	city := query.Get("city")
	if city == "" {
		return nil, fmt.Errorf("city query parameter is required")
	}

	date := time.Now()
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse(searchDateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD")
		}
		date = parsed
	}

	filter := &entities.SearchFilter{
		City:    city,
		Date:    date,
		TimeMin: 5,
		TimeMax: 20,
	}

	if players := query.Get("players"); players != "" {
		switch players {
		case "1", "2", "3", "4", "any":
			filter.Players = players
		default:
			return nil, fmt.Errorf("players must be 1, 2, 3, 4 or any")
		}
	}
	if holes := query.Get("holes"); holes != "" {
		switch holes {
		case "any", "9", "18":
			filter.Holes = holes
		default:
			return nil, fmt.Errorf("holes must be any, 9 or 18")
		}
	}

	if raw := query.Get("timeMin"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("timeMin must be an integer hour")
		}
		filter.TimeMin = v
	}
	if raw := query.Get("timeMax"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("timeMax must be an integer hour")
		}
		filter.TimeMax = v
	}
	if filter.TimeMin > filter.TimeMax {
		return nil, fmt.Errorf("timeMin must not exceed timeMax")
	}

	if lat, lon := query.Get("lat"), query.Get("lon"); lat != "" && lon != "" {
		latF, latErr := strconv.ParseFloat(lat, 64)
		lonF, lonErr := strconv.ParseFloat(lon, 64)
		if latErr != nil || lonErr != nil {
			return nil, fmt.Errorf("lat and lon must be numbers")
		}
		filter.Geo = entities.Coordinates{Latitude: latF, Longitude: lonF}
	}

	return filter, nil
}

// sendEvent writes one SSE event.
func sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
