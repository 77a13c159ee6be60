package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teewatch/teewatch/internal/api/handlers"
	"github.com/teewatch/teewatch/internal/api/middleware"
	"github.com/teewatch/teewatch/internal/application/services"
	"github.com/teewatch/teewatch/internal/domain/entities"
)

type fakeWatchRepo struct {
	mu      sync.Mutex
	entries map[string]*entities.WatchEntry
	nextID  int64
}

func newFakeWatchRepo() *fakeWatchRepo {
	return &fakeWatchRepo{entries: map[string]*entities.WatchEntry{}}
}

func key(url, email string) string { return url + "|" + email }

func (r *fakeWatchRepo) Exists(ctx context.Context, url, userEmail string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key(url, userEmail)]
	return ok, nil
}

func (r *fakeWatchRepo) Create(ctx context.Context, watch *entities.WatchEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	watch.ID = r.nextID
	copied := *watch
	r.entries[key(watch.URL, watch.UserEmail)] = &copied
	return nil
}

func (r *fakeWatchRepo) Delete(ctx context.Context, url, userEmail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key(url, userEmail))
	return nil
}

func (r *fakeWatchRepo) ListByUser(ctx context.Context, userEmail string) ([]*entities.WatchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.WatchEntry
	for _, e := range r.entries {
		if e.UserEmail == userEmail {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeWatchRepo) ListUnnotified(ctx context.Context, cutoff time.Time) ([]*entities.WatchEntry, error) {
	return nil, nil
}

func (r *fakeWatchRepo) MarkNotified(ctx context.Context, id int64) error {
	return nil
}

func authedRequest(req *http.Request, user *entities.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func watchFixture() (*handlers.WatchHandler, *fakeWatchRepo) {
	repo := newFakeWatchRepo()
	svc := services.NewWatchService(repo, "https://www.teeoff.com")
	return handlers.NewWatchHandler(svc), repo
}

func TestWatchHandler_Toggle(t *testing.T) {
	user := &entities.User{ID: "user-1", Email: "golfer@example.com"}
	body := `{"slot":{"time":"6:00 AM","detail_url":"book/1"},"date":"2025-05-21"}`

	t.Run("rejects anonymous callers before any storage call", func(t *testing.T) {
		handler, repo := watchFixture()

		req := httptest.NewRequest("POST", "/api/watches/toggle", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.Toggle(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, repo.entries)
	})

	t.Run("creates then removes the watch on consecutive toggles", func(t *testing.T) {
		handler, repo := watchFixture()

		req := authedRequest(httptest.NewRequest("POST", "/api/watches/toggle", strings.NewReader(body)), user)
		w := httptest.NewRecorder()
		handler.Toggle(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]bool
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp["watched"])
		assert.Len(t, repo.entries, 1)

		req = authedRequest(httptest.NewRequest("POST", "/api/watches/toggle", strings.NewReader(body)), user)
		w = httptest.NewRecorder()
		handler.Toggle(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp["watched"])
		assert.Empty(t, repo.entries)
	})

	t.Run("rejects a malformed slot time without writing", func(t *testing.T) {
		handler, repo := watchFixture()

		bad := `{"slot":{"time":"sixish","detail_url":"book/1"},"date":"2025-05-21"}`
		req := authedRequest(httptest.NewRequest("POST", "/api/watches/toggle", strings.NewReader(bad)), user)
		w := httptest.NewRecorder()
		handler.Toggle(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, repo.entries)
	})
}

func TestWatchHandler_CheckStatus(t *testing.T) {
	user := &entities.User{ID: "user-1", Email: "golfer@example.com"}

	t.Run("requires a url", func(t *testing.T) {
		handler, _ := watchFixture()
		req := httptest.NewRequest("GET", "/api/watches/status", nil)
		w := httptest.NewRecorder()
		handler.CheckStatus(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("anonymous callers read as not watched", func(t *testing.T) {
		handler, _ := watchFixture()
		req := httptest.NewRequest("GET", "/api/watches/status?url=https://www.teeoff.com/book/1", nil)
		w := httptest.NewRecorder()
		handler.CheckStatus(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, false, resp["watched"])
	})

	t.Run("reports a watched slot", func(t *testing.T) {
		handler, repo := watchFixture()
		repo.Create(context.Background(), &entities.WatchEntry{
			UserEmail: user.Email,
			URL:       "https://www.teeoff.com/book/1",
			TeeTime:   time.Now().Add(time.Hour),
		})

		req := authedRequest(httptest.NewRequest("GET", "/api/watches/status?url=https://www.teeoff.com/book/1", nil), user)
		w := httptest.NewRecorder()
		handler.CheckStatus(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, true, resp["watched"])
	})
}

func TestWatchHandler_ListWatches(t *testing.T) {
	user := &entities.User{ID: "user-1", Email: "golfer@example.com"}
	handler, repo := watchFixture()
	repo.Create(context.Background(), &entities.WatchEntry{
		UserEmail: user.Email,
		URL:       "https://www.teeoff.com/book/1",
		TeeTime:   time.Now().Add(time.Hour),
	})

	req := authedRequest(httptest.NewRequest("GET", "/api/watches", nil), user)
	w := httptest.NewRecorder()
	handler.ListWatches(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Watches []entities.WatchEntry `json:"watches"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Watches, 1)
	assert.Equal(t, "https://www.teeoff.com/book/1", resp.Watches[0].URL)
}
