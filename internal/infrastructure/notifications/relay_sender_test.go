package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teewatch/teewatch/internal/domain/providers"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

func TestRelaySender_Send(t *testing.T) {
	t.Run("posts the notification to the relay", func(t *testing.T) {
		var got providers.Notification
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer relay-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		sender := NewRelaySender(server.URL, "relay-key")
		err := sender.Send(context.Background(), &providers.Notification{
			Recipient: "golfer@example.com",
			Title:     "Tee time opening up",
			Body:      "Chambers Bay has a 6:00 AM slot on May 21",
			URL:       "https://example.com/tee/1",
		})
		require.NoError(t, err)
		assert.Equal(t, "golfer@example.com", got.Recipient)
		assert.Equal(t, "Tee time opening up", got.Title)
	})

	t.Run("rejects a notification without a recipient", func(t *testing.T) {
		sender := NewRelaySender("http://relay.invalid", "relay-key")
		err := sender.Send(context.Background(), &providers.Notification{Title: "no recipient"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("does not retry relay rejections", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		sender := NewRelaySender(server.URL, "relay-key")
		err := sender.Send(context.Background(), &providers.Notification{
			Recipient: "golfer@example.com",
			Title:     "Tee time opening up",
		})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("retries transient relay failures", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		sender := NewRelaySender(server.URL, "relay-key")
		err := sender.Send(context.Background(), &providers.Notification{
			Recipient: "golfer@example.com",
			Title:     "Tee time opening up",
		})
		assert.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}
