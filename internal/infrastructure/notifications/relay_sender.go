package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teewatch/teewatch/internal/domain/providers"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
	"github.com/teewatch/teewatch/pkg/retry"
)

// RelaySender delivers notifications through an external push relay.
// The relay fans out to whatever channels the recipient has enrolled.
type RelaySender struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRelaySender creates a new relay sender.
func NewRelaySender(endpoint, apiKey string) providers.Notifier {
	return &RelaySender{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one notification to the relay, retrying transient failures.
func (s *RelaySender) Send(ctx context.Context, n *providers.Notification) error {
	if n.Recipient == "" {
		return apperrors.NewValidationError("notification recipient is required")
	}

	body, err := json.Marshal(n)
	if err != nil {
		return apperrors.NewInternalError("failed to encode notification", err)
	}

	// Rejections are permanent; only transport and 5xx failures retry.
	var rejected error
	err = retry.DoWithLog(ctx, retry.DefaultConfig(), "notification-relay", func() error {
		postErr := s.post(ctx, body)
		if apperrors.IsType(postErr, apperrors.ErrorTypeValidation) {
			rejected = postErr
			return nil
		}
		return postErr
	}, func(attempt int, attemptErr error, nextDelay time.Duration) {
		observability.LoggerFromContext(ctx).Warn().
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Err(attemptErr).
			Msg("notification delivery failed, retrying")
	})
	if rejected != nil {
		return rejected
	}
	return err
}

func (s *RelaySender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternalError("failed to build relay request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("notification relay unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return apperrors.NewUpstreamError(fmt.Sprintf("relay error: status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().
			Int("status", resp.StatusCode).
			Msg("notification relay rejected message")
		return apperrors.NewValidationError(fmt.Sprintf("relay rejected message: status %d", resp.StatusCode))
	}

	return nil
}
