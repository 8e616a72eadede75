package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"wallet-service/internal/config"
)

const defaultTimeoutMs = 10_000

// Sender posts notification payloads to the push gateway.
type Sender struct {
	client     *http.Client
	gatewayURL string
	logger     *slog.Logger
}

func NewSender(cfg config.NotifySender, logger *slog.Logger) *Sender {
	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}

	return &Sender{
		client:     &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		gatewayURL: cfg.GatewayURL,
		logger:     logger,
	}
}

func (s *Sender) Send(ctx context.Context, payload string) error {
	s.logger.InfoContext(ctx, "Sending notification to gateway", "url", s.gatewayURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewBufferString(payload))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating request", "error", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error sending notification", "error", err)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading response body", "error", err)
		return err
	}

	s.logger.InfoContext(ctx, "Gateway response", "status", resp.Status, "body", string(respBody))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("error response: %s", resp.Status)
	}

	return nil
}
