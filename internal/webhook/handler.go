package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

const (
	responseFunded       = "Wallet Funded"
	responseDuplicate    = "Already Processed"
	responseIgnored      = "Event Ignored"
	responseUnknownUser  = "User not found"
	responseUnauthorized = "Unauthorized"
)

type EventProcessor interface {
	Process(ctx context.Context, event ChargeEvent, raw []byte) (Outcome, error)
}

type Handler struct {
	processor EventProcessor
	secret    []byte
	logger    *slog.Logger
}

func NewHandler(processor EventProcessor, secret []byte, logger *slog.Logger) *Handler {
	return &Handler{processor: processor, secret: secret, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		http.Error(w, responseUnauthorized, http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// The body is untrusted until the digest matches.
	if !VerifySignature(h.secret, body, signature) {
		h.logger.WarnContext(r.Context(), "Webhook signature mismatch")
		http.Error(w, responseUnauthorized, http.StatusUnauthorized)
		return
	}

	var event ChargeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if event.Event != EventChargeSuccess {
		h.logger.InfoContext(r.Context(), "Ignoring event", "event", event.Event)
		writeText(w, responseIgnored)
		return
	}

	outcome, err := h.processor.Process(r.Context(), event, body)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error processing charge event", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch outcome {
	case OutcomeDuplicate:
		writeText(w, responseDuplicate)
	case OutcomeUnknownUser:
		writeText(w, responseUnknownUser)
	default:
		writeText(w, responseFunded)
	}
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
