package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"wallet-service/internal/db"
	"wallet-service/internal/logcontext"
	"wallet-service/internal/message"
	"github.com/google/uuid"
)

type fundedPayload struct {
	ProfileID uuid.UUID `json:"profileId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Reference string    `json:"reference"`
}

// Consumer turns wallet-funded events into outbox rows for the producer to
// publish. The event ID doubles as the row ID, so a redelivered event hits
// the primary key instead of creating a second notification.
type Consumer struct {
	repo   *db.NotificationRepository
	logger *slog.Logger
}

func NewConsumer(repo *db.NotificationRepository, logger *slog.Logger) *Consumer {
	return &Consumer{repo: repo, logger: logger}
}

func (c *Consumer) Process(ctx context.Context, event message.WalletFundedEvent) error {
	ctx = logcontext.AppendCtx(ctx, slog.String("id", event.ID.String()))

	c.logger.InfoContext(ctx, "Processing wallet funded event", "profileId", event.ProfileID)

	payload := fundedPayload{
		ProfileID: event.ProfileID,
		Title:     "Wallet Funded",
		Body:      fmt.Sprintf("Your wallet was credited with %.2f %s", event.Amount, event.Currency),
		Reference: event.Reference,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error marshalling payload", "error", err)
		return err
	}

	now := time.Now()
	entity := &db.NotificationMessageEntity{
		ID:          event.ID,
		ProfileID:   event.ProfileID,
		Payload:     string(payloadBytes),
		ScheduledAt: &now,
	}

	if _, err := c.repo.Create(ctx, entity); err != nil {
		if db.IsUniqueViolation(err) {
			c.logger.InfoContext(ctx, "Notification already queued for event, skipping")
			return nil
		}
		c.logger.ErrorContext(ctx, "Error creating notification message", "error", err)
		return err
	}

	c.logger.InfoContext(ctx, "Queued funding notification")
	return nil
}
