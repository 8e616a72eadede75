package db

import (
	"time"

	"github.com/google/uuid"
)

type ProfileEntity struct {
	ID        uuid.UUID
	Email     string
	Username  string
	Phone     *string
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionEntity is an append-only ledger row. Rows are never updated
// or deleted once written.
type TransactionEntity struct {
	ID          uuid.UUID
	ProfileID   uuid.UUID
	Type        string
	Amount      float64
	Status      string
	Reference   string
	Description string
	Channel     string
	CreatedAt   time.Time
}

// PaymentEventEntity records one processed provider notification. The
// unique reference column is the idempotency key for redeliveries.
type PaymentEventEntity struct {
	ID          uuid.UUID
	Provider    string
	Reference   string
	Amount      float64
	Currency    string
	Status      string
	Payload     string
	ProcessedAt time.Time
}

type NotificationMessageEntity struct {
	ID               uuid.UUID
	ProfileID        uuid.UUID
	Payload          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ScheduledAt      *time.Time
	PublishedAt      *time.Time
	DeliveredAt      *time.Time
	PublishAttempts  int
	DeliveryAttempts int
	Error            *string
}
