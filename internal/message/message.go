package message

import (
	"time"

	"github.com/google/uuid"
)

// WalletFundedEvent is published after a credit commits, for downstream
// consumers such as the push gateway feed.
type WalletFundedEvent struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profileId"`
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Balance   float64   `json:"balance"`
	FundedAt  time.Time `json:"fundedAt"`
}

// Notification is the wire form of one outbox row on its way to delivery.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profileId"`
	Payload   string    `json:"payload"`
	Attempts  int       `json:"attempts"`
}
