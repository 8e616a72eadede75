package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wallet-service/internal/db"
	"wallet-service/internal/logcontext"
	"wallet-service/internal/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Outcome int

const (
	OutcomeFunded Outcome = iota
	OutcomeDuplicate
	OutcomeUnknownUser
)

type Publisher interface {
	Publish(ctx context.Context, event message.WalletFundedEvent) error
}

type Processor struct {
	profiles  *db.ProfileRepository
	payments  *db.PaymentRepository
	publisher Publisher
	logger    *slog.Logger
}

func NewProcessor(profiles *db.ProfileRepository, payments *db.PaymentRepository, publisher Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		profiles:  profiles,
		payments:  payments,
		publisher: publisher,
		logger:    logger,
	}
}

// Process applies one verified charge.success event. The reference lookup,
// balance credit and both audit inserts run in a single transaction, so a
// partial failure cannot credit the wallet without the audit trail. The
// unique index on payment_event.reference backstops concurrent deliveries
// that race past the lookup.
func (p *Processor) Process(ctx context.Context, event ChargeEvent, raw []byte) (Outcome, error) {
	ctx = logcontext.AppendCtx(ctx, slog.String("reference", event.Data.Reference))

	amount := float64(event.Data.Amount) / 100

	tx, err := p.payments.BeginTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback(ctx)

	existing, err := p.payments.GetEventByReference(ctx, tx, event.Data.Reference)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		p.logger.InfoContext(ctx, "Event already processed, skipping")
		return OutcomeDuplicate, nil
	}

	profile, err := p.profiles.GetByEmail(ctx, tx, event.Data.Customer.Email)
	if errors.Is(err, db.ErrProfileNotFound) {
		// Acknowledged, not failed: a non-2xx here would make the provider
		// retry a payment we can never resolve.
		p.logger.WarnContext(ctx, "No profile for customer email", "email", event.Data.Customer.Email)
		return OutcomeUnknownUser, nil
	}
	if err != nil {
		return 0, err
	}

	balance, err := p.profiles.CreditBalance(ctx, tx, profile.ID, amount)
	if err != nil {
		return 0, err
	}

	now := time.Now()

	transaction := &db.TransactionEntity{
		ID:          uuid.New(),
		ProfileID:   profile.ID,
		Type:        "deposit",
		Amount:      amount,
		Status:      "success",
		Reference:   event.Data.Reference,
		Description: fmt.Sprintf("Wallet funded via %s", event.Data.Channel),
		Channel:     event.Data.Channel,
		CreatedAt:   now,
	}
	if err := p.payments.CreateTransaction(ctx, tx, transaction); err != nil {
		return 0, err
	}

	paymentEvent := &db.PaymentEventEntity{
		ID:          uuid.New(),
		Provider:    Provider,
		Reference:   event.Data.Reference,
		Amount:      amount,
		Currency:    event.Data.Currency,
		Status:      event.Data.Status,
		Payload:     string(raw),
		ProcessedAt: now,
	}
	if err := p.payments.CreatePaymentEvent(ctx, tx, paymentEvent); err != nil {
		if db.IsUniqueViolation(err) {
			p.logger.InfoContext(ctx, "Concurrent delivery won the insert, skipping")
			return OutcomeDuplicate, nil
		}
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "committing transaction")
	}

	p.logger.InfoContext(ctx, "Wallet funded", "profileId", profile.ID, "amount", amount, "balance", balance)

	p.publish(ctx, profile.ID, event, amount, balance, now)

	return OutcomeFunded, nil
}

// publish is best effort. The provider was already acknowledged by commit
// time, so a broker outage must not fail the request.
func (p *Processor) publish(ctx context.Context, profileID uuid.UUID, event ChargeEvent, amount, balance float64, fundedAt time.Time) {
	if p.publisher == nil {
		return
	}

	funded := message.WalletFundedEvent{
		ID:        uuid.New(),
		ProfileID: profileID,
		Reference: event.Data.Reference,
		Amount:    amount,
		Currency:  event.Data.Currency,
		Balance:   balance,
		FundedAt:  fundedAt,
	}

	if err := p.publisher.Publish(ctx, funded); err != nil {
		p.logger.ErrorContext(ctx, "Error publishing wallet funded event", "error", err)
	}
}
