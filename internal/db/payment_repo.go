package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const uniqueViolationCode = "23505"

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// GetEventByReference returns nil without error when the reference has not
// been processed yet.
func (r *PaymentRepository) GetEventByReference(ctx context.Context, q Querier, reference string) (*PaymentEventEntity, error) {
	if q == nil {
		q = r.pool
	}

	sql := `SELECT id, provider, reference, amount, currency, status, payload, processed_at
	        FROM payment_event WHERE reference = $1`
	row := q.QueryRow(ctx, sql, reference)

	var entity PaymentEventEntity
	err := row.Scan(&entity.ID, &entity.Provider, &entity.Reference, &entity.Amount,
		&entity.Currency, &entity.Status, &entity.Payload, &entity.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting payment event by reference")
	}
	return &entity, nil
}

func (r *PaymentRepository) CreateTransaction(ctx context.Context, q Querier, entity *TransactionEntity) error {
	if q == nil {
		q = r.pool
	}

	sql := `INSERT INTO wallet_transaction (id, profile_id, type, amount, status, reference, description, channel, created_at)
	        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.Exec(ctx, sql, entity.ID, entity.ProfileID, entity.Type, entity.Amount,
		entity.Status, entity.Reference, entity.Description, entity.Channel, entity.CreatedAt)
	return errors.Wrap(err, "inserting wallet transaction")
}

func (r *PaymentRepository) CreatePaymentEvent(ctx context.Context, q Querier, entity *PaymentEventEntity) error {
	if q == nil {
		q = r.pool
	}

	sql := `INSERT INTO payment_event (id, provider, reference, amount, currency, status, payload, processed_at)
	        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.Exec(ctx, sql, entity.ID, entity.Provider, entity.Reference, entity.Amount,
		entity.Currency, entity.Status, entity.Payload, entity.ProcessedAt)
	return errors.Wrap(err, "inserting payment event")
}

// IsUniqueViolation reports whether err is a unique-index conflict, which
// happens when two deliveries of the same reference race past the lookup.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
