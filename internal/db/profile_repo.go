package db

import (
	"context"
	"time"

	"wallet-service/internal/query"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var ErrProfileNotFound = errors.New("profile not found")

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repository
// methods can run standalone or inside a caller-owned transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, entity *ProfileEntity) (*ProfileEntity, error) {
	sql := `INSERT INTO profile (id, email, username, phone, balance, created_at, updated_at)
	        VALUES ($1, $2, $3, $4, $5, now(), now()) RETURNING id`
	err := r.pool.QueryRow(ctx, sql, entity.ID, entity.Email, entity.Username, entity.Phone, entity.Balance).Scan(&entity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "inserting profile")
	}
	return entity, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, q Querier, email string) (*ProfileEntity, error) {
	if q == nil {
		q = r.pool
	}

	sql := `SELECT id, email, username, phone, balance, created_at, updated_at FROM profile WHERE email = $1`
	row := q.QueryRow(ctx, sql, email)

	var entity ProfileEntity
	err := row.Scan(&entity.ID, &entity.Email, &entity.Username, &entity.Phone, &entity.Balance, &entity.CreatedAt, &entity.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting profile by email")
	}
	return &entity, nil
}

// CreditBalance applies the credit server-side so concurrent credits to the
// same profile cannot lose updates. Returns the balance after the credit.
func (r *ProfileRepository) CreditBalance(ctx context.Context, q Querier, id uuid.UUID, amount float64) (float64, error) {
	if q == nil {
		q = r.pool
	}

	sql := `UPDATE profile SET balance = COALESCE(balance, 0) + $1, updated_at = $2 WHERE id = $3 RETURNING balance`

	var balance float64
	err := q.QueryRow(ctx, sql, amount, time.Now(), id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrProfileNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "crediting balance")
	}
	return balance, nil
}

// Exists reports whether any row matches the built query.
func (r *ProfileRepository) Exists(ctx context.Context, q *query.Query) (bool, error) {
	sql, args := q.ExistsSQL()

	var exists bool
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking existence")
	}
	return exists, nil
}
