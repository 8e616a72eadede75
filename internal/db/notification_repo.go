package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// NotificationRepository manages the funding-notification outbox.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *NotificationRepository) Create(ctx context.Context, entity *NotificationMessageEntity) (*NotificationMessageEntity, error) {
	sql := `INSERT INTO notification_message (id, profile_id, payload, created_at, updated_at, scheduled_at, publish_attempts, delivery_attempts)
	        VALUES ($1, $2, $3, now(), now(), $4, $5, $6) RETURNING id`
	err := r.pool.QueryRow(ctx, sql, entity.ID, entity.ProfileID, entity.Payload,
		entity.ScheduledAt, entity.PublishAttempts, entity.DeliveryAttempts).Scan(&entity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "inserting notification message")
	}
	return entity, nil
}

func (r *NotificationRepository) SelectByID(ctx context.Context, id uuid.UUID) (*NotificationMessageEntity, error) {
	sql := `SELECT id, profile_id, payload, created_at, updated_at, scheduled_at, published_at, delivered_at, publish_attempts, delivery_attempts, error
	        FROM notification_message WHERE id = $1`
	return scanNotification(r.pool.QueryRow(ctx, sql, id))
}

// GetUnpublished fetches due outbox rows, skipping rows locked by a
// concurrent producer run.
func (r *NotificationRepository) GetUnpublished(ctx context.Context, tx pgx.Tx, limit int) ([]*NotificationMessageEntity, error) {
	sql := `SELECT id, profile_id, payload, created_at, updated_at, scheduled_at, published_at, delivered_at, publish_attempts, delivery_attempts, error
	        FROM notification_message
	        WHERE published_at IS NULL AND scheduled_at IS NOT NULL AND scheduled_at <= now()
	        ORDER BY scheduled_at
	        LIMIT $1
	        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, sql, limit)
	if err != nil {
		return nil, errors.Wrap(err, "selecting unpublished notifications")
	}
	defer rows.Close()

	var entities []*NotificationMessageEntity
	for rows.Next() {
		entity, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (r *NotificationRepository) Update(ctx context.Context, tx pgx.Tx, entity *NotificationMessageEntity) error {
	sql := `UPDATE notification_message
	        SET scheduled_at = $1, published_at = $2, publish_attempts = $3, error = $4, updated_at = now()
	        WHERE id = $5`
	_, err := tx.Exec(ctx, sql, entity.ScheduledAt, entity.PublishedAt, entity.PublishAttempts, entity.Error, entity.ID)
	return errors.Wrap(err, "updating notification message")
}

func (r *NotificationRepository) SelectForUpdateByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*NotificationMessageEntity, error) {
	sql := `SELECT id, profile_id, payload, created_at, updated_at, scheduled_at, published_at, delivered_at, publish_attempts, delivery_attempts, error
	        FROM notification_message WHERE id = $1 FOR UPDATE`
	return scanNotification(tx.QueryRow(ctx, sql, id))
}

func (r *NotificationRepository) MarkDelivered(ctx context.Context, tx pgx.Tx, id uuid.UUID, attempts int, deliveredAt time.Time) error {
	sql := `UPDATE notification_message
	        SET delivered_at = $1, delivery_attempts = $2, error = NULL, updated_at = now()
	        WHERE id = $3`
	_, err := tx.Exec(ctx, sql, deliveredAt, attempts, id)
	return errors.Wrap(err, "marking notification delivered")
}

func (r *NotificationRepository) RescheduleDelivery(ctx context.Context, tx pgx.Tx, id uuid.UUID, scheduledAt *time.Time, attempts int, errMsg string) error {
	sql := `UPDATE notification_message
	        SET scheduled_at = $1, published_at = NULL, delivery_attempts = $2, error = $3, updated_at = now()
	        WHERE id = $4`
	_, err := tx.Exec(ctx, sql, scheduledAt, attempts, errMsg, id)
	return errors.Wrap(err, "rescheduling notification delivery")
}

func scanNotification(row pgx.Row) (*NotificationMessageEntity, error) {
	var entity NotificationMessageEntity
	err := row.Scan(&entity.ID, &entity.ProfileID, &entity.Payload, &entity.CreatedAt, &entity.UpdatedAt,
		&entity.ScheduledAt, &entity.PublishedAt, &entity.DeliveredAt,
		&entity.PublishAttempts, &entity.DeliveryAttempts, &entity.Error)
	if err != nil {
		return nil, errors.Wrap(err, "scanning notification message")
	}
	return &entity, nil
}
