package notify

import (
	"context"
	"log/slog"
	"time"

	"wallet-service/internal/config"
	"wallet-service/internal/db"
	"wallet-service/internal/logcontext"
	"wallet-service/internal/message"
	"github.com/VictoriaMetrics/metrics"
)

const (
	defaultParallelism         = 1000
	defaultMaxDeliveryAttempts = 3
	defaultDeliveryRetryDelay  = 10 * time.Second
)

var (
	deliveryDeliveredCounter   = metrics.GetOrCreateCounter(`notification_delivery_total{result="delivered"}`)
	deliveryRescheduledCounter = metrics.GetOrCreateCounter(`notification_delivery_total{result="rescheduled"}`)
	deliveryMaxAttemptsCounter = metrics.GetOrCreateCounter(`notification_delivery_total{result="max_attempts_reached"}`)
	deliveryErrorCounter       = metrics.GetOrCreateCounter(`notification_delivery_total{result="db_error"}`)
)

// Processor delivers published notifications over HTTP under a bounded
// parallelism, rescheduling failures with linear backoff.
type Processor struct {
	repo        *db.NotificationRepository
	sender      *Sender
	sem         chan struct{}
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

func NewProcessor(repo *db.NotificationRepository, sender *Sender, cfg config.NotifyProcessor, logger *slog.Logger) *Processor {
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	maxAttempts := cfg.MaxDeliveryAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxDeliveryAttempts
	}
	retryDelay := time.Duration(cfg.RescheduleDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultDeliveryRetryDelay
	}

	return &Processor{
		repo:        repo,
		sender:      sender,
		sem:         make(chan struct{}, parallelism),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

func (p *Processor) Process(ctx context.Context, msg message.Notification) error {
	ctx = logcontext.AppendCtx(ctx, slog.String("id", msg.ID.String()))

	p.sem <- struct{}{}
	go func() {
		defer func() { <-p.sem }()
		p.deliver(ctx, msg)
	}()

	return nil
}

func (p *Processor) deliver(ctx context.Context, msg message.Notification) {
	tx, err := p.repo.BeginTx(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error starting transaction", "error", err)
		deliveryErrorCounter.Inc()
		return
	}
	defer tx.Rollback(ctx)

	entity, err := p.repo.SelectForUpdateByID(ctx, tx, msg.ID)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error selecting notification for update", "error", err)
		deliveryErrorCounter.Inc()
		return
	}

	if entity.DeliveredAt != nil {
		p.logger.InfoContext(ctx, "Notification already delivered, skipping")
		return
	}

	sendErr := p.sender.Send(ctx, entity.Payload)
	attempts := entity.DeliveryAttempts + 1

	if sendErr != nil {
		p.logger.ErrorContext(ctx, "Error sending notification", "error", sendErr)

		var scheduledAt *time.Time
		if attempts >= p.maxAttempts {
			p.logger.WarnContext(ctx, "Max delivery attempts reached for notification")
			deliveryMaxAttemptsCounter.Inc()
		} else {
			at := time.Now().Add(time.Duration(attempts) * p.retryDelay)
			scheduledAt = &at
			deliveryRescheduledCounter.Inc()
		}

		if err := p.repo.RescheduleDelivery(ctx, tx, msg.ID, scheduledAt, attempts, sendErr.Error()); err != nil {
			p.logger.ErrorContext(ctx, "Error rescheduling delivery", "error", err)
			deliveryErrorCounter.Inc()
			return
		}
	} else {
		if err := p.repo.MarkDelivered(ctx, tx, msg.ID, attempts, time.Now()); err != nil {
			p.logger.ErrorContext(ctx, "Error marking notification delivered", "error", err)
			deliveryErrorCounter.Inc()
			return
		}
		deliveryDeliveredCounter.Inc()
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.ErrorContext(ctx, "Error committing transaction", "error", err)
		deliveryErrorCounter.Inc()
	}
}
