package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"wallet-service/internal/config"
	"wallet-service/internal/db"
	"wallet-service/internal/logcontext"
	"wallet-service/internal/message"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	defaultPollingIntervalMs  = 500
	defaultFetchSize          = 200
	defaultRescheduleDelayMs  = 10_000
	defaultMaxPublishAttempts = 3
)

var (
	// producer batch metrics
	producerErrorFetchingCounter = metrics.GetOrCreateCounter(`notification_producer_total{result="fetching_failed"}`)
	producerErrorKafkaCounter    = metrics.GetOrCreateCounter(`notification_producer_total{result="publish_failed"}`)
	producerErrorUpdateCounter   = metrics.GetOrCreateCounter(`notification_producer_total{result="db_update_failed"}`)
	producerSuccessCounter       = metrics.GetOrCreateCounter(`notification_producer_total{result="success"}`)

	producerProcessDurationHistogram = metrics.GetOrCreateHistogram(`notification_producer_duration_milliseconds`)

	// producer per message metrics
	producerMessagesPublishedCounter   = metrics.GetOrCreateCounter(`notification_producer_messages_total{result="published"}`)
	producerMessagesMaxAttemptsCounter = metrics.GetOrCreateCounter(`notification_producer_messages_total{result="max_attempts_reached"}`)
	producerMessagesRescheduledCounter = metrics.GetOrCreateCounter(`notification_producer_messages_total{result="rescheduled"}`)
)

// Producer polls the outbox and publishes due notifications to Kafka,
// rescheduling failed publishes with linear backoff up to a cap.
type Producer struct {
	repo               *db.NotificationRepository
	writer             *kafka.Writer
	pollingInterval    time.Duration
	fetchSize          int
	retryDelay         time.Duration
	maxPublishAttempts int
	logger             *slog.Logger
}

func NewProducer(repo *db.NotificationRepository, writer *kafka.Writer, cfg config.NotifyProducer, logger *slog.Logger) *Producer {
	pollingIntervalMs := cfg.PollingIntervalMs
	if pollingIntervalMs <= 0 {
		pollingIntervalMs = defaultPollingIntervalMs
	}
	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}
	retryDelayMs := cfg.RescheduleDelayMs
	if retryDelayMs <= 0 {
		retryDelayMs = defaultRescheduleDelayMs
	}
	maxPublishAttempts := cfg.MaxPublishAttempts
	if maxPublishAttempts <= 0 {
		maxPublishAttempts = defaultMaxPublishAttempts
	}

	return &Producer{
		repo:               repo,
		writer:             writer,
		pollingInterval:    time.Duration(pollingIntervalMs) * time.Millisecond,
		fetchSize:          fetchSize,
		retryDelay:         time.Duration(retryDelayMs) * time.Millisecond,
		maxPublishAttempts: maxPublishAttempts,
		logger:             logger,
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.pollingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.process(ctx)
			case <-ctx.Done():
				p.logger.InfoContext(ctx, "Context done, stopping producer")
				return
			}
		}
	}()
}

func (p *Producer) process(ctx context.Context) {
	startTime := time.Now()

	// runId correlates all logs of one polling run
	ctx = logcontext.AppendCtx(ctx, slog.String("runId", uuid.New().String()))

	tx, err := p.repo.BeginTx(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error starting transaction", "error", err)
		producerErrorFetchingCounter.Inc()
		return
	}

	defer tx.Rollback(ctx)

	notifications, err := p.repo.GetUnpublished(ctx, tx, p.fetchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error fetching unpublished notifications", "error", err)
		producerErrorFetchingCounter.Inc()
		return
	}

	if len(notifications) == 0 {
		producerSuccessCounter.Inc()
		return
	}

	kafkaMessages := p.toKafkaMessages(ctx, notifications)

	p.logger.InfoContext(ctx, "Writing messages to Kafka", "count", len(kafkaMessages))

	writeErr := p.writer.WriteMessages(ctx, kafkaMessages...)
	if writeErr != nil {
		p.logger.ErrorContext(ctx, "Error writing messages to Kafka", "error", writeErr)
		producerErrorKafkaCounter.Inc()
	}

	now := time.Now()
	for _, notification := range notifications {
		messageCtx := logcontext.AppendCtx(ctx, slog.String("id", notification.ID.String()))

		notification.PublishAttempts++

		if writeErr != nil {
			errMsg := writeErr.Error()
			notification.Error = &errMsg

			if notification.PublishAttempts >= p.maxPublishAttempts {
				p.logger.WarnContext(messageCtx, "Max publish attempts reached for notification")
				notification.ScheduledAt = nil

				producerMessagesMaxAttemptsCounter.Inc()
			} else {
				scheduledAt := now.Add(time.Duration(notification.PublishAttempts) * p.retryDelay)
				notification.ScheduledAt = &scheduledAt

				producerMessagesRescheduledCounter.Inc()
			}
		} else {
			notification.ScheduledAt = nil
			notification.PublishedAt = &now
			notification.Error = nil

			producerMessagesPublishedCounter.Inc()
		}

		if err := p.repo.Update(messageCtx, tx, notification); err != nil {
			p.logger.ErrorContext(messageCtx, "Error updating notification", "error", err)
			producerErrorUpdateCounter.Inc()
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.ErrorContext(ctx, "Error committing transaction", "error", err)
		producerErrorUpdateCounter.Inc()
	} else {
		producerSuccessCounter.Inc()
	}

	producerProcessDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
}

func (p *Producer) toKafkaMessages(ctx context.Context, notifications []*db.NotificationMessageEntity) []kafka.Message {
	var kafkaMessages []kafka.Message

	for _, entity := range notifications {
		p.logger.DebugContext(ctx, "Preparing Kafka message for notification", "id", entity.ID)

		notification := message.Notification{
			ID:        entity.ID,
			ProfileID: entity.ProfileID,
			Payload:   entity.Payload,
			Attempts:  entity.DeliveryAttempts,
		}

		messageBytes, _ := json.Marshal(notification)

		msg := kafka.Message{
			Key:   []byte(entity.ProfileID.String()), // profile ID as key keeps per-profile ordering
			Value: messageBytes,
		}

		kafkaMessages = append(kafkaMessages, msg)
	}
	return kafkaMessages
}
