package kafka

import (
	"context"
	"encoding/json"

	"wallet-service/internal/message"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// FundedEventPublisher writes wallet-funded events keyed by profile ID so
// events for one profile stay ordered.
type FundedEventPublisher struct {
	writer *kafka.Writer
}

func NewFundedEventPublisher(writer *kafka.Writer) *FundedEventPublisher {
	return &FundedEventPublisher{writer: writer}
}

func (p *FundedEventPublisher) Publish(ctx context.Context, event message.WalletFundedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshalling wallet funded event")
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProfileID.String()),
		Value: value,
	})
}
