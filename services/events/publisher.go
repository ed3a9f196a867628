package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/segmentio/kafka-go"
)

// StatusChanged is published for every committed status transition.
type StatusChanged struct {
	PaymentID     string    `json:"payment_id"`
	MerchantID    int64     `json:"merchant_id"`
	State         string    `json:"state"`
	PreviousState string    `json:"previous_state"`
	SourceChain   string    `json:"source_chain"`
	DestChain     string    `json:"destination_chain"`
	Timestamp     time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishStatusChanged(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func NewStatusChanged(p *domain.Payment, from domain.PaymentStatus, now time.Time) StatusChanged {
	return StatusChanged{
		PaymentID:     p.ID,
		MerchantID:    p.MerchantID,
		State:         p.Status.String(),
		PreviousState: from.String(),
		SourceChain:   p.SourceChain.String(),
		DestChain:     p.DestinationChain.String(),
		Timestamp:     now.UTC(),
	}
}

// PublishStatusChanged keys by payment id so one payment's events stay ordered.
func (k *KafkaPublisher) PublishStatusChanged(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) error {
	eventJSON, err := json.Marshal(NewStatusChanged(p, from, time.Now()))
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(p.ID),
		Value: eventJSON,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChanged(context.Context, *domain.Payment, domain.PaymentStatus) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// NewPublisher returns a kafka publisher, or a no-op one without brokers.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
