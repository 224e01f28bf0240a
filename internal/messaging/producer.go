package messaging

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/logger"
)

// OrderStatusEvent is published after every committed transition so
// downstream consumers (dashboards, reporting) can track the lifecycle
// without polling. Events are advisory: publish failures never fail the
// operation that produced them.
type OrderStatusEvent struct {
	OrderID    int64              `json:"order_id"`
	FromStatus domain.OrderStatus `json:"from_status"`
	ToStatus   domain.OrderStatus `json:"to_status"`
	Event      domain.Event       `json:"event"`
	Actor      domain.Actor       `json:"actor"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// EventPublisher is what the services depend on; the Kafka producer below
// is its production implementation.
type EventPublisher interface {
	PublishStatusChange(ev OrderStatusEvent) error
	Close() error
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Producer{producer: sp, topic: topic}, nil
}

func (p *Producer) PublishStatusChange(ev OrderStatusEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(ev.OrderID, 10)),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	logger.Debug("Published order status event",
		"order_id", ev.OrderID, "to_status", ev.ToStatus,
		"partition", partition, "offset", offset)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
