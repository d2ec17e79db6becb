package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shopmind/shop-api/internal/config"
	"github.com/shopmind/shop-api/internal/entities"
)

const (
	eventOrderCreated       = "order.created"
	eventOrderStatusChanged = "order.status_changed"
)

// orderEvent сообщение жизненного цикла заказа в топике
type orderEvent struct {
	Type           string         `json:"type"`
	Order          entities.Order `json:"order"`
	PreviousStatus string         `json:"previousStatus,omitempty"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

// EventProducer публикует события заказов best-effort: ошибка записи
// логируется и не влияет на результат HTTP-операции.
type EventProducer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewEventProducer(logger *slog.Logger, cfg config.Kafka) *EventProducer {
	return &EventProducer{
		logger: logger.With(slog.String("producer", "kafka")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

func (p *EventProducer) OrderCreated(ctx context.Context, order entities.Order) {
	p.publish(ctx, orderEvent{
		Type:       eventOrderCreated,
		Order:      order,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *EventProducer) OrderStatusChanged(ctx context.Context, order entities.Order, previous entities.OrderStatus) {
	p.publish(ctx, orderEvent{
		Type:           eventOrderStatusChanged,
		Order:          order,
		PreviousStatus: string(previous),
		OccurredAt:     time.Now().UTC(),
	})
}

func (p *EventProducer) publish(ctx context.Context, event orderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", slog.Any("error", err))
		return
	}

	// В библиотеке уже есть retry
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Order.ID),
		Value: data,
	}); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("type", event.Type), slog.Any("error", err))
	}
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}
