package services

import (
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "order.placed"

type OrderEventItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderEvent struct {
	EventID   uuid.UUID        `json:"event_id"`
	Type      string           `json:"type"`
	OrderID   uuid.UUID        `json:"order_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Total     decimal.Decimal  `json:"total"`
	Items     []OrderEventItem `json:"items"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewOrderPlacedEvent(order *tables.Order) OrderEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderEventItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return OrderEvent{
		EventID:   uuid.New(),
		Type:      EventOrderPlaced,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.TotalPrice,
		Items:     items,
		CreatedAt: time.Now().UTC(),
	}
}

// EventPublisher emits order lifecycle events.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// EventService publishes order events to Kafka. It is a no-op when no brokers are configured.
type EventService struct {
	logger *gecho.Logger
	writer *kafka.Writer
}

func NewEventService(logger *gecho.Logger, cfg *structs.KafkaConfig) *EventService {
	es := &EventService{logger: logger}
	if len(cfg.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, order events disabled")
		return es
	}

	es.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrderTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return es
}

func (es *EventService) Enabled() bool {
	return es.writer != nil
}

// PublishOrderEvent writes the event keyed by order id so one order's events stay ordered.
func (es *EventService) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	if !es.Enabled() {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return es.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: data,
		Time:  event.CreatedAt,
	})
}

func (es *EventService) Close() error {
	if es.writer == nil {
		return nil
	}
	return es.writer.Close()
}
