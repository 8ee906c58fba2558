package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/shaxzod67/Sunnat/internal/domain"
)

const Topic = "order-events"

// Publisher announces created orders on Kafka so downstream consumers
// (fulfillment, notifications) can react. Publishing is best-effort from the
// checkout's point of view; the order record is already persisted by the time
// a message is written.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	payload := map[string]interface{}{
		"order_id":         order.ID,
		"itemName":         order.BuyerName,
		"tel":              order.BuyerPhone,
		"shipping_address": order.ShippingAddress,
		"total_price":      order.TotalPrice,
		"items":            order.Items,
		"created_at":       order.CreatedAt,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal order payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID), // order_id for ordering
		Value: payloadJSON,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order_created")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
