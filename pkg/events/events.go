package events

import (
	"context"
	"time"
)

// Routing keys published on the order exchange.
const (
	HeaderCreated = "order.header.created"
	HeaderUpdated = "order.header.updated"
	HeaderDeleted = "order.header.deleted"
	DetailCreated = "order.detail.created"
	DetailUpdated = "order.detail.updated"
	DetailDeleted = "order.detail.deleted"
)

// Event 订单变更事件，提交成功后发布
type Event struct {
	Type       string    `json:"type"`
	OrderID    uint      `json:"order_id"`
	DetailID   uint      `json:"detail_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
