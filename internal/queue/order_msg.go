package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"order_desk/internal/model"
)

// OrderMessage 是写入 Kafka / Redis Stream 的订单事件。
type OrderMessage struct {
	EventID   int64           `json:"event_id"`
	Kind      string          `json:"kind"`
	OrderID   string          `json:"order_id"`
	DisplayID string          `json:"display_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromEvent 由 outbox 记录构造消息。
func FromEvent(e model.OrderEvent) OrderMessage {
	return OrderMessage{
		EventID:   e.ID.Int64(),
		Kind:      e.Kind,
		OrderID:   e.OrderID,
		DisplayID: e.DisplayID,
		Payload:   json.RawMessage(e.Payload),
		CreatedAt: e.CreatedAt,
	}
}

// Validate 做最小字段校验，防止消费者处理脏消息。
func (m OrderMessage) Validate() error {
	if m.EventID <= 0 {
		return fmt.Errorf("event_id is required")
	}
	switch m.Kind {
	case model.EventOrderCreated, model.EventOrderStatusChanged:
	default:
		return fmt.Errorf("unknown kind %q", m.Kind)
	}
	if m.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	if len(m.Payload) == 0 {
		return fmt.Errorf("payload is required")
	}
	return nil
}

// CreatedPayload 解析 order.created 负载。
func (m OrderMessage) CreatedPayload() (model.OrderCreatedPayload, error) {
	var p model.OrderCreatedPayload
	if m.Kind != model.EventOrderCreated {
		return p, fmt.Errorf("kind %q has no created payload", m.Kind)
	}
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return p, fmt.Errorf("decode created payload: %w", err)
	}
	return p, nil
}
