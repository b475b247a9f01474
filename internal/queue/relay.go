package queue

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"order_desk/internal/model"

	"gorm.io/gorm"
)

// Publisher 把事件发到 Kafka。
type Publisher interface {
	Publish(ctx context.Context, msg OrderMessage) error
}

// StreamAppender 把事件追加到 Redis Stream，供 SSE 实时推送。
type StreamAppender interface {
	Append(ctx context.Context, values map[string]any) (string, error)
}

const relayBatch = 16

// Relay 扫描 outbox 表，把未投递的事件按 ID 顺序转发出去。
// 语义：Kafka 发布成功后才标记 dispatched_at，失败则停在该条等待下一轮重试。
// Stream 只是实时通知，追加失败只记日志。
type Relay struct {
	db       *gorm.DB
	pub      Publisher
	stream   StreamAppender
	interval time.Duration
}

// NewRelay pub 与 stream 均可为 nil，缺哪个就跳过哪个。
func NewRelay(db *gorm.DB, pub Publisher, stream StreamAppender, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	return &Relay{db: db, pub: pub, stream: stream, interval: interval}
}

func (r *Relay) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		for {
			n, err := r.DispatchBatch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("relay dispatch: %v", err)
				}
				break
			}
			// 满批说明可能还有积压，立即继续
			if n < relayBatch {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// DispatchBatch 投递一批事件，返回成功条数。
func (r *Relay) DispatchBatch(ctx context.Context) (int, error) {
	var events []model.OrderEvent
	if err := r.db.WithContext(ctx).
		Where("dispatched_at IS NULL").
		Order("id ASC").
		Limit(relayBatch).
		Find(&events).Error; err != nil {
		return 0, fmt.Errorf("load outbox: %w", err)
	}

	sent := 0
	for _, e := range events {
		if err := r.dispatchOne(ctx, e); err != nil {
			return sent, fmt.Errorf("event %d: %w", e.ID.Int64(), err)
		}
		sent++
	}
	return sent, nil
}

func (r *Relay) dispatchOne(ctx context.Context, e model.OrderEvent) error {
	msg := FromEvent(e)

	if r.pub != nil {
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := r.pub.Publish(pubCtx, msg)
		cancel()
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}
	if r.stream != nil {
		if _, err := r.stream.Append(ctx, StreamValues(msg)); err != nil {
			log.Printf("relay stream append event=%d order=%s: %v", msg.EventID, msg.DisplayID, err)
		}
	}

	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.OrderEvent{}).
		Where("id = ? AND dispatched_at IS NULL", e.ID).
		Update("dispatched_at", &now).Error
}

// StreamValues 将消息展开为 Stream 字段。
func StreamValues(m OrderMessage) map[string]any {
	return map[string]any{
		"event_id":   strconv.FormatInt(m.EventID, 10),
		"kind":       m.Kind,
		"order_id":   m.OrderID,
		"display_id": m.DisplayID,
		"payload":    string(m.Payload),
		"created_at": m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ParseStreamValues 是 StreamValues 的逆过程。
func ParseStreamValues(values map[string]interface{}) (OrderMessage, error) {
	eventStr, err := getStreamString(values, "event_id")
	if err != nil {
		return OrderMessage{}, err
	}
	kind, err := getStreamString(values, "kind")
	if err != nil {
		return OrderMessage{}, err
	}
	orderID, err := getStreamString(values, "order_id")
	if err != nil {
		return OrderMessage{}, err
	}
	payload, err := getStreamString(values, "payload")
	if err != nil {
		return OrderMessage{}, err
	}
	// display_id / created_at 缺失不算脏消息
	displayID, _ := getStreamString(values, "display_id")
	createdStr, _ := getStreamString(values, "created_at")

	eventID, err := strconv.ParseInt(eventStr, 10, 64)
	if err != nil {
		return OrderMessage{}, fmt.Errorf("invalid event_id %q", eventStr)
	}

	msg := OrderMessage{
		EventID:   eventID,
		Kind:      kind,
		OrderID:   orderID,
		DisplayID: displayID,
		Payload:   []byte(payload),
	}
	if createdStr != "" {
		if ts, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
			msg.CreatedAt = ts
		}
	}
	if err := msg.Validate(); err != nil {
		return OrderMessage{}, err
	}
	return msg, nil
}

func getStreamString(values map[string]interface{}, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing field %s", key)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	default:
		return "", fmt.Errorf("unsupported field type %s: %T", key, v)
	}
}
