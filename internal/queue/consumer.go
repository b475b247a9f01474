package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"order_desk/internal/model"

	"github.com/segmentio/kafka-go"
)

// StockApplier 扣减库存，同一事件只生效一次。
type StockApplier interface {
	Apply(ctx context.Context, eventID int64, orderID string, items []model.LineItem) (bool, error)
}

// Consumer 订阅订单事件，对 order.created 做库存扣减。
type Consumer struct {
	r     *kafka.Reader
	stock StockApplier

	maxAttempts int
	backoff     time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, stock StockApplier) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		stock:       stock,
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

// Run 处理完（或放弃）一条后才提交位点。
func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			return // ctx cancel / 连接断开等
		}

		if err := c.handleWithRetry(ctx, m.Value); err != nil {
			// 库存是最终一致的旁路，失败只记日志，不阻塞后续订单
			log.Printf("consumer offset=%d: %v", m.Offset, err)
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			log.Printf("consumer commit offset=%d: %v", m.Offset, err)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, value []byte) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.handle(ctx, value); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		time.Sleep(time.Duration(attempt) * c.backoff)
	}
	return err
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var msg OrderMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		log.Printf("consumer unmarshal: %v", err)
		return nil
	}
	if err := msg.Validate(); err != nil {
		log.Printf("consumer drop invalid message: %v", err)
		return nil
	}
	if msg.Kind != model.EventOrderCreated {
		return nil
	}

	payload, err := msg.CreatedPayload()
	if err != nil {
		log.Printf("consumer drop event=%d: %v", msg.EventID, err)
		return nil
	}
	applied, err := c.stock.Apply(ctx, msg.EventID, msg.OrderID, payload.Items)
	if err != nil {
		return fmt.Errorf("stock apply order=%s: %w", msg.DisplayID, err)
	}
	if !applied {
		log.Printf("consumer duplicate event=%d order=%s", msg.EventID, msg.DisplayID)
	}
	return nil
}
