package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerOptions Kafka 写入参数，零值取默认。
type ProducerOptions struct {
	MaxAttempts  int
	WriteTimeout time.Duration
	BatchTimeout time.Duration
}

func (o ProducerOptions) withDefaults() ProducerOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.BatchTimeout <= 0 {
		// relay 逐条同步发送，批次等待取短
		o.BatchTimeout = 20 * time.Millisecond
	}
	return o
}

// Producer 把 outbox 事件写入 Kafka。
type Producer struct {
	w *kafka.Writer
}

// NewProducer 以订单存储主键为 key 做 Hash 分区，同一订单的事件保持顺序；
// 要求全部 ISR 确认后才算发布成功，relay 才会标记 dispatched_at。
func NewProducer(brokers []string, topic string, opts ProducerOptions) *Producer {
	opts = opts.withDefaults()
	return &Producer{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  opts.MaxAttempts,
		WriteTimeout: opts.WriteTimeout,
		ReadTimeout:  opts.WriteTimeout,
		BatchTimeout: opts.BatchTimeout,
		BatchSize:    relayBatch,
	}}
}

func (p *Producer) Close() error { return p.w.Close() }

// Publish 同步写入一条事件。
func (p *Producer) Publish(ctx context.Context, msg OrderMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(msg.Kind)},
		},
	})
}
