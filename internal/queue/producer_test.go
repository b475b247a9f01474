package queue

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestNewProducer_Options(t *testing.T) {
	p := NewProducer([]string{"k1:9092"}, "orders", ProducerOptions{})
	assert.Equal(t, "orders", p.w.Topic)
	assert.Equal(t, kafka.RequireAll, p.w.RequiredAcks)
	assert.Equal(t, 5, p.w.MaxAttempts)
	assert.Equal(t, 5*time.Second, p.w.WriteTimeout)
	assert.Equal(t, 20*time.Millisecond, p.w.BatchTimeout)

	p = NewProducer([]string{"k1:9092"}, "orders", ProducerOptions{
		MaxAttempts:  2,
		WriteTimeout: time.Second,
		BatchTimeout: time.Millisecond,
	})
	assert.Equal(t, 2, p.w.MaxAttempts)
	assert.Equal(t, time.Second, p.w.WriteTimeout)
	assert.Equal(t, time.Millisecond, p.w.BatchTimeout)
}
