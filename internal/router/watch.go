package router

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"order_desk/internal/apperr"
	"order_desk/internal/queue"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
)

// EventReader 读取订单事件流。
type EventReader interface {
	Read(ctx context.Context, lastID string, block time.Duration, count int64) ([]rd.XMessage, error)
	LastID(ctx context.Context) (string, error)
}

const watchBlock = 15 * time.Second

// watchOrders 以 SSE 推送订单事件。?last_id= 可从断点续读，默认只推新事件。
// 每次读取都带具体的 ID，两次读取之间追加的事件不会丢。
func watchOrders(events EventReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if events == nil {
			fail(c, fmt.Errorf("order event stream: %w", apperr.ErrDownstreamUnavailable))
			return
		}
		ctx := c.Request.Context()
		lastID, err := startID(ctx, events, c.Query("last_id"))
		if err != nil {
			fail(c, fmt.Errorf("order event stream: %v: %w", err, apperr.ErrDownstreamUnavailable))
			return
		}

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Stream(func(w io.Writer) bool {
			msgs, err := events.Read(ctx, lastID, watchBlock, 32)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("watch read after %s: %v", lastID, err)
				}
				return false
			}
			if len(msgs) == 0 {
				c.SSEvent("ping", time.Now().Unix())
				return true
			}
			for _, xm := range msgs {
				lastID = xm.ID
				msg, err := queue.ParseStreamValues(xm.Values)
				if err != nil {
					log.Printf("watch skip entry %s: %v", xm.ID, err)
					continue
				}
				c.SSEvent(msg.Kind, msg)
			}
			return true
		})
	}
}

// startID 把 "$"/空值换成当前最新条目的 ID。
func startID(ctx context.Context, events EventReader, requested string) (string, error) {
	if requested != "" && requested != "$" {
		return requested, nil
	}
	return events.LastID(ctx)
}
