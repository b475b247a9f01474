package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// streamMaxLen 近似裁剪长度，只保留最近的事件供实时订阅。
const streamMaxLen = 10000

// EventStream 订单事件的 Redis Stream，Relay 追加，SSE 读取。
type EventStream struct {
	rdb    *rd.Client
	stream string
}

func NewEventStream(rdb *rd.Client, stream string) *EventStream {
	return &EventStream{rdb: rdb, stream: stream}
}

// Append XADD 一条事件，返回 stream entry id。
func (s *EventStream) Append(ctx context.Context, values map[string]any) (string, error) {
	return s.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: s.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Result()
}

// Read 阻塞读取 lastID 之后的事件。lastID 为 "$" 表示只要新事件；block < 0 不阻塞。
// 超时无数据返回空切片。
func (s *EventStream) Read(ctx context.Context, lastID string, block time.Duration, count int64) ([]rd.XMessage, error) {
	streams, err := s.rdb.XRead(ctx, &rd.XReadArgs{
		Streams: []string{s.stream, lastID},
		Count:   count,
		Block:   block,
	}).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]rd.XMessage, 0, count)
	for _, st := range streams {
		out = append(out, st.Messages...)
	}
	return out, nil
}

// LastID 返回流中最新一条的 ID，空流返回 "0-0"。
func (s *EventStream) LastID(ctx context.Context) (string, error) {
	msgs, err := s.rdb.XRevRangeN(ctx, s.stream, "+", "-", 1).Result()
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "0-0", nil
	}
	return msgs[0].ID, nil
}
