package redis

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// PromotionState 记录 pending → 订单号映射，重复转正时用于给出明确提示。
// 仅作提示用途，丢失不影响正确性（数据库里 pending 已删除）。
type PromotionState struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewPromotionState(rdb *rd.Client, ttl time.Duration) *PromotionState {
	return &PromotionState{rdb: rdb, ttl: ttl}
}

// PutPromoted 写入映射并刷新 TTL。
func (s *PromotionState) PutPromoted(ctx context.Context, pendingID, orderID string) error {
	key := PromotionStateKey(pendingID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"pending_id", pendingID,
		"order_id", orderID,
		"promoted_at", time.Now().UTC().Format(time.RFC3339),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// GetPromoted found=false 表示 key 不存在或已过期。
func (s *PromotionState) GetPromoted(ctx context.Context, pendingID string) (string, bool, error) {
	m, err := s.rdb.HGetAll(ctx, PromotionStateKey(pendingID)).Result()
	if err != nil {
		return "", false, err
	}
	orderID := m["order_id"]
	if orderID == "" {
		return "", false, nil
	}
	return orderID, true, nil
}
