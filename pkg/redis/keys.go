package redis

import "fmt"

const keyPrefix = "order_desk"

// PromotionStateKey 存储 pending id 转正后的订单号。
func PromotionStateKey(pendingID string) string {
	return fmt.Sprintf("%s:promotion:%s", keyPrefix, pendingID)
}

// RateLimitKey 限流计数键，scope 如 "promote"，subject 为管理员 id 或 IP。
func RateLimitKey(scope, kind, subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s:%s:%s", keyPrefix, scope, kind, subject)
}
