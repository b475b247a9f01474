package model

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 事件类型
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent 事务性 outbox：与订单写入同一事务落库，Relay 异步投递。
// ID 用 snowflake，天然按时间递增，Relay 按 ID 顺序扫描。
type OrderEvent struct {
	ID           snowflake.ID   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	Kind         string         `gorm:"size:32;not null" json:"kind"`
	OrderID      string         `gorm:"size:36;not null;index" json:"order_id"`
	DisplayID    string         `gorm:"size:32" json:"display_id"`
	Payload      datatypes.JSON `json:"payload"`
	DispatchedAt *time.Time     `gorm:"index" json:"dispatched_at,omitempty"`
}

func (OrderEvent) TableName() string { return "order_events" }

// OrderCreatedPayload 是 order.created 的负载，库存扣减只依赖这里的明细。
type OrderCreatedPayload struct {
	CustomerID  string          `json:"customer_id"`
	Items       []LineItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Source      string          `json:"source"`
}

// StatusChangedPayload 是 order.status_changed 的负载。
type StatusChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	By   string `json:"by,omitempty"`
}

var (
	eventNodeOnce sync.Once
	eventNode     *snowflake.Node
	eventNodeErr  error
	eventNodeID   int64 = 1
)

// SetEventNode 多实例部署时为每个进程设置不同的节点号，需在首个事件生成前调用。
func SetEventNode(id int64) {
	eventNodeID = id
}

func nextEventID() (snowflake.ID, error) {
	eventNodeOnce.Do(func() {
		eventNode, eventNodeErr = snowflake.NewNode(eventNodeID)
	})
	if eventNodeErr != nil {
		return 0, fmt.Errorf("snowflake node: %w", eventNodeErr)
	}
	return eventNode.Generate(), nil
}

// NewOrderEvent 为订单构造一条待投递事件。
func NewOrderEvent(kind string, o *Order, payload any) (*OrderEvent, error) {
	id, err := nextEventID()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &OrderEvent{
		ID:        id,
		Kind:      kind,
		OrderID:   o.ID,
		DisplayID: o.OrderID,
		Payload:   datatypes.JSON(b),
	}, nil
}

// StockAdjustment 记录已处理过的 order.created 事件，保证库存只扣一次。
type StockAdjustment struct {
	EventID   int64     `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	OrderID   string    `gorm:"size:36;not null;index" json:"order_id"`
	AppliedAt time.Time `gorm:"not null" json:"applied_at"`
}

func (StockAdjustment) TableName() string { return "stock_adjustments" }
