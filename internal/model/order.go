package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 订单状态（有序枚举）
const (
	StatusOrderReceived   = "Order Received"
	StatusDesigning       = "Designing"
	StatusVerification    = "Verification"
	StatusDesignApproved  = "Design Approved"
	StatusReadyForWorking = "Ready for Working"
	StatusPrinting        = "Printing"
	StatusDelivered       = "Delivered"
	StatusCompleted       = "Completed"
)

// OrderStatuses 按流程顺序列出全部合法状态。
var OrderStatuses = []string{
	StatusOrderReceived,
	StatusDesigning,
	StatusVerification,
	StatusDesignApproved,
	StatusReadyForWorking,
	StatusPrinting,
	StatusDelivered,
	StatusCompleted,
}

// ValidOrderStatus 判断状态是否在枚举内。
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// 付款状态
const (
	PaymentPending = "Pending"
	PaymentPartial = "Partial"
	PaymentPaid    = "Paid"
)

// 订单来源
const (
	SourceAgent = "Agent"
	SourceAdmin = "Admin"
)

// OrderPrefix 订单展示编号前缀。
const OrderPrefix = "OM-"

// StatusChange 状态流水中的一条。
type StatusChange struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	By     string    `json:"by,omitempty"`
}

// Order 正式订单。
type Order struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderID    string                               `gorm:"size:32;uniqueIndex;not null" json:"order_id"` // 展示编号，如 OM-1001
	CustomerID string                               `gorm:"size:36;not null;index" json:"customer_id"`
	Customer   datatypes.JSONType[CustomerSnapshot] `json:"customer"`
	Items      datatypes.JSONSlice[LineItem]        `json:"items"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"discount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_amount"`

	Status        string                            `gorm:"size:32;not null;index" json:"status"`
	StatusHistory datatypes.JSONSlice[StatusChange] `json:"status_history"`
	PaymentStatus string                            `gorm:"size:16;not null" json:"payment_status"`
	AmountPaid    decimal.Decimal                   `gorm:"type:decimal(14,2);not null;default:0" json:"amount_paid"`

	Source          string     `gorm:"size:16;not null" json:"source"`
	SourcePendingID string     `gorm:"size:36;index" json:"source_pending_id,omitempty"`
	AgentID         string     `gorm:"size:64" json:"agent_id,omitempty"`
	CreatedBy       string     `gorm:"size:64" json:"created_by,omitempty"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
	Urgent          bool       `gorm:"not null;default:false" json:"urgent"`
	Remarks         string     `gorm:"size:1024" json:"remarks"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// AppendStatus 追加状态流水并同步当前状态。
func (o *Order) AppendStatus(status, by string, at time.Time) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusChange{Status: status, At: at, By: by})
}

// DerivePaymentStatus 根据已付金额推导付款状态。
func DerivePaymentStatus(total, paid decimal.Decimal) string {
	switch {
	case !paid.IsPositive():
		return PaymentPending
	case paid.GreaterThanOrEqual(total):
		return PaymentPaid
	default:
		return PaymentPartial
	}
}
