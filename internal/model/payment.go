package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentKindPayment    = "payment"
	PaymentKindAdjustment = "adjustment"
)

// Payment 收款或调整记录。AmountPaid 带符号：收款为正，借记调整为负。
type Payment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CustomerID string          `gorm:"size:36;not null;index" json:"customer_id"`
	OrderID    string          `gorm:"size:36;index" json:"order_id,omitempty"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount_paid"`
	Kind       string          `gorm:"size:16;not null" json:"kind"`
	Note       string          `gorm:"size:512" json:"note"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	CreatedBy  string          `gorm:"size:64" json:"created_by"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	return nil
}
