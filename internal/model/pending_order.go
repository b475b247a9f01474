package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CustomerSnapshot 内嵌的客户信息，尚未关联到 Customer 记录。
type CustomerSnapshot struct {
	FullName   string `json:"full_name"`
	WhatsAppNo string `json:"whatsapp_no"`
	ContactNo  string `json:"contact_no,omitempty"`
	Address    string `json:"address,omitempty"`
}

// PendingOrder 业务员提交、等待管理员确认的订单。
// 只会被创建和删除（转正或驳回），不做原地修改。
type PendingOrder struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	AgentID    string `gorm:"size:64;index" json:"agent_id"`
	AgentEmail string `gorm:"size:128" json:"agent_email"`

	Customer datatypes.JSONType[CustomerSnapshot] `json:"customer"`
	Items    datatypes.JSONSlice[LineItem]        `json:"items"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"discount"`
	FinalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"final_amount"`

	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	Urgent       bool       `gorm:"not null;default:false" json:"urgent"`
	Remarks      string     `gorm:"size:1024" json:"remarks"`

	SubmittedAt time.Time `gorm:"not null;index" json:"submitted_at"`
}

func (PendingOrder) TableName() string { return "pending_orders" }

func (p *PendingOrder) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now()
	}
	return nil
}
