package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CustomerActive   = "active"
	CustomerInactive = "inactive"
)

// Customer 正式客户档案。
// WhatsAppNo 用作去重键，只建普通索引：去重靠"先查后建"。
type Customer struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CustomCustomerID int64  `gorm:"not null;index" json:"custom_customer_id"`
	FullName         string `gorm:"size:128;not null" json:"full_name"`
	WhatsAppNo       string `gorm:"column:whatsapp_no;size:32;not null;index" json:"whatsapp_no"`
	ContactNo        string `gorm:"size:32" json:"contact_no"`
	BillingAddress   string `gorm:"size:512" json:"billing_address"`

	Status        string          `gorm:"size:16;not null;default:active" json:"status"`
	CreditAllowed bool            `gorm:"not null;default:false" json:"credit_allowed"`
	CreditLimit   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"credit_limit"`
	CreatedBy     string          `gorm:"size:64" json:"created_by"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Snapshot 下单时冗余到订单上的联系信息。
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		FullName:   c.FullName,
		WhatsAppNo: c.WhatsAppNo,
		ContactNo:  c.ContactNo,
		Address:    c.BillingAddress,
	}
}
