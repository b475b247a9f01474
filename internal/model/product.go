package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 商品/耗材：名称唯一，库存由订单事件异步扣减。
type Product struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string          `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Unit         string          `gorm:"size:16;not null;default:Qty" json:"unit"` // Qty / SqFt
	Stock        int64           `gorm:"not null;default:0" json:"stock"`
	SaleRate     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"sale_rate"`
	PurchaseRate decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"purchase_rate"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Supplier 供应商。
type Supplier struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `gorm:"size:128;not null;index" json:"name"`
	ContactNo string `gorm:"size:32" json:"contact_no"`
	Address   string `gorm:"size:512" json:"address"`
	GSTNo     string `gorm:"size:32" json:"gst_no"`
}

func (Supplier) TableName() string { return "suppliers" }

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
