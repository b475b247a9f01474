package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const PurchaseOrderPrefix = "PO-"

// 采购单状态
const (
	POStatusNew      = "New"
	POStatusOrdered  = "Ordered"
	POStatusReceived = "Received"
	POStatusCanceled = "Canceled"
)

// PurchaseItem 采购明细。
type PurchaseItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// PurchaseOrder 向供应商下的采购单。
type PurchaseOrder struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PONumber    string                            `gorm:"size:32;uniqueIndex;not null" json:"po_number"`
	SupplierID  string                            `gorm:"size:36;not null;index" json:"supplier_id"`
	Items       datatypes.JSONSlice[PurchaseItem] `json:"items"`
	TotalAmount decimal.Decimal                   `gorm:"type:decimal(14,2);not null;default:0" json:"total_amount"`
	Status      string                            `gorm:"size:16;not null" json:"status"`
	OrderDate   time.Time                         `gorm:"not null" json:"order_date"`
	CreatedBy   string                            `gorm:"size:64" json:"created_by"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

func (p *PurchaseOrder) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
