package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID 生成存储层主键（不透明字符串，与展示用编号无关）。
func newID() string { return uuid.NewString() }

func assignID(id *string) {
	if *id == "" {
		*id = newID()
	}
}

// All 返回需要建表的全部模型，供 AutoMigrate 使用。
func All() []any {
	return []any{
		&Counter{},
		&PendingOrder{},
		&Customer{},
		&Order{},
		&Payment{},
		&Product{},
		&Supplier{},
		&PurchaseOrder{},
		&OrderEvent{},
		&StockAdjustment{},
	}
}

// Migrate 自动建表。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
