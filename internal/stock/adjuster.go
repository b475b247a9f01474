// Package stock 根据 order.created 事件扣减商品库存。
// 扣减在订单提交之后异步进行，失败只记日志，由消息重投驱动重试。
package stock

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"order_desk/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Adjuster struct {
	db *gorm.DB
}

func NewAdjuster(db *gorm.DB) *Adjuster {
	return &Adjuster{db: db}
}

// Apply 在一个事务里按明细扣库存并记账。同一 eventID 只生效一次，重复调用返回 false。
// 找不到的商品跳过；库存允许扣成负数，只记日志。
func (a *Adjuster) Apply(ctx context.Context, eventID int64, orderID string, items []model.LineItem) (bool, error) {
	applied := false
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var done int64
		if err := tx.Model(&model.StockAdjustment{}).Where("event_id = ?", eventID).Count(&done).Error; err != nil {
			return err
		}
		if done > 0 {
			return nil
		}

		for name, items := range groupByProduct(items) {
			var p model.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).Take(&p).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("stock skip order=%s product=%q: not in catalog", orderID, name)
				continue
			}
			if err != nil {
				return err
			}

			qty := consumed(p, items)
			if qty == 0 {
				continue
			}
			if err := tx.Model(&model.Product{}).Where("id = ?", p.ID).
				Update("stock", gorm.Expr("stock - ?", qty)).Error; err != nil {
				return err
			}
			if p.Stock-qty < 0 {
				log.Printf("stock negative order=%s product=%q stock=%d", orderID, name, p.Stock-qty)
			}
		}

		applied = true
		return tx.Create(&model.StockAdjustment{
			EventID:   eventID,
			OrderID:   orderID,
			AppliedAt: time.Now(),
		}).Error
	})
	if err != nil {
		if errorsLikeUnique(err) {
			// 并发重复投递，另一方已记账
			return false, nil
		}
		return false, err
	}
	return applied, nil
}

func groupByProduct(items []model.LineItem) map[string][]model.LineItem {
	out := make(map[string][]model.LineItem, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.ProductName)
		if name == "" {
			continue
		}
		out[name] = append(out[name], it)
	}
	return out
}

// consumed 计件商品按数量扣；按平方英尺计库存的商品按喷绘面积向上取整扣。
func consumed(p model.Product, items []model.LineItem) int64 {
	var qty int64
	for _, it := range items {
		if strings.EqualFold(p.Unit, model.ItemTypeSqFt) && it.IsSqFt() {
			area := it.PrintSqFt
			if area.IsZero() {
				area = it.SqFt()
			}
			qty += area.Ceil().IntPart()
			continue
		}
		if it.Quantity > 0 {
			qty += it.Quantity
		}
	}
	return qty
}

func errorsLikeUnique(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique") || strings.Contains(s, "Duplicate entry")
}
