// Package sequence 发放按名称区分、严格递增的整数编号（客户号、订单号等）。
package sequence

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"order_desk/internal/apperr"
	"order_desk/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 约定的序列名与起始值
const (
	DefaultStart int64 = 101

	CustomerCounter = "customerCounter"
	CustomerStart   = DefaultStart

	OrderCounter = "orderCounter"
	OrderStart   = int64(1001)

	PurchaseOrderCounter = "purchaseOrderCounter"
	PurchaseOrderStart   = int64(1)
)

// Allocator 基于 counters 表的序号分配器。
type Allocator struct {
	db *gorm.DB
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{db: db}
}

// Next 在单个事务内完成「读当前值 → max(当前+1, start) → 写回」，返回新编号。
// start 为 0 时使用 DefaultStart。失败时返回 *apperr.AllocationError，不视为发出编号。
func (a *Allocator) Next(ctx context.Context, name string, start int64) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperr.Invalid("sequence", "name is required")
	}
	if start < 0 {
		return 0, apperr.Invalid("start", "must be positive")
	}
	if start == 0 {
		start = DefaultStart
	}

	var issued int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 首次分配时补种子行；已存在则忽略
		seed := &model.Counter{Name: name, LastIssued: start - 1}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return err
		}

		var c model.Counter
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			Take(&c).Error; err != nil {
			return err
		}

		next := c.LastIssued + 1
		if next < start {
			next = start
		}
		res := tx.Model(&model.Counter{}).
			Where("name = ? AND last_issued = ?", name, c.LastIssued).
			Update("last_issued", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errors.New("counter changed concurrently")
		}
		issued = next
		return nil
	})
	if err != nil {
		return 0, &apperr.AllocationError{Sequence: name, Err: err}
	}
	return issued, nil
}

// NextDisplay 分配编号并拼接前缀，如 "OM-1001"。
func (a *Allocator) NextDisplay(ctx context.Context, name string, start int64, prefix string) (string, error) {
	n, err := a.Next(ctx, name, start)
	if err != nil {
		return "", err
	}
	return prefix + strconv.FormatInt(n, 10), nil
}

// Peek 返回最近一次发出的编号，序列不存在时为 0。
func (a *Allocator) Peek(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	var c model.Counter
	err := a.db.WithContext(ctx).Where("name = ?", name).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.LastIssued, nil
}
