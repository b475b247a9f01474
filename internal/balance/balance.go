// Package balance 按需计算客户欠款：订单总额 − 带符号收款合计，不落库、不缓存。
package balance

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"order_desk/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 余额方向
const (
	SideDue     = "due"     // 客户欠款（借方）
	SideCredit  = "credit"  // 客户有预存（贷方）
	SideSettled = "settled" // 结清
)

// AmountSource 读取某客户的原始金额值（可能缺失或非数值）。
type AmountSource interface {
	OrderTotals(ctx context.Context, customerID string) ([]any, error)
	PaymentAmounts(ctx context.Context, customerID string) ([]any, error)
}

// Row 批量计算时每个客户的结果，Err 只影响本行。
type Row struct {
	CustomerID string          `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
	Amount     decimal.Decimal `json:"amount"`
	Side       string          `json:"side"`
	Err        error           `json:"-"`
	Error      string          `json:"error,omitempty"`
}

type Calculator struct {
	src         AmountSource
	concurrency int
}

func NewCalculator(src AmountSource, concurrency int) *Calculator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Calculator{src: src, concurrency: concurrency}
}

// Balance 正数表示客户欠款，负数表示客户有余额。
func (c *Calculator) Balance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	totals, err := c.src.OrderTotals(ctx, customerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load orders for %s: %w", customerID, err)
	}
	paid, err := c.src.PaymentAmounts(ctx, customerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load payments for %s: %w", customerID, err)
	}
	return Sum(totals).Sub(Sum(paid)), nil
}

// Balances 并发计算多个客户，单个客户失败不影响其他行。结果顺序与 ids 一致。
func (c *Calculator) Balances(ctx context.Context, ids []string) []Row {
	rows := make([]Row, len(ids))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	// 取消后剩余行直接记 ctx 错误，不再启动新的计算
	cancelRest := func(from int) {
		for j := from; j < len(ids); j++ {
			rows[j] = Row{CustomerID: ids[j], Err: ctx.Err(), Error: ctx.Err().Error()}
		}
	}

launch:
	for i, id := range ids {
		if ctx.Err() != nil {
			cancelRest(i)
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			cancelRest(i)
			break launch
		}
		wg.Add(1)
		go func(idx int, customerID string) {
			defer wg.Done()
			defer func() { <-sem }()

			row := Row{CustomerID: customerID}
			b, err := c.Balance(ctx, customerID)
			if err != nil {
				row.Err = err
				row.Error = err.Error()
			} else {
				row.Balance = b
				row.Amount, row.Side = Describe(b)
			}
			rows[idx] = row
		}(i, id)
	}

	wg.Wait()
	return rows
}

// Describe 把带符号余额拆成金额绝对值与方向。
func Describe(b decimal.Decimal) (decimal.Decimal, string) {
	switch b.Sign() {
	case 1:
		return b, SideDue
	case -1:
		return b.Neg(), SideCredit
	default:
		return decimal.Zero, SideSettled
	}
}

// Sum 汇总原始金额，缺失或非数值按 0 处理。
func Sum(values []any) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(ToDecimal(v))
	}
	return total
}

// ToDecimal 尽量把数据库/JSON 中的任意值转为金额，失败返回 0。
func ToDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case int64:
		return decimal.NewFromInt(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case float64:
		return decimal.NewFromFloat(x)
	case string:
		return parseDecimal(x)
	case []byte:
		return parseDecimal(string(x))
	default:
		return decimal.Zero
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// GormSource 从 orders / payments 表读取原始列值。
type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) OrderTotals(ctx context.Context, customerID string) ([]any, error) {
	return s.column(ctx, &model.Order{}, "total_amount", customerID)
}

func (s *GormSource) PaymentAmounts(ctx context.Context, customerID string) ([]any, error) {
	return s.column(ctx, &model.Payment{}, "amount_paid", customerID)
}

func (s *GormSource) column(ctx context.Context, m any, col, customerID string) ([]any, error) {
	rows, err := s.db.WithContext(ctx).Model(m).
		Select(col).
		Where("customer_id = ?", customerID).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
