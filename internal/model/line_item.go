package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 明细计量方式
const (
	ItemTypeQty  = "Qty"
	ItemTypeSqFt = "SqFt"
)

// 尺寸单位
const (
	UnitFeet   = "feet"
	UnitInches = "inches"
)

var inchesPerFoot = decimal.NewFromInt(12)

// LineItem 订单明细，pending 与正式订单共用同一结构（转正时原样拷贝）。
type LineItem struct {
	ProductName string          `json:"product_name"`
	Type        string          `json:"type"`
	Quantity    int64           `json:"quantity"`
	Width       decimal.Decimal `json:"width,omitempty"`
	Height      decimal.Decimal `json:"height,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	PrintSqFt   decimal.Decimal `json:"print_sqft,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// IsSqFt 是否按平方英尺计量（喷绘类）。
func (it LineItem) IsSqFt() bool {
	return strings.EqualFold(it.Type, ItemTypeSqFt)
}

// SqFt 计算喷绘面积：宽 × 高 × 数量，英寸先换算成英尺，保留两位小数。
// 非面积类明细返回 0。
func (it LineItem) SqFt() decimal.Decimal {
	if !it.IsSqFt() || it.Quantity <= 0 {
		return decimal.Zero
	}
	w, h := it.Width, it.Height
	if strings.EqualFold(it.Unit, UnitInches) {
		w = w.Div(inchesPerFoot)
		h = h.Div(inchesPerFoot)
	}
	if !w.IsPositive() || !h.IsPositive() {
		return decimal.Zero
	}
	return w.Mul(h).Mul(decimal.NewFromInt(it.Quantity)).Round(2)
}
