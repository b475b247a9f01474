package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineItemSqFt(t *testing.T) {
	cases := []struct {
		name string
		item LineItem
		want string
	}{
		{"feet", LineItem{Type: ItemTypeSqFt, Quantity: 2, Width: decimal.NewFromInt(3), Height: decimal.NewFromInt(4), Unit: UnitFeet}, "24"},
		{"inches", LineItem{Type: "sqft", Quantity: 1, Width: decimal.NewFromInt(18), Height: decimal.NewFromInt(24), Unit: UnitInches}, "3"},
		{"rounded", LineItem{Type: ItemTypeSqFt, Quantity: 1, Width: decimal.NewFromInt(10), Height: decimal.NewFromInt(10), Unit: UnitInches}, "0.69"},
		{"qty item", LineItem{Type: ItemTypeQty, Quantity: 5}, "0"},
		{"missing size", LineItem{Type: ItemTypeSqFt, Quantity: 1, Width: decimal.NewFromInt(3)}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tc.want).Equal(tc.item.SqFt()), "got %s", tc.item.SqFt())
		})
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.NewFromInt(1000)
	assert.Equal(t, PaymentPending, DerivePaymentStatus(total, decimal.Zero))
	assert.Equal(t, PaymentPartial, DerivePaymentStatus(total, decimal.NewFromInt(400)))
	assert.Equal(t, PaymentPaid, DerivePaymentStatus(total, decimal.NewFromInt(1000)))
	assert.Equal(t, PaymentPaid, DerivePaymentStatus(total, decimal.NewFromInt(1200)))
}

func TestAppendStatusKeepsHistoryInSync(t *testing.T) {
	var o Order
	now := time.Now()
	o.AppendStatus(StatusOrderReceived, "", now)
	o.AppendStatus(StatusDesigning, "admin-1", now.Add(time.Minute))

	assert.Equal(t, StatusDesigning, o.Status)
	assert.Len(t, o.StatusHistory, 2)
	assert.Equal(t, o.Status, o.StatusHistory[len(o.StatusHistory)-1].Status)
	assert.True(t, ValidOrderStatus(StatusPrinting))
	assert.False(t, ValidOrderStatus("Shipped"))
}
