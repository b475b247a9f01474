package stock

import (
	"context"
	"testing"

	"order_desk/internal/model"
	"order_desk/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func stockOf(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, db.Where("name = ?", name).Take(&p).Error)
	return p.Stock
}

func TestApply_DecrementsOnce(t *testing.T) {
	db := storetest.New(t)
	require.NoError(t, db.Create(&model.Product{Name: "Visiting Card", Stock: 5000}).Error)
	require.NoError(t, db.Create(&model.Product{Name: "Flex", Unit: model.ItemTypeSqFt, Stock: 100}).Error)

	adj := NewAdjuster(db)
	items := []model.LineItem{
		{ProductName: "Visiting Card", Quantity: 1000},
		{ProductName: "Visiting Card", Quantity: 500},
		{ProductName: "Flex", Type: model.ItemTypeSqFt, Quantity: 1, Width: decimal.NewFromInt(5), Height: decimal.RequireFromString("2.5"), Unit: model.UnitFeet},
		{ProductName: "Lamination", Quantity: 3},
	}

	applied, err := adj.Apply(context.Background(), 42, "order-1", items)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(3500), stockOf(t, db, "Visiting Card"))
	assert.Equal(t, int64(87), stockOf(t, db, "Flex"))

	applied, err = adj.Apply(context.Background(), 42, "order-1", items)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, int64(3500), stockOf(t, db, "Visiting Card"))
}

func TestApply_AllowsNegativeStock(t *testing.T) {
	db := storetest.New(t)
	require.NoError(t, db.Create(&model.Product{Name: "Sticker", Stock: 2}).Error)

	_, err := NewAdjuster(db).Apply(context.Background(), 7, "order-2", []model.LineItem{{ProductName: "Sticker", Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), stockOf(t, db, "Sticker"))
}
