package pending

import (
	"context"
	"testing"

	"order_desk/internal/apperr"
	"order_desk/internal/model"
	"order_desk/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ComputesTotals(t *testing.T) {
	svc := NewService(storetest.New(t))
	ctx := context.Background()

	p, err := svc.Submit(ctx, SubmitInput{
		Customer: model.CustomerSnapshot{FullName: "Asha", WhatsAppNo: "9990001111"},
		Items: []model.LineItem{
			{ProductName: "Visiting Card", Quantity: 500, Rate: decimal.RequireFromString("1.2"), Amount: decimal.NewFromInt(600)},
			{ProductName: "Flex", Type: model.ItemTypeSqFt, Quantity: 1, Width: decimal.NewFromInt(10), Height: decimal.NewFromInt(4), Unit: model.UnitFeet, Amount: decimal.NewFromInt(400)},
		},
		Discount: decimal.NewFromInt(100),
	}, "agent-7", "agent7@shop.test")
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.True(t, decimal.NewFromInt(1000).Equal(p.Subtotal))
	assert.True(t, decimal.NewFromInt(900).Equal(p.FinalAmount))
	assert.Equal(t, model.ItemTypeQty, p.Items[0].Type)
	assert.True(t, decimal.NewFromInt(40).Equal(p.Items[1].PrintSqFt))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Customer.Data().FullName)
	assert.Len(t, got.Items, 2)
}

func TestSubmit_Validation(t *testing.T) {
	svc := NewService(storetest.New(t))
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{}, "a", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Submit(ctx, SubmitInput{Items: []model.LineItem{{ProductName: "x", Quantity: 0}}}, "a", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Submit(ctx, SubmitInput{
		Items:    []model.LineItem{{ProductName: "x", Quantity: 1, Amount: decimal.NewFromInt(10)}},
		Discount: decimal.NewFromInt(11),
	}, "a", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListAndReject(t *testing.T) {
	svc := NewService(storetest.New(t))
	ctx := context.Background()
	in := SubmitInput{Items: []model.LineItem{{ProductName: "Poster", Quantity: 2, Amount: decimal.NewFromInt(50)}}}

	p1, err := svc.Submit(ctx, in, "agent-1", "")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, in, "agent-2", "")
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p1.ID, mine[0].ID)

	require.NoError(t, svc.Reject(ctx, p1.ID))
	assert.ErrorIs(t, svc.Reject(ctx, p1.ID), apperr.ErrNotFound)

	_, err = svc.Get(ctx, p1.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
