package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"order_desk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applyCall struct {
	eventID int64
	orderID string
	items   []model.LineItem
}

type fakeApplier struct {
	calls []applyCall
	err   error
}

func (f *fakeApplier) Apply(_ context.Context, eventID int64, orderID string, items []model.LineItem) (bool, error) {
	f.calls = append(f.calls, applyCall{eventID, orderID, items})
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

func encode(t *testing.T, kind string, payload any) []byte {
	t.Helper()
	p, err := json.Marshal(payload)
	require.NoError(t, err)
	b, err := json.Marshal(OrderMessage{EventID: 9, Kind: kind, OrderID: "o1", DisplayID: "OM-1001", Payload: p})
	require.NoError(t, err)
	return b
}

func TestConsumerHandle_AppliesCreated(t *testing.T) {
	f := &fakeApplier{}
	c := &Consumer{stock: f, maxAttempts: 1}

	err := c.handle(context.Background(), encode(t, model.EventOrderCreated, model.OrderCreatedPayload{
		Items: []model.LineItem{{ProductName: "Flex", Quantity: 2}},
	}))
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	assert.Equal(t, int64(9), f.calls[0].eventID)
	assert.Equal(t, "o1", f.calls[0].orderID)
	assert.Equal(t, "Flex", f.calls[0].items[0].ProductName)
}

func TestConsumerHandle_IgnoresOtherKindsAndGarbage(t *testing.T) {
	f := &fakeApplier{}
	c := &Consumer{stock: f, maxAttempts: 1}

	require.NoError(t, c.handle(context.Background(), encode(t, model.EventOrderStatusChanged, model.StatusChangedPayload{From: model.StatusOrderReceived, To: model.StatusPrinting})))
	require.NoError(t, c.handle(context.Background(), []byte("not json")))
	require.NoError(t, c.handle(context.Background(), []byte(`{"event_id":0}`)))
	assert.Empty(t, f.calls)
}

func TestConsumerHandleWithRetry_GivesUp(t *testing.T) {
	f := &fakeApplier{err: errors.New("db locked")}
	c := &Consumer{stock: f, maxAttempts: 2}

	err := c.handleWithRetry(context.Background(), encode(t, model.EventOrderCreated, model.OrderCreatedPayload{}))
	require.Error(t, err)
	assert.Len(t, f.calls, 2)
}
