package sequence

import (
	"context"
	"sync"
	"testing"

	"order_desk/internal/apperr"
	"order_desk/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_FreshSequenceStartsAtStart(t *testing.T) {
	a := NewAllocator(storetest.New(t))
	ctx := context.Background()

	first, err := a.Next(ctx, OrderCounter, OrderStart)
	require.NoError(t, err)
	second, err := a.Next(ctx, OrderCounter, OrderStart)
	require.NoError(t, err)

	assert.Equal(t, int64(1001), first)
	assert.Equal(t, int64(1002), second)

	last, err := a.Peek(ctx, OrderCounter)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), last)
}

func TestNext_DefaultStart(t *testing.T) {
	a := NewAllocator(storetest.New(t))

	n, err := a.Next(context.Background(), CustomerCounter, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(101), n)
}

func TestNext_RaisedStartSkipsAhead(t *testing.T) {
	a := NewAllocator(storetest.New(t))
	ctx := context.Background()

	n, err := a.Next(ctx, "invoiceCounter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = a.Next(ctx, "invoiceCounter", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)

	// 起始值调低不会回退
	n, err = a.Next(ctx, "invoiceCounter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(501), n)
}

func TestNext_SequencesAreIndependent(t *testing.T) {
	a := NewAllocator(storetest.New(t))
	ctx := context.Background()

	c, err := a.Next(ctx, CustomerCounter, CustomerStart)
	require.NoError(t, err)
	o, err := a.Next(ctx, OrderCounter, OrderStart)
	require.NoError(t, err)

	assert.Equal(t, int64(101), c)
	assert.Equal(t, int64(1001), o)
}

func TestNext_ConcurrentCallersGetDistinctValues(t *testing.T) {
	a := NewAllocator(storetest.New(t))
	const n = 50

	var wg sync.WaitGroup
	results := make([]int64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = a.Next(context.Background(), OrderCounter, OrderStart)
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]struct{}, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.GreaterOrEqual(t, results[i], OrderStart)
		seen[results[i]] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestNext_Validation(t *testing.T) {
	a := NewAllocator(storetest.New(t))

	_, err := a.Next(context.Background(), "  ", 1)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = a.Next(context.Background(), OrderCounter, -5)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestNext_StorageFailureIsAllocationError(t *testing.T) {
	db := storetest.New(t)
	a := NewAllocator(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = a.Next(context.Background(), OrderCounter, OrderStart)
	require.ErrorIs(t, err, apperr.ErrAllocation)

	var allocErr *apperr.AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, OrderCounter, allocErr.Sequence)
}

func TestNextDisplay(t *testing.T) {
	a := NewAllocator(storetest.New(t))

	id, err := a.NextDisplay(context.Background(), OrderCounter, OrderStart, "OM-")
	require.NoError(t, err)
	assert.Equal(t, "OM-1001", id)
}

func TestPeek_TrimsName(t *testing.T) {
	a := NewAllocator(storetest.New(t))
	ctx := context.Background()

	_, err := a.Next(ctx, " "+OrderCounter+" ", OrderStart)
	require.NoError(t, err)

	last, err := a.Peek(ctx, " "+OrderCounter)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), last)
}
