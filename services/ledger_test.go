package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOrGetOrderReturnsSameOrder(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()

	first, err := ledger.OpenOrGetOrder(ctx, "Bàn 1")
	require.NoError(t, err)
	second, err := ledger.OpenOrGetOrder(ctx, " Bàn 1 ")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = ledger.OpenOrGetOrder(ctx, "  ")
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestApplyQuantityDeltaRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Ốc hương", 80000)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 2")
	require.NoError(t, err)

	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 2))
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 1))
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, -1))

	quantities, err := ledger.LoadOpenOrder(ctx, "Bàn 2")
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{oc.ID: 2}, quantities)
}

func TestApplyQuantityDeltaZeroIsNoop(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Ốc len", 60000)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 3")
	require.NoError(t, err)
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 0))

	var count int64
	db.Model(&models.OrderItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestApplyQuantityDeltaRemovesLineAtZero(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Sò điệp", 90000)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 4")
	require.NoError(t, err)

	// Lowering a line that does not exist leaves nothing behind.
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, -3))
	quantities, err := ledger.OrderQuantities(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, quantities)

	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 2))
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, -5))

	var count int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count)
	assert.Zero(t, count)
}

func TestApplyQuantityDeltaErrors(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Nghêu hấp", 70000)

	var nf *services.NotFoundError
	err := ledger.ApplyQuantityDelta(ctx, 999, oc.ID, 1)
	assert.ErrorAs(t, err, &nf)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 6")
	require.NoError(t, err)
	err = ledger.ApplyQuantityDelta(ctx, orderID, 999, 1)
	assert.ErrorAs(t, err, &nf)

	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 1))
	require.NoError(t, ledger.CloseOrder(ctx, orderID))

	var verr *services.ValidationError
	err = ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 1)
	assert.ErrorAs(t, err, &verr)
}

func TestApplyQuantityDeltaRejectsOversizedLine(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Ốc mỡ", 65000)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 7")
	require.NoError(t, err)

	var verr *services.ValidationError
	assert.ErrorAs(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, math.MaxInt), &verr)
	quantities, err := ledger.OrderQuantities(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, quantities)

	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 5))
	assert.ErrorAs(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, math.MaxInt), &verr)
	assert.ErrorAs(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, services.MaxLineQuantity), &verr)

	quantities, err = ledger.LoadOpenOrder(ctx, "Bàn 7")
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{oc.ID: 5}, quantities)

	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, services.MaxLineQuantity-5))
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, math.MinInt))
	quantities, err = ledger.OrderQuantities(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, quantities)
}

func TestApplyQuantityDeltaOnceIgnoresRetry(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Ốc móng tay", 85000)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 7")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.ApplyQuantityDeltaOnce(ctx, "req-1", orderID, oc.ID, 2))
	}
	require.NoError(t, ledger.ApplyQuantityDeltaOnce(ctx, "req-2", orderID, oc.ID, 1))

	quantities, err := ledger.OrderQuantities(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, 3, quantities[oc.ID])

	var verr *services.ValidationError
	assert.ErrorAs(t, ledger.ApplyQuantityDeltaOnce(ctx, "", orderID, oc.ID, 1), &verr)
}

func TestAdjustTable(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Ốc bươu", 50000)

	// Removing from a free table does not open an order.
	orderID, err := ledger.AdjustTable(ctx, "Bàn 8", oc.ID, -1, "")
	require.NoError(t, err)
	assert.Zero(t, orderID)

	orderID, err = ledger.AdjustTable(ctx, "Bàn 8", oc.ID, 2, "tap-1")
	require.NoError(t, err)
	assert.NotZero(t, orderID)

	again, err := ledger.AdjustTable(ctx, "Bàn 8", oc.ID, 2, "tap-1")
	require.NoError(t, err)
	assert.Equal(t, orderID, again)

	quantities, err := ledger.LoadOpenOrder(ctx, "Bàn 8")
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{oc.ID: 2}, quantities)
}

func TestConcurrentDeltasAreNotLost(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Tôm nướng", 120000)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 9")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	quantities, err := ledger.OrderQuantities(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, workers, quantities[oc.ID])
}

func TestActiveTablesFollowOrderLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Ốc hương", 80000)

	active, err := ledger.ListActiveTables(ctx)
	require.NoError(t, err)
	assert.NotContains(t, active, "Bàn 5")

	orderID, err := ledger.AdjustTable(ctx, "Bàn 5", oc.ID, 1, "")
	require.NoError(t, err)
	_, err = ledger.OpenOrGetOrder(ctx, "Bàn 10")
	require.NoError(t, err)

	active, err = ledger.ListActiveTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bàn 10", "Bàn 5"}, active)

	require.NoError(t, ledger.CloseOrder(ctx, orderID))
	active, err = ledger.ListActiveTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bàn 10"}, active)
}

func TestCloseOrder(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 11")
	require.NoError(t, err)

	require.NoError(t, ledger.CloseOrder(ctx, orderID))
	require.NoError(t, ledger.CloseOrder(ctx, orderID))

	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.NotNil(t, order.PaidAt)

	// A new order can be opened on the same table afterwards.
	next, err := ledger.OpenOrGetOrder(ctx, "Bàn 11")
	require.NoError(t, err)
	assert.NotEqual(t, orderID, next)

	err = ledger.CloseOrder(ctx, 12345)
	var nf *services.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestBillUsesCurrentPrices(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()
	oc := createMenuItem(t, db, "Ốc hương", 80000)
	nuoc := createMenuItem(t, db, "Trà đá", 5000)

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 12")
	require.NoError(t, err)
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, oc.ID, 2))
	require.NoError(t, ledger.ApplyQuantityDelta(ctx, orderID, nuoc.ID, 3))

	require.NoError(t, db.Model(&nuoc).Update("price", 6000).Error)

	bill, err := ledger.Bill(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, bill.Lines, 2)
	assert.Equal(t, "Ốc hương", bill.Lines[0].Name)
	assert.Equal(t, 160000.0, bill.Lines[0].Subtotal)
	assert.Equal(t, 18000.0, bill.Lines[1].Subtotal)
	assert.Equal(t, 178000.0, bill.Total)
}

func TestMarkPrintedReplacesBaseline(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedger(db)
	ctx := context.Background()

	orderID, err := ledger.OpenOrGetOrder(ctx, "Bàn 1")
	require.NoError(t, err)
	a := createMenuItem(t, db, "A", 1)
	b := createMenuItem(t, db, "B", 1)

	require.NoError(t, ledger.MarkPrinted(ctx, orderID, map[uint]int{a.ID: 2, b.ID: 1}))
	require.NoError(t, ledger.MarkPrinted(ctx, orderID, map[uint]int{a.ID: 3}))

	printed, err := ledger.PrintedQuantities(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{a.ID: 3}, printed)
}
