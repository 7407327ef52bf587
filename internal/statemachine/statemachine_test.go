package statemachine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerfix/acceptor/internal/apierr"
	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// S1 — full market fill.
func TestNewOrderSingleThenFullFill(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()

	order, exec, stored, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "EXEC_TEST_001", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Market, Quantity: dec("100"), TimeInForce: domain.TIFDay,
		SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)
	require.True(t, stored)
	assert.Equal(t, domain.New, order.Status)
	assert.Equal(t, domain.ExecNew, exec.ExecType)
	assert.True(t, order.Remaining().Equal(dec("100")))

	filled, fillExec, err := AdminFill(ctx, s, "EXEC_TEST_001", dec("100"), dec("230.10"))
	require.NoError(t, err)
	assert.Equal(t, domain.Filled, filled.Status)
	assert.Equal(t, domain.ExecFill, fillExec.ExecType)
	assert.True(t, filled.FilledQuantity.Equal(dec("100")))
	assert.True(t, filled.AvgPx.Equal(dec("230.1")))
	assert.True(t, filled.Remaining().IsZero())
}

// S2 — three partial fills, AvgPx constant across same-price fills.
func TestThreePartialFillsAvgPx(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "MULTI_PARTIAL_001", Symbol: "GOOGL", Side: domain.Buy,
		OrderType: domain.Market, Quantity: dec("100"), SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)

	o1, e1, err := AdminFill(ctx, s, "MULTI_PARTIAL_001", dec("30"), dec("167.25"))
	require.NoError(t, err)
	assert.Equal(t, domain.PartiallyFilled, o1.Status)
	assert.Equal(t, domain.ExecPartialFill, e1.ExecType)
	assert.True(t, o1.FilledQuantity.Equal(dec("30")))
	assert.True(t, o1.Remaining().Equal(dec("70")))

	o2, _, err := AdminFill(ctx, s, "MULTI_PARTIAL_001", dec("40"), dec("167.25"))
	require.NoError(t, err)
	assert.True(t, o2.FilledQuantity.Equal(dec("70")))
	assert.True(t, o2.Remaining().Equal(dec("30")))

	o3, e3, err := AdminFill(ctx, s, "MULTI_PARTIAL_001", dec("30"), dec("167.25"))
	require.NoError(t, err)
	assert.Equal(t, domain.Filled, o3.Status)
	assert.Equal(t, domain.ExecFill, e3.ExecType)
	assert.True(t, o3.Remaining().IsZero())
	assert.True(t, o3.AvgPx.Equal(dec("167.25")))
}

// S3 — cancel a partially filled order.
func TestOrderCancelRequestOnPartiallyFilled(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "PARTFILL_001", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Limit, Quantity: dec("100"), LimitPrice: dec("230.0"),
		SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)
	_, _, err = AdminFill(ctx, s, "PARTFILL_001", dec("40"), dec("230.0"))
	require.NoError(t, err)

	order, exec, reject, err := OrderCancelRequest(ctx, s, "CANCEL_PARTFILL_001", "PARTFILL_001")
	require.NoError(t, err)
	require.Nil(t, reject)
	assert.Equal(t, domain.Canceled, order.Status)
	assert.Equal(t, domain.ExecCanceled, exec.ExecType)
	assert.True(t, order.FilledQuantity.Equal(dec("40")))
	assert.True(t, order.Remaining().Equal(dec("60")), "record retains true remaining for audit")
}

// S4 — cancel unknown order.
func TestOrderCancelRequestUnknownOrder(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	order, exec, reject, err := OrderCancelRequest(ctx, s, "CANCEL_X", "NONEXISTENT")
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Nil(t, exec)
	require.NotNil(t, reject)
	assert.Equal(t, "1", reject.CxlRejReason)
	assert.Equal(t, "Order not found", reject.Text)
}

// S5 — cancel a filled order.
func TestOrderCancelRequestTooLate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "EXEC_TEST_001", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Market, Quantity: dec("100"), SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)
	_, _, err = AdminFill(ctx, s, "EXEC_TEST_001", dec("100"), dec("230.10"))
	require.NoError(t, err)

	_, _, reject, err := OrderCancelRequest(ctx, s, "CANCEL_X", "EXEC_TEST_001")
	require.NoError(t, err)
	require.NotNil(t, reject)
	assert.Equal(t, "0", reject.CxlRejReason)
	assert.Equal(t, "Order already FILLED", reject.Text)
}

// S6 — amend quantity; old id then rejects on cancel.
func TestOrderCancelReplaceAmendQuantity(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "AMEND_QTY_001", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Limit, Quantity: dec("100"), LimitPrice: dec("225.0"),
		SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)

	newOrder, exec, reject, err := OrderCancelReplaceRequest(ctx, s, ReplaceInput{
		NewClOrdID: "AMEND_QTY_001_V2", OrigClOrdID: "AMEND_QTY_001",
		Quantity: dec("150"), LimitPrice: dec("225.0"),
	})
	require.NoError(t, err)
	require.Nil(t, reject)
	assert.Equal(t, domain.ExecReplaced, exec.ExecType)
	assert.Equal(t, domain.New, newOrder.Status)
	assert.True(t, newOrder.Quantity.Equal(dec("150")))
	assert.True(t, newOrder.Remaining().Equal(dec("150")))
	assert.Equal(t, "AMEND_QTY_001", newOrder.OrigClOrdID)

	_, _, cancelReject, err := OrderCancelRequest(ctx, s, "CANCEL_OLD", "AMEND_QTY_001")
	require.NoError(t, err)
	require.NotNil(t, cancelReject)
	assert.Equal(t, "Order already REPLACED", cancelReject.Text)
}

func TestReplaceBelowFilledQuantityIsTooLate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "PARTFILL_002", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Limit, Quantity: dec("100"), LimitPrice: dec("230.0"),
		SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)
	_, _, err = AdminFill(ctx, s, "PARTFILL_002", dec("60"), dec("230.0"))
	require.NoError(t, err)

	_, _, reject, err := OrderCancelReplaceRequest(ctx, s, ReplaceInput{
		NewClOrdID: "PARTFILL_002_V2", OrigClOrdID: "PARTFILL_002", Quantity: dec("50"),
	})
	require.NoError(t, err)
	require.NotNil(t, reject)
	assert.Equal(t, "New quantity below filled", reject.Text)
}

// Property 8: missing Price on a Limit order is rejected mentioning price.
func TestNewOrderSingleLimitMissingPriceRejected(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	order, exec, stored, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "BAD_LIMIT_001", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Limit, Quantity: dec("10"), SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, domain.Rejected, order.Status)
	assert.Contains(t, order.RejectReason, "price")
	assert.Equal(t, domain.ExecRejected, exec.ExecType)
}

// Property 10: overfill past OrderQty is refused with Overfill.
func TestAdminFillOverfillRejected(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "OVERFILL_001", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Market, Quantity: dec("10"), SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)

	_, _, err = AdminFill(ctx, s, "OVERFILL_001", dec("11"), dec("10.0"))
	require.Error(t, err)
	apiErr, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.Overfill, apiErr.Kind)
}

// Property 7: re-canceling an already-canceled order returns BadState.
func TestAdminCancelAlreadyCanceledIsBadState(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := NewOrderSingle(ctx, s, NewOrderInput{
		ClOrdID: "DOUBLE_CANCEL_001", Symbol: "AAPL", Side: domain.Buy,
		OrderType: domain.Market, Quantity: dec("10"), SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)
	_, _, err = AdminCancel(ctx, s, "DOUBLE_CANCEL_001")
	require.NoError(t, err)

	_, _, err = AdminCancel(ctx, s, "DOUBLE_CANCEL_001")
	require.Error(t, err)
	apiErr, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.BadState, apiErr.Kind)
}
