package dispatch

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/port"
	"github.com/brokerfix/acceptor/internal/statemachine"
	"github.com/brokerfix/acceptor/internal/store"
)

type fakeEmitter struct {
	reports []*domain.Execution
}

func (f *fakeEmitter) SendExecutionReport(o *domain.Order, e *domain.Execution) error {
	f.reports = append(f.reports, e)
	return nil
}

func (f *fakeEmitter) SendCancelReject(clOrdID, origClOrdID, cxlRejReason, text string) error {
	return nil
}

type fakeRegistry struct {
	emitters map[string]port.Emitter
}

func (r *fakeRegistry) Lookup(senderCompID string) (port.Emitter, bool) {
	e, ok := r.emitters[senderCompID]
	return e, ok
}

func TestSubmitFillEmitsOnLiveSession(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := statemachine.NewOrderSingle(ctx, s, statemachine.NewOrderInput{
		ClOrdID: "D1", Symbol: "AAPL", Side: domain.Buy, OrderType: domain.Market,
		Quantity: decimal.NewFromInt(10), SenderCompID: "TEST_CLIENT",
	})
	require.NoError(t, err)

	em := &fakeEmitter{}
	reg := &fakeRegistry{emitters: map[string]port.Emitter{"TEST_CLIENT": em}}
	d := New(s, reg, nil, nil, zap.NewNop())

	err = d.SubmitFill(ctx, "D1", decimal.NewFromInt(10), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, em.reports, 1)
	assert.Equal(t, domain.ExecFill, em.reports[0].ExecType)
}

func TestSubmitFillDropsReportWithoutLiveSession(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	_, _, _, err := statemachine.NewOrderSingle(ctx, s, statemachine.NewOrderInput{
		ClOrdID: "D2", Symbol: "AAPL", Side: domain.Buy, OrderType: domain.Market,
		Quantity: decimal.NewFromInt(10), SenderCompID: "OFFLINE_CLIENT",
	})
	require.NoError(t, err)

	reg := &fakeRegistry{emitters: map[string]port.Emitter{}}
	d := New(s, reg, nil, nil, zap.NewNop())

	err = d.SubmitFill(ctx, "D2", decimal.NewFromInt(10), decimal.NewFromInt(5))
	require.NoError(t, err, "state must still commit even with no live session")

	o, err := d.GetOrder(ctx, "D2")
	require.NoError(t, err)
	assert.Equal(t, domain.Filled, o.Status)
}
