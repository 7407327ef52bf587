// Package dispatch implements component C5: the bridge between the
// administrative surface's execution posts and the client session that
// owns the affected order.
package dispatch

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/port"
	"github.com/brokerfix/acceptor/internal/statemachine"
)

// Dispatcher resolves the owning session for an order, applies the
// requested state-machine transition under the order's lock, and pushes
// the resulting report to that session if one is live. If no session is
// live, the state change still commits and the report is dropped with a
// logged warning (spec §4.5: "state reflects truth independently of
// connectivity").
type Dispatcher struct {
	store    port.OrderStore
	registry port.SessionRegistry
	tail     port.PersistenceTail // optional; nil when no persistence tail is configured
	cache    port.ReadCache       // optional; nil when no read cache is configured
	log      *zap.Logger
}

func New(store port.OrderStore, registry port.SessionRegistry, tail port.PersistenceTail, cache port.ReadCache, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: store, registry: registry, tail: tail, cache: cache, log: log}
}

// SubmitFill is E2, dispatch_execution(kind=Fill).
func (d *Dispatcher) SubmitFill(ctx context.Context, clOrdID string, qty, price decimal.Decimal) error {
	order, exec, err := statemachine.AdminFill(ctx, d.store, clOrdID, qty, price)
	if err != nil {
		return err
	}
	d.persist(ctx, order, exec)
	d.invalidate(ctx, clOrdID)
	d.emit(order, exec)
	return nil
}

// AdminCancel is E3, dispatch_execution(kind=Cancel).
func (d *Dispatcher) AdminCancel(ctx context.Context, clOrdID string) error {
	order, exec, err := statemachine.AdminCancel(ctx, d.store, clOrdID)
	if err != nil {
		return err
	}
	d.persist(ctx, order, exec)
	d.invalidate(ctx, clOrdID)
	d.emit(order, exec)
	return nil
}

// AdminReject is E4, dispatch_execution(kind=Reject).
func (d *Dispatcher) AdminReject(ctx context.Context, clOrdID, reason string) error {
	order, exec, err := statemachine.AdminReject(ctx, d.store, clOrdID, reason)
	if err != nil {
		return err
	}
	d.persist(ctx, order, exec)
	d.invalidate(ctx, clOrdID)
	d.emit(order, exec)
	return nil
}

func (d *Dispatcher) invalidate(ctx context.Context, clOrdID string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Invalidate(ctx, clOrdID); err != nil {
		d.log.Warn("dispatch: cache invalidate failed", zap.Error(err))
	}
}

// ListOrders, GetOrder, and ListExecutions back the read-only admin
// views spec §6 enumerates.
func (d *Dispatcher) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return d.store.ListAll(ctx)
}

func (d *Dispatcher) GetOrder(ctx context.Context, clOrdID string) (*domain.Order, error) {
	if d.cache != nil {
		if cached, err := d.cache.GetOrder(ctx, clOrdID); err == nil && cached != nil {
			return cached, nil
		}
	}
	o, err := d.store.Get(ctx, clOrdID)
	if err != nil {
		return nil, err
	}
	if d.cache != nil {
		if err := d.cache.SetOrder(ctx, o); err != nil {
			d.log.Warn("dispatch: cache write failed", zap.Error(err))
		}
	}
	return o, nil
}

func (d *Dispatcher) ListExecutions(ctx context.Context, clOrdID string) ([]*domain.Execution, error) {
	return d.store.Executions(ctx, clOrdID)
}

func (d *Dispatcher) emit(order *domain.Order, exec *domain.Execution) {
	emitter, ok := d.registry.Lookup(order.OwningSenderCompID)
	if !ok {
		d.log.Warn("dispatch: no live session for order, report dropped",
			zap.String("cl_ord_id", order.ClOrdID),
			zap.String("owning_sender_comp_id", order.OwningSenderCompID))
		return
	}
	if err := emitter.SendExecutionReport(order, exec); err != nil {
		d.log.Warn("dispatch: emission failed", zap.Error(err))
	}
}

func (d *Dispatcher) persist(ctx context.Context, order *domain.Order, exec *domain.Execution) {
	if d.tail == nil {
		return
	}
	if err := d.tail.SaveOrder(ctx, order); err != nil {
		d.log.Error("dispatch: persistence tail SaveOrder failed", zap.Error(err))
	}
	if err := d.tail.SaveExecution(ctx, exec); err != nil {
		d.log.Error("dispatch: persistence tail SaveExecution failed", zap.Error(err))
	}
}

