// Package statemachine implements component C4: the total functions
// from (current order state, event) to (new state, outbound report)
// described by spec events E1-E6. It never touches a socket or the HTTP
// surface directly; callers in session and dispatch turn its results
// into wire messages or admin responses.
package statemachine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brokerfix/acceptor/internal/apierr"
	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/fix"
	"github.com/brokerfix/acceptor/internal/idgen"
	"github.com/brokerfix/acceptor/internal/port"
)

// NewOrderInput is the client-supplied content of a NewOrderSingle (E1).
type NewOrderInput struct {
	ClOrdID      string
	Symbol       string
	Side         domain.Side
	OrderType    domain.OrderType
	Quantity     decimal.Decimal
	LimitPrice   decimal.Decimal
	TimeInForce  domain.TimeInForce
	SenderCompID string
}

// CancelReject carries the fields an OrderCancelReject (MsgType 9) needs;
// it is returned instead of an order/execution pair when E5/E6 rejects.
type CancelReject struct {
	ClOrdID      string
	OrigClOrdID  string
	CxlRejReason string
	Text         string
}

// NewOrderSingle is E1. On validation failure it returns a synthetic,
// unstored Rejected order/execution pair for the caller to report back
// on the inbound session; stored reports true only when the order was
// actually inserted.
func NewOrderSingle(ctx context.Context, store port.OrderStore, in NewOrderInput) (order *domain.Order, exec *domain.Execution, stored bool, err error) {
	now := time.Now().UTC()

	if reason := validateNewOrder(in); reason != "" {
		rejected := &domain.Order{
			ClOrdID:            in.ClOrdID,
			Symbol:             in.Symbol,
			Side:               in.Side,
			OrderType:          in.OrderType,
			Quantity:           in.Quantity,
			LimitPrice:         in.LimitPrice,
			TimeInForce:        in.TimeInForce,
			Status:             domain.Rejected,
			RejectReason:       reason,
			OwningSenderCompID: in.SenderCompID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		rejectExec := &domain.Execution{
			ExecID:    idgen.ExecID(),
			ClOrdID:   in.ClOrdID,
			ExecType:  domain.ExecRejected,
			Quantity:  decimal.Zero,
			Price:     decimal.Zero,
			CreatedAt: now,
		}
		return rejected, rejectExec, false, nil
	}

	tif := in.TimeInForce
	if tif == "" {
		tif = domain.TIFDay
	}

	o := &domain.Order{
		ClOrdID:            in.ClOrdID,
		Symbol:             in.Symbol,
		Side:               in.Side,
		OrderType:          in.OrderType,
		Quantity:           in.Quantity,
		LimitPrice:         in.LimitPrice,
		TimeInForce:        tif,
		Status:             domain.New,
		FilledQuantity:     decimal.Zero,
		AvgPx:              decimal.Zero,
		CumNotional:        decimal.Zero,
		OwningSenderCompID: in.SenderCompID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := store.Insert(ctx, o); err != nil {
		if e, ok := apierr.As(err); ok && e.Kind == apierr.BadState {
			rejected := o.Clone()
			rejected.Status = domain.Rejected
			rejected.RejectReason = "duplicate ClOrdID"
			rejectExec := &domain.Execution{
				ExecID: idgen.ExecID(), ClOrdID: in.ClOrdID, ExecType: domain.ExecRejected,
				Quantity: decimal.Zero, Price: decimal.Zero, CreatedAt: now,
			}
			return rejected, rejectExec, false, nil
		}
		return nil, nil, false, err
	}

	newExec := &domain.Execution{
		ExecID:    idgen.ExecID(),
		ClOrdID:   in.ClOrdID,
		ExecType:  domain.ExecNew,
		Quantity:  decimal.Zero,
		Price:     decimal.Zero,
		CreatedAt: now,
	}
	if err := store.WithLock(ctx, in.ClOrdID, func(cur *domain.Order) (*domain.Order, []*domain.Execution, error) {
		return cur, []*domain.Execution{newExec}, nil
	}); err != nil {
		return nil, nil, false, err
	}
	return o, newExec, true, nil
}

func validateNewOrder(in NewOrderInput) string {
	if in.Symbol == "" {
		return "symbol required"
	}
	if !in.Quantity.IsPositive() {
		return "quantity must be positive"
	}
	if in.OrderType == domain.Limit || in.OrderType == domain.StopLimit {
		if !in.LimitPrice.IsPositive() {
			return "price required for limit order"
		}
	}
	switch in.TimeInForce {
	case "", domain.TIFDay, domain.TIFGTC, domain.TIFIOC, domain.TIFFOK:
	default:
		return "unknown time in force"
	}
	return ""
}

// AdminFill is E2. Preconditions (open status, positive qty, no overfill)
// are enforced inside the store's per-order lock so a racing cancel
// cannot observe a half-applied fill.
func AdminFill(ctx context.Context, store port.OrderStore, clOrdID string, qty, price decimal.Decimal) (*domain.Order, *domain.Execution, error) {
	var resultOrder *domain.Order
	var resultExec *domain.Execution

	err := store.WithLock(ctx, clOrdID, func(cur *domain.Order) (*domain.Order, []*domain.Execution, error) {
		if cur == nil {
			return nil, nil, apierr.NewNotFound("unknown ClOrdID " + clOrdID)
		}
		if !cur.Open() {
			return nil, nil, apierr.NewBadState("order is " + string(cur.Status))
		}
		if !qty.IsPositive() {
			return nil, nil, apierr.NewValidation("fill quantity must be positive")
		}
		if cur.FilledQuantity.Add(qty).GreaterThan(cur.Quantity) {
			return nil, nil, apierr.NewOverfill("fill exceeds remaining quantity")
		}
		if cur.TimeInForce == domain.TIFFOK && !cur.FilledQuantity.Add(qty).Equal(cur.Quantity) {
			return nil, nil, apierr.NewValidation("FOK order cannot be left partially filled")
		}

		next := cur.Clone()
		next.FilledQuantity = next.FilledQuantity.Add(qty)
		next.CumNotional = next.CumNotional.Add(qty.Mul(price))
		next.AvgPx = next.CumNotional.Div(next.FilledQuantity).Round(6)
		next.UpdatedAt = time.Now().UTC()

		execType := domain.ExecPartialFill
		if next.FilledQuantity.Equal(next.Quantity) {
			next.Status = domain.Filled
			execType = domain.ExecFill
		} else {
			next.Status = domain.PartiallyFilled
		}

		exec := &domain.Execution{
			ExecID:    idgen.ExecID(),
			ClOrdID:   clOrdID,
			ExecType:  execType,
			Quantity:  qty,
			Price:     price,
			CreatedAt: next.UpdatedAt,
		}

		resultOrder = next.Clone()
		resultExec = exec
		return next, []*domain.Execution{exec}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return resultOrder, resultExec, nil
}

// AdminCancel is E3.
func AdminCancel(ctx context.Context, store port.OrderStore, clOrdID string) (*domain.Order, *domain.Execution, error) {
	return adminTerminal(ctx, store, clOrdID, domain.Canceled, domain.ExecCanceled, "", func(cur *domain.Order) error {
		if !cur.Open() {
			return apierr.NewBadState("order is " + string(cur.Status))
		}
		return nil
	})
}

// AdminReject is E4: permitted only from NEW. reason, if non-empty, is
// stored on the order record and mirrored into the report's 58=Text.
func AdminReject(ctx context.Context, store port.OrderStore, clOrdID, reason string) (*domain.Order, *domain.Execution, error) {
	return adminTerminal(ctx, store, clOrdID, domain.Rejected, domain.ExecRejected, reason, func(cur *domain.Order) error {
		if cur.Status != domain.New {
			return apierr.NewBadState("order is " + string(cur.Status))
		}
		return nil
	})
}

func adminTerminal(ctx context.Context, store port.OrderStore, clOrdID string, newStatus domain.OrderStatus, execType domain.ExecType, reason string, check func(*domain.Order) error) (*domain.Order, *domain.Execution, error) {
	var resultOrder *domain.Order
	var resultExec *domain.Execution

	err := store.WithLock(ctx, clOrdID, func(cur *domain.Order) (*domain.Order, []*domain.Execution, error) {
		if cur == nil {
			return nil, nil, apierr.NewNotFound("unknown ClOrdID " + clOrdID)
		}
		if err := check(cur); err != nil {
			return nil, nil, err
		}
		next := cur.Clone()
		next.Status = newStatus
		next.UpdatedAt = time.Now().UTC()
		if reason != "" {
			next.RejectReason = reason
		}

		exec := &domain.Execution{
			ExecID:    idgen.ExecID(),
			ClOrdID:   clOrdID,
			ExecType:  execType,
			Quantity:  decimal.Zero,
			Price:     decimal.Zero,
			CreatedAt: next.UpdatedAt,
		}
		resultOrder = next.Clone()
		resultExec = exec
		return next, []*domain.Execution{exec}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return resultOrder, resultExec, nil
}

// OrderCancelRequest is E5. The returned CancelReject is non-nil exactly
// when the cancel is refused; exactly one of (order, reject) is non-nil
// on a nil error.
func OrderCancelRequest(ctx context.Context, store port.OrderStore, cancelClOrdID, origClOrdID string) (*domain.Order, *domain.Execution, *CancelReject, error) {
	var resultOrder *domain.Order
	var resultExec *domain.Execution
	var reject *CancelReject

	err := store.WithLock(ctx, origClOrdID, func(cur *domain.Order) (*domain.Order, []*domain.Execution, error) {
		if cur == nil {
			reject = &CancelReject{ClOrdID: cancelClOrdID, OrigClOrdID: origClOrdID, CxlRejReason: fix.CxlRejUnknownOrder, Text: "Order not found"}
			return nil, nil, nil
		}
		if !cur.Open() {
			reject = &CancelReject{ClOrdID: cancelClOrdID, OrigClOrdID: origClOrdID, CxlRejReason: fix.CxlRejTooLate, Text: "Order already " + string(cur.Status)}
			return nil, nil, nil
		}

		next := cur.Clone()
		next.Status = domain.Canceled
		next.UpdatedAt = time.Now().UTC()

		exec := &domain.Execution{
			ExecID:    idgen.ExecID(),
			ClOrdID:   cancelClOrdID,
			ExecType:  domain.ExecCanceled,
			Quantity:  decimal.Zero,
			Price:     decimal.Zero,
			CreatedAt: next.UpdatedAt,
		}
		resultOrder = next.Clone()
		resultExec = exec
		return next, []*domain.Execution{exec}, nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return resultOrder, resultExec, reject, nil
}

// ReplaceInput is the client-supplied content of an
// OrderCancelReplaceRequest (E6); zero-valued fields inherit from the
// original order.
type ReplaceInput struct {
	NewClOrdID  string
	OrigClOrdID string
	Quantity    decimal.Decimal
	LimitPrice  decimal.Decimal
}

// OrderCancelReplaceRequest is E6.
func OrderCancelReplaceRequest(ctx context.Context, store port.OrderStore, in ReplaceInput) (*domain.Order, *domain.Execution, *CancelReject, error) {
	var newOrder *domain.Order
	var newExec *domain.Execution
	var reject *CancelReject

	err := store.WithLock(ctx, in.OrigClOrdID, func(cur *domain.Order) (*domain.Order, []*domain.Execution, error) {
		if cur == nil {
			reject = &CancelReject{ClOrdID: in.NewClOrdID, OrigClOrdID: in.OrigClOrdID, CxlRejReason: fix.CxlRejUnknownOrder, Text: "Order not found"}
			return nil, nil, nil
		}
		if !cur.Open() {
			reject = &CancelReject{ClOrdID: in.NewClOrdID, OrigClOrdID: in.OrigClOrdID, CxlRejReason: fix.CxlRejTooLate, Text: "Order already " + string(cur.Status)}
			return nil, nil, nil
		}

		qty := cur.Quantity
		if in.Quantity.IsPositive() {
			qty = in.Quantity
		}
		if qty.LessThan(cur.FilledQuantity) {
			reject = &CancelReject{ClOrdID: in.NewClOrdID, OrigClOrdID: in.OrigClOrdID, CxlRejReason: fix.CxlRejTooLate, Text: "New quantity below filled"}
			return nil, nil, nil
		}
		price := cur.LimitPrice
		if in.LimitPrice.IsPositive() {
			price = in.LimitPrice
		}

		now := time.Now().UTC()
		replaced := cur.Clone()
		replaced.Status = domain.Replaced
		replaced.UpdatedAt = now

		next := &domain.Order{
			ClOrdID:            in.NewClOrdID,
			OrigClOrdID:        cur.ClOrdID,
			Symbol:             cur.Symbol,
			Side:               cur.Side,
			OrderType:          cur.OrderType,
			Quantity:           qty,
			LimitPrice:         price,
			TimeInForce:        cur.TimeInForce,
			FilledQuantity:     cur.FilledQuantity,
			CumNotional:        cur.CumNotional,
			AvgPx:              cur.AvgPx,
			OwningSenderCompID: cur.OwningSenderCompID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if next.FilledQuantity.Equal(next.Quantity) && next.FilledQuantity.IsPositive() {
			next.Status = domain.Filled
		} else if next.FilledQuantity.IsPositive() {
			next.Status = domain.PartiallyFilled
		} else {
			next.Status = domain.New
		}

		exec := &domain.Execution{
			ExecID:    idgen.ExecID(),
			ClOrdID:   next.ClOrdID,
			ExecType:  domain.ExecReplaced,
			Quantity:  decimal.Zero,
			Price:     decimal.Zero,
			CreatedAt: now,
		}

		newOrder = next.Clone()
		newExec = exec

		// replaced stands in for cur: it occupies the OLD ClOrdID's record
		// so future lookups of the old id find it terminal, with status
		// REPLACED (reported as OrdStatus "4", like a cancel).
		return replaced, nil, nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if reject != nil {
		return nil, nil, reject, nil
	}

	if err := store.Insert(ctx, newOrder); err != nil {
		return nil, nil, nil, err
	}
	if err := store.WithLock(ctx, newOrder.ClOrdID, func(cur *domain.Order) (*domain.Order, []*domain.Execution, error) {
		return cur, []*domain.Execution{newExec}, nil
	}); err != nil {
		return nil, nil, nil, err
	}
	return newOrder, newExec, nil, nil
}
