package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/fix"
	"github.com/brokerfix/acceptor/internal/statemachine"
)

func sendingTime(t time.Time) string {
	return t.UTC().Format("20060102-15:04:05.000")
}

// buildExecutionReport renders an ExecutionReport (MsgType 8) for o/e,
// with clOrdID/origClOrdID as they should appear on THIS report --
// callers pick these because E1 echoes the order's own id while E5/E6
// echo the cancel/replace request's id against the original.
func buildExecutionReport(clOrdID, origClOrdID string, o *domain.Order, e *domain.Execution) *fix.Builder {
	b := fix.NewBuilder(fix.MsgExecutionReport)
	b.Set(fix.TagClOrdID, clOrdID)
	if origClOrdID != "" {
		b.Set(fix.TagOrigClOrdID, origClOrdID)
	}
	b.Set(fix.TagExecID, e.ExecID)
	b.Set(fix.TagExecType, string(e.ExecType))
	b.Set(fix.TagOrdStatus, o.Status.OrdStatus())
	b.Set(fix.TagSymbol, o.Symbol)
	b.Set(fix.TagSide, sideTag(o.Side))
	b.Set(fix.TagOrderQty, o.Quantity.String())
	if e.ExecType.IsFill() {
		b.Set(fix.TagLastQty, e.Quantity.String())
		b.Set(fix.TagLastPx, e.Price.String())
	}
	b.Set(fix.TagCumQty, o.FilledQuantity.String())
	b.Set(fix.TagAvgPx, o.AvgPx.String())
	leaves := o.Remaining()
	if o.Status == domain.Canceled || o.Status == domain.Replaced {
		leaves = decimal.Zero // invariant 4: canceled/replaced reports LeavesQty=0
	}
	b.Set(fix.TagLeavesQty, leaves.String())
	if o.RejectReason != "" {
		b.Set(fix.TagText, o.RejectReason)
	}
	return b
}

func buildCancelReject(r *statemachine.CancelReject) *fix.Builder {
	b := fix.NewBuilder(fix.MsgOrderCancelReject)
	b.Set(fix.TagClOrdID, r.ClOrdID)
	b.Set(fix.TagOrigClOrdID, r.OrigClOrdID)
	b.Set(fix.TagCxlRejReason, r.CxlRejReason)
	b.Set(fix.TagText, r.Text)
	return b
}

func sideTag(s domain.Side) string {
	if s == domain.Sell {
		return fix.SideSell
	}
	return fix.SideBuy
}
