package adminapi

import (
	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/refprice"
)

func convertOrder(o *domain.Order, refs *refprice.Registry) OrderView {
	v := OrderView{
		ClOrdID:            o.ClOrdID,
		OrigClOrdID:        o.OrigClOrdID,
		Symbol:             o.Symbol,
		Side:               string(o.Side),
		OrderType:          string(o.OrderType),
		Quantity:           o.Quantity.String(),
		LimitPrice:         o.LimitPrice.String(),
		TimeInForce:        string(o.TimeInForce),
		Status:             string(o.Status),
		FilledQuantity:     o.FilledQuantity.String(),
		RemainingQuantity:  o.Remaining().String(),
		AvgPx:              o.AvgPx.String(),
		RejectReason:       o.RejectReason,
		OwningSenderCompID: o.OwningSenderCompID,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if refs != nil {
		if px, ok := refs.Lookup(o.Symbol); ok {
			v.RefPx = px.String()
		}
	}
	return v
}

func convertOrders(os []*domain.Order, refs *refprice.Registry) []OrderView {
	out := make([]OrderView, 0, len(os))
	for _, o := range os {
		out = append(out, convertOrder(o, refs))
	}
	return out
}

func convertExecution(e *domain.Execution) ExecutionView {
	return ExecutionView{
		ExecID:    e.ExecID,
		ClOrdID:   e.ClOrdID,
		ExecType:  string(e.ExecType),
		Quantity:  e.Quantity.String(),
		Price:     e.Price.String(),
		CreatedAt: e.CreatedAt,
	}
}

func convertExecutions(es []*domain.Execution) []ExecutionView {
	out := make([]ExecutionView, 0, len(es))
	for _, e := range es {
		out = append(out, convertExecution(e))
	}
	return out
}
