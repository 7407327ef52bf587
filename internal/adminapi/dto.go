package adminapi

import "time"

// SubmitFillRequest is the body for POST /orders/:cl_ord_id/fill.
type SubmitFillRequest struct {
	Quantity string `json:"quantity" binding:"required"`
	Price    string `json:"price" binding:"required"`
}

// AdminRejectRequest is the body for POST /orders/:cl_ord_id/reject.
// Reason is optional and, when set, is mirrored into the order's
// reject_reason and the report's 58=Text.
type AdminRejectRequest struct {
	Reason string `json:"reason"`
}

// OrderView is the read-only projection of domain.Order returned by
// list_orders/get_order.
type OrderView struct {
	ClOrdID            string    `json:"cl_ord_id"`
	OrigClOrdID        string    `json:"orig_cl_ord_id,omitempty"`
	Symbol             string    `json:"symbol"`
	Side               string    `json:"side"`
	OrderType          string    `json:"order_type"`
	Quantity            string   `json:"quantity"`
	LimitPrice          string   `json:"limit_price,omitempty"`
	TimeInForce          string  `json:"time_in_force"`
	Status               string  `json:"status"`
	FilledQuantity        string `json:"filled_quantity"`
	RemainingQuantity     string `json:"remaining_quantity"`
	AvgPx                 string `json:"avg_px"`
	RefPx                  string `json:"ref_px,omitempty"`
	RejectReason           string `json:"reject_reason,omitempty"`
	OwningSenderCompID      string `json:"owning_sender_comp_id"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// ExecutionView is the read-only projection of domain.Execution returned
// by list_executions.
type ExecutionView struct {
	ExecID    string    `json:"exec_id"`
	ClOrdID   string    `json:"cl_ord_id"`
	ExecType  string    `json:"exec_type"`
	Quantity  string    `json:"quantity"`
	Price     string    `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
}
