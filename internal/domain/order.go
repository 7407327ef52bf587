// Package domain holds the value types shared by the order store, the state
// machine, and the FIX and admin surfaces: Order, Execution, and the small
// enums that describe their lifecycle.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type OrderType string

const (
	Market    OrderType = "MARKET"
	Limit     OrderType = "LIMIT"
	Stop      OrderType = "STOP"
	StopLimit OrderType = "STOP_LIMIT"
)

type TimeInForce string

const (
	TIFDay TimeInForce = "DAY"
	TIFGTC TimeInForce = "GTC"
	TIFIOC TimeInForce = "IOC"
	TIFFOK TimeInForce = "FOK"
)

type OrderStatus string

const (
	New             OrderStatus = "NEW"
	PartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	Filled          OrderStatus = "FILLED"
	Canceled        OrderStatus = "CANCELED"
	Rejected        OrderStatus = "REJECTED"
	// Replaced marks the old record of an E6 replace. It is handled like
	// Canceled (terminal, OrdStatus "4", LeavesQty 0 in reports), but
	// lookups of the old ClOrdID still show the status name REPLACED.
	Replaced OrderStatus = "REPLACED"
)

// Order is a single-leg equity order. See spec §3 for field-level
// invariants; Remaining() is derived from Quantity-FilledQuantity rather
// than stored independently.
type Order struct {
	ClOrdID            string
	OrigClOrdID        string // set only on orders created by an E6 replace
	Symbol             string
	Side               Side
	OrderType          OrderType
	Quantity           decimal.Decimal
	LimitPrice         decimal.Decimal // tag 44 as supplied (zero if absent); required positive only for Limit/StopLimit
	TimeInForce        TimeInForce
	Status             OrderStatus
	FilledQuantity     decimal.Decimal
	AvgPx              decimal.Decimal
	CumNotional        decimal.Decimal // Σ(qty_i·px_i) over fills; bookkeeping only, never on the wire
	RejectReason       string
	OwningSenderCompID string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Remaining returns Quantity-FilledQuantity. A Canceled order still carries
// its true Remaining here for audit; reports derived from it report
// LeavesQty=0 per spec invariant 4.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

// Terminal reports whether no further state-changing transition is legal
// (spec invariant 6).
func (o *Order) Terminal() bool {
	switch o.Status {
	case Filled, Canceled, Rejected, Replaced:
		return true
	default:
		return false
	}
}

// Open reports whether the order can still receive fills or be canceled.
func (o *Order) Open() bool {
	return o.Status == New || o.Status == PartiallyFilled
}

// Clone returns a copy safe to hand back across the order-lock boundary so
// callers never observe a record mid-mutation.
func (o *Order) Clone() *Order {
	cp := *o
	return &cp
}

// Execution is one fill or administrative event recorded against an order.
// Quantity is positive for fills and may be zero for New/Canceled/Rejected
// bookkeeping entries (spec §3).
type Execution struct {
	ExecID    string
	ClOrdID   string
	ExecType  ExecType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
}

// ExecType mirrors FIX tag 150.
type ExecType string

const (
	ExecNew         ExecType = "0"
	ExecPartialFill ExecType = "1"
	ExecFill        ExecType = "2"
	ExecCanceled    ExecType = "4"
	ExecReplaced    ExecType = "5"
	ExecRejected    ExecType = "8"
)

// IsFill reports whether an ExecType counts toward filled_quantity (spec
// invariant 1).
func (e ExecType) IsFill() bool {
	return e == ExecPartialFill || e == ExecFill
}

// OrdStatus mirrors FIX tag 39 for the subset of statuses the acceptor
// emits.
func (s OrderStatus) OrdStatus() string {
	switch s {
	case New:
		return "0"
	case PartiallyFilled:
		return "1"
	case Filled:
		return "2"
	case Canceled, Replaced:
		return "4"
	case Rejected:
		return "8"
	default:
		return ""
	}
}
