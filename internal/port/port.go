// Package port declares the interfaces the statemachine and dispatch
// packages depend on, so the in-memory store, the Postgres persistence
// tail, and the Redis read cache can all satisfy them independently (the
// way the teacher's internal/port package decouples core from adapter).
package port

import (
	"context"

	"github.com/brokerfix/acceptor/internal/domain"
)

// OrderStore is the authoritative order/execution ledger, component C3.
// Every mutating method is expected to serialize concurrent access to a
// single ClOrdID (spec §4: per-order locking, never a store-wide lock).
type OrderStore interface {
	Insert(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, clOrdID string) (*domain.Order, error)
	// WithLock runs fn holding the per-order lock for clOrdID, handing it
	// the current record (nil if unknown) for read-modify-write use by the
	// statemachine. fn's returned order, if non-nil, replaces the stored
	// record; fn's returned executions, if any, are appended.
	WithLock(ctx context.Context, clOrdID string, fn func(cur *domain.Order) (*domain.Order, []*domain.Execution, error)) error
	ListBySession(ctx context.Context, senderCompID string) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	Executions(ctx context.Context, clOrdID string) ([]*domain.Execution, error)
}

// PersistenceTail is the optional durability sink described in spec §9:
// every accepted state transition is mirrored here after the in-memory
// store commits, never instead of it.
type PersistenceTail interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	SaveExecution(ctx context.Context, e *domain.Execution) error
}

// ReadCache is the admin-surface read accelerator described in §10; a
// miss or disabled cache must never block a read, only skip the speedup.
type ReadCache interface {
	SetOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, clOrdID string) (*domain.Order, error)
	Invalidate(ctx context.Context, clOrdID string) error
}

// SessionRegistry lets the dispatcher find the live session owning an
// order, or learn that it has none (spec §5.3: "no live session -> commit
// state, drop the report with a logged warning").
type SessionRegistry interface {
	Lookup(senderCompID string) (Emitter, bool)
}

// Emitter is the subset of session.Session the dispatcher needs: the
// ability to push an outbound ExecutionReport or OrderCancelReject to the
// client that owns it.
type Emitter interface {
	SendExecutionReport(o *domain.Order, e *domain.Execution) error
	SendCancelReject(clOrdID, origClOrdID, cxlRejReason, text string) error
}
