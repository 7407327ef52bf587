// Package store implements component C3, the order/execution ledger.
// MemStore is the authoritative, in-process store; store/pg and
// store/cache provide the optional persistence tail and admin-read
// cache that sit alongside it (spec §9/§10).
package store

import (
	"context"
	"sync"

	"github.com/brokerfix/acceptor/internal/apierr"
	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/port"
)

type record struct {
	mu         sync.Mutex
	order      *domain.Order
	executions []*domain.Execution
}

// MemStore holds one record per ClOrdID behind its own mutex, so two
// orders never contend for the same lock (spec §4: "locking is scoped
// per order, never global").
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

var _ port.OrderStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]*record)}
}

func (s *MemStore) getOrCreateRecord(clOrdID string) *record {
	s.mu.RLock()
	r, ok := s.records[clOrdID]
	s.mu.RUnlock()
	if ok {
		return r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[clOrdID]; ok {
		return r
	}
	r = &record{}
	s.records[clOrdID] = r
	return r
}

func (s *MemStore) Insert(ctx context.Context, o *domain.Order) error {
	r := s.getOrCreateRecord(o.ClOrdID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.order != nil {
		return apierr.NewBadState("duplicate ClOrdID")
	}
	r.order = o.Clone()
	return nil
}

func (s *MemStore) Get(ctx context.Context, clOrdID string) (*domain.Order, error) {
	s.mu.RLock()
	r, ok := s.records[clOrdID]
	s.mu.RUnlock()
	if !ok {
		return nil, apierr.NewNotFound("unknown ClOrdID " + clOrdID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.order == nil {
		return nil, apierr.NewNotFound("unknown ClOrdID " + clOrdID)
	}
	return r.order.Clone(), nil
}

// WithLock holds the per-ClOrdID lock for the duration of fn, the single
// choke point every statemachine transition passes through.
func (s *MemStore) WithLock(ctx context.Context, clOrdID string, fn func(cur *domain.Order) (*domain.Order, []*domain.Execution, error)) error {
	r := s.getOrCreateRecord(clOrdID)
	r.mu.Lock()
	defer r.mu.Unlock()

	var cur *domain.Order
	if r.order != nil {
		cur = r.order.Clone()
	}
	next, execs, err := fn(cur)
	if err != nil {
		return err
	}
	if next != nil {
		r.order = next.Clone()
	}
	r.executions = append(r.executions, execs...)
	return nil
}

func (s *MemStore) ListBySession(ctx context.Context, senderCompID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Order
	for _, r := range s.records {
		r.mu.Lock()
		if r.order != nil && r.order.OwningSenderCompID == senderCompID {
			out = append(out, r.order.Clone())
		}
		r.mu.Unlock()
	}
	return out, nil
}

func (s *MemStore) ListAll(ctx context.Context) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Order, 0, len(s.records))
	for _, r := range s.records {
		r.mu.Lock()
		if r.order != nil {
			out = append(out, r.order.Clone())
		}
		r.mu.Unlock()
	}
	return out, nil
}

func (s *MemStore) Executions(ctx context.Context, clOrdID string) ([]*domain.Execution, error) {
	s.mu.RLock()
	r, ok := s.records[clOrdID]
	s.mu.RUnlock()
	if !ok {
		return nil, apierr.NewNotFound("unknown ClOrdID " + clOrdID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Execution, len(r.executions))
	copy(out, r.executions)
	return out, nil
}
