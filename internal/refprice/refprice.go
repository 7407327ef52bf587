// Package refprice is the advisory symbol->last-price registry
// supplemented from the original broker's Stock model. It is context
// for the admin caller deciding what price to post a fill at; it never
// drives order validation or execution pricing itself.
package refprice

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Registry holds the last known reference price per symbol.
type Registry struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewRegistry() *Registry {
	return &Registry{prices: make(map[string]decimal.Decimal)}
}

// Seed loads the initial universe, e.g. parsed from a CSV stock list by
// an external collaborator (spec §1: CSV-based stock seeding is out of
// scope for the acceptor itself).
func (r *Registry) Seed(prices map[string]decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for symbol, px := range prices {
		r.prices[symbol] = px
	}
}

// Update records a fresh reference price, as an external price-refresh
// process would call after polling a market-data source.
func (r *Registry) Update(symbol string, px decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices[symbol] = px
}

// Lookup returns the last known reference price for symbol, if any.
func (r *Registry) Lookup(symbol string) (decimal.Decimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	px, ok := r.prices[symbol]
	return px, ok
}

// Symbols returns the known universe. The admin HTTP surface has no
// route that exposes it.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.prices))
	for s := range r.prices {
		out = append(out, s)
	}
	return out
}
