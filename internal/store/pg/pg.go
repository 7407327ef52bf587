// Package pg is the optional persistence tail (spec §9): every accepted
// order or execution that MemStore commits is mirrored here, adapted
// from the teacher's internal/adapter/pg package to the order/execution
// schema this domain actually has.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/port"
)

var _ port.PersistenceTail = (*Tail)(nil)

type Tail struct {
	pool *pgxpool.Pool
}

// New opens a pool against dsn. Call Close when the acceptor shuts down.
func New(ctx context.Context, dsn string) (*Tail, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &Tail{pool: pool}, nil
}

func (t *Tail) Close() {
	if t.pool != nil {
		t.pool.Close()
	}
}

func (t *Tail) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("pg: nil order")
	}
	_, err := t.pool.Exec(ctx, `
INSERT INTO orders(cl_ord_id, orig_cl_ord_id, symbol, side, order_type, quantity, limit_price,
                    time_in_force, status, filled_quantity, avg_px, reject_reason,
                    owning_sender_comp_id, created_at, updated_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (cl_ord_id) DO UPDATE SET
  status = EXCLUDED.status,
  filled_quantity = EXCLUDED.filled_quantity,
  avg_px = EXCLUDED.avg_px,
  reject_reason = EXCLUDED.reject_reason,
  updated_at = EXCLUDED.updated_at
`, o.ClOrdID, o.OrigClOrdID, o.Symbol, string(o.Side), string(o.OrderType), o.Quantity, o.LimitPrice,
		string(o.TimeInForce), string(o.Status), o.FilledQuantity, o.AvgPx, o.RejectReason,
		o.OwningSenderCompID, o.CreatedAt, o.UpdatedAt)
	return err
}

func (t *Tail) SaveExecution(ctx context.Context, e *domain.Execution) error {
	if e == nil {
		return errors.New("pg: nil execution")
	}
	_, err := t.pool.Exec(ctx, `
INSERT INTO executions(exec_id, cl_ord_id, exec_type, quantity, price, created_at)
VALUES($1,$2,$3,$4,$5,$6)
ON CONFLICT (exec_id) DO NOTHING
`, e.ExecID, e.ClOrdID, string(e.ExecType), e.Quantity, e.Price, e.CreatedAt)
	return err
}
