package adminapi

import "github.com/brokerfix/acceptor/internal/domain"

// OrderEvent is published after each successful admin fill, cancel or
// reject, for the supplemented dashboard/WebSocket fan-out (SPEC_FULL
// §11). State changes made over a FIX session are not published. This
// server only exposes the publish side; a dashboard process is an
// external collaborator that would call Subscribe.
type OrderEvent struct {
	Order     *domain.Order
	Execution *domain.Execution
}

// EventBus is a best-effort, non-blocking fan-out: a slow or absent
// subscriber never stalls the admin handler that published the event.
type EventBus struct {
	subscribers []chan OrderEvent
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe returns a channel that receives future OrderEvents; events
// that arrive while the channel's buffer is full are dropped (see Publish).
func (b *EventBus) Subscribe(buffer int) <-chan OrderEvent {
	ch := make(chan OrderEvent, buffer)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish fans e out to every subscriber, dropping it for any that are
// not keeping up rather than blocking the caller.
func (b *EventBus) Publish(e OrderEvent) {
	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}
