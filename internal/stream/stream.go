// Package stream provides the typed envelope channel used to move view
// updates from background producers to the consumer that owns the view.
// Each stream is single-producer/single-consumer and delivers envelopes in
// send order.
package stream

// Envelope carries one action from a producer to the consumer owning V.
type Envelope[V any] struct {
	// ID correlates the envelope with a query or crawl pass.
	ID uint64

	// Mode identifies the search mode the payload belongs to.
	Mode string

	// Action mutates the receiving side's owned state. It is applied by a
	// single synchronous call on the consumer side and must never touch
	// state shared with the producer.
	Action func(view V)

	// Complete is true on the last envelope the producer will send for ID.
	Complete bool
}

// Dispatch applies the envelope's action to the given view.
func (e Envelope[V]) Dispatch(view V) {
	if e.Action != nil {
		e.Action(view)
	}
}

// Sender is the producer half of a stream.
type Sender[V any] struct {
	ch   chan Envelope[V]
	done chan struct{}
}

// Receiver is the consumer half of a stream.
type Receiver[V any] struct {
	ch   chan Envelope[V]
	done chan struct{}
}

// Open creates a connected sender/receiver pair with the given channel
// capacity. A capacity of 0 makes every send rendezvous with a receive.
func Open[V any](capacity int) (*Sender[V], *Receiver[V]) {
	ch := make(chan Envelope[V], capacity)
	done := make(chan struct{})
	return &Sender[V]{ch: ch, done: done}, &Receiver[V]{ch: ch, done: done}
}

// Send delivers an envelope to the consumer, blocking while the channel is
// full. It returns false only once the receiver has been closed; that is a
// normal shutdown signal, not an error, and the producer should stop.
func (s *Sender[V]) Send(env Envelope[V]) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- env:
		return true
	case <-s.done:
		return false
	}
}

// Close marks the producing side as finished. The receiver's channel is
// closed so a consumer ranging over it terminates.
func (s *Sender[V]) Close() {
	close(s.ch)
}

// Chan exposes the receive channel for use in select loops.
func (r *Receiver[V]) Chan() <-chan Envelope[V] {
	return r.ch
}

// Recv returns the next envelope in send order. The second result is false
// once the sender has closed the stream and all envelopes were consumed.
func (r *Receiver[V]) Recv() (Envelope[V], bool) {
	env, ok := <-r.ch
	return env, ok
}

// Close detaches the consumer. Subsequent sends return false. Safe to call
// from the consumer side at any point; pending envelopes are discarded.
func (r *Receiver[V]) Close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// Handle binds a sender to one query id and mode so producers do not repeat
// envelope metadata on every send.
type Handle[V any] struct {
	sender *Sender[V]
	id     uint64
	mode   string
}

// NewHandle creates a producer handle for the given id and mode.
func NewHandle[V any](sender *Sender[V], id uint64, mode string) Handle[V] {
	return Handle[V]{sender: sender, id: id, mode: mode}
}

// ID returns the identifier associated with this handle.
func (h Handle[V]) ID() uint64 { return h.id }

// Mode returns the mode associated with this handle.
func (h Handle[V]) Mode() string { return h.mode }

// Send wraps the action in an envelope and delivers it.
func (h Handle[V]) Send(action func(view V), complete bool) bool {
	return h.sender.Send(Envelope[V]{
		ID:       h.id,
		Mode:     h.mode,
		Action:   action,
		Complete: complete,
	})
}
