package viz

import "context"

// Feeder bridges a running optimization to the live view. Send gives
// up as soon as the context is cancelled, so a producer can never stay
// blocked on a viewer that has already quit.
type Feeder struct {
	ctx context.Context
	ch  chan Progress
}

func NewFeeder(ctx context.Context, buffer int) *Feeder {
	return &Feeder{ctx: ctx, ch: make(chan Progress, buffer)}
}

// C is the receive side consumed by the view.
func (f *Feeder) C() <-chan Progress { return f.ch }

// Send delivers p unless the context is cancelled first.
func (f *Feeder) Send(p Progress) {
	select {
	case f.ch <- p:
	case <-f.ctx.Done():
	}
}

// Close ends the stream; the view switches to its done state. Only the
// producer may call it, and only once.
func (f *Feeder) Close() { close(f.ch) }
