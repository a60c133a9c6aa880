package bridge

import (
	"context"
	"runtime"
	"sync"
)

// SubscribeOption configures Subscribe
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	reportDecodeErrors bool
}

// ReportDecodeErrors sends payloads that fail to decode to the bridge's
// OnDecodeError function instead of panicking in the delivering goroutine.
func ReportDecodeErrors() SubscribeOption {
	return func(o *subscribeOptions) {
		o.reportDecodeErrors = true
	}
}

// Subscription is a live event listener. It is released by Close or, if
// never closed, once it becomes unreachable.
type Subscription[T any] struct {
	event   string
	state   *listenerState
	cleanup runtime.Cleanup
}

// listenerState is shared between the subscription and the handler held by
// the host. It must not reference the Subscription itself.
type listenerState struct {
	mu       sync.Mutex
	idle     *sync.Cond
	inFlight int
	closed   bool
	once     sync.Once
	unlisten UnlistenFunc
}

func newListenerState() *listenerState {
	s := &listenerState{}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// deliver runs fn unless the listener has been released. The lock is not
// held while fn runs, so a delivery nested inside fn never waits on release.
func (s *listenerState) deliver(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		if s.inFlight == 0 {
			s.idle.Broadcast()
		}
		s.mu.Unlock()
	}()
	fn()
}

// release stops new deliveries, waits for in-flight ones, then unlistens
// exactly once
func (s *listenerState) release() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		for s.inFlight > 0 {
			s.idle.Wait()
		}
		unlisten := s.unlisten
		s.mu.Unlock()

		if unlisten != nil {
			unlisten()
		}
	})
}

// Subscribe registers handler for event on b. Each incoming value is decoded
// as an Envelope[T] and its payload passed to handler. Subscribe returns once
// the host has confirmed the registration; cancelling ctx afterwards has no
// effect on the subscription.
func Subscribe[T any](ctx context.Context, b *Bridge, event string, handler func(T), opts ...SubscribeOption) (*Subscription[T], error) {
	var options subscribeOptions
	for _, opt := range opts {
		opt(&options)
	}

	state := newListenerState()
	wrapped := func(value Value) {
		state.deliver(func() {
			envelope, err := TryDecode[Envelope[T]](event, value)
			if err != nil {
				if !options.reportDecodeErrors {
					panic(err)
				}
				b.reportDecodeError(err)
				return
			}
			handler(envelope.Payload)
		})
	}

	unlisten, err := b.Listen(ctx, event, wrapped)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	state.unlisten = unlisten
	state.mu.Unlock()

	sub := &Subscription[T]{event: event, state: state}
	sub.cleanup = runtime.AddCleanup(sub, func(st *listenerState) { st.release() }, state)
	return sub, nil
}

// Event returns the subscribed event name
func (s *Subscription[T]) Event() string {
	return s.event
}

// Close unlistens. It waits for deliveries already running and no delivery
// starts after it returns; deliveries attempted while it waits, including
// ones nested inside a running handler, are dropped. Calling Close more than
// once is a no-op. Close must not be called from the subscription's own
// handler; use go sub.Close() there instead.
func (s *Subscription[T]) Close() {
	s.cleanup.Stop()
	s.state.release()
}
