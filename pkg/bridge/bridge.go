// Package bridge is the runtime contract generated bindings call into.
//
// Generated code declares one *Bridge per file with Lookup and routes every
// command invocation and event subscription through it. The concrete Host is
// registered by the embedding application and resolved on each call, so
// bindings can be declared before the host exists.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrNoHost is returned when no Host is registered for a bridge's namespace
var ErrNoHost = errors.New("bridge: no host registered")

// UnlistenFunc removes a listener registered with Host.Listen
type UnlistenFunc func()

// Host dispatches commands and events across the boundary
type Host interface {
	// Invoke runs a command. A command that completes with an error payload
	// returns a *Rejection carrying it.
	Invoke(ctx context.Context, cmd string, args Value) (Value, error)

	// Listen registers handler for event and returns once the host has
	// confirmed the registration.
	Listen(ctx context.Context, event string, handler func(Value)) (UnlistenFunc, error)
}

var (
	hostsMu sync.RWMutex
	hosts   = make(map[string]Host)

	bridgesMu sync.Mutex
	bridges   = make(map[string]*Bridge)
)

// Register installs host under namespace, replacing any previous host
func Register(namespace string, host Host) {
	hostsMu.Lock()
	defer hostsMu.Unlock()
	hosts[namespace] = host
}

// Unregister removes the host installed under namespace
func Unregister(namespace string) {
	hostsMu.Lock()
	defer hostsMu.Unlock()
	delete(hosts, namespace)
}

func hostFor(namespace string) (Host, bool) {
	hostsMu.RLock()
	defer hostsMu.RUnlock()
	host, ok := hosts[namespace]
	return host, ok
}

// Bridge is a late-bound handle on the host registered under a namespace
type Bridge struct {
	namespace     string
	onDecodeError atomic.Pointer[func(error)]
}

// Lookup returns the bridge for namespace. The same namespace always yields
// the same *Bridge.
func Lookup(namespace string) *Bridge {
	bridgesMu.Lock()
	defer bridgesMu.Unlock()

	if b, ok := bridges[namespace]; ok {
		return b
	}
	b := &Bridge{namespace: namespace}
	bridges[namespace] = b
	return b
}

// Namespace returns the namespace the bridge resolves
func (b *Bridge) Namespace() string {
	return b.namespace
}

// Host returns the host currently registered for the bridge's namespace
func (b *Bridge) Host() (Host, error) {
	host, ok := hostFor(b.namespace)
	if !ok {
		return nil, fmt.Errorf("%w for namespace %q", ErrNoHost, b.namespace)
	}
	return host, nil
}

// Invoke runs cmd on the registered host
func (b *Bridge) Invoke(ctx context.Context, cmd string, args Value) (Value, error) {
	host, err := b.Host()
	if err != nil {
		return nil, err
	}
	return host.Invoke(ctx, cmd, args)
}

// Listen registers handler for event on the registered host
func (b *Bridge) Listen(ctx context.Context, event string, handler func(Value)) (UnlistenFunc, error) {
	host, err := b.Host()
	if err != nil {
		return nil, err
	}
	return host.Listen(ctx, event, handler)
}

// OnDecodeError sets the function receiving event payloads that failed to
// decode for subscriptions created with ReportDecodeErrors. A nil fn drops them.
func (b *Bridge) OnDecodeError(fn func(error)) {
	if fn == nil {
		b.onDecodeError.Store(nil)
		return
	}
	b.onDecodeError.Store(&fn)
}

func (b *Bridge) reportDecodeError(err error) {
	if fn := b.onDecodeError.Load(); fn != nil {
		(*fn)(err)
	}
}
