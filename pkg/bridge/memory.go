package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// CommandFunc handles one command for a MemoryHost
type CommandFunc func(ctx context.Context, args Value) (Value, error)

// MemoryHost is an in-process Host. It serves tests and tools that exercise
// generated bindings without a webview.
type MemoryHost struct {
	mu        sync.RWMutex
	commands  map[string]CommandFunc
	listeners map[string]map[uuid.UUID]func(Value)
}

// NewMemoryHost creates an empty in-process host
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		commands:  make(map[string]CommandFunc),
		listeners: make(map[string]map[uuid.UUID]func(Value)),
	}
}

// Handle installs fn as the handler for cmd
func (h *MemoryHost) Handle(cmd string, fn CommandFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands[cmd] = fn
}

// HandleFunc installs a typed handler for cmd. Its arguments are decoded from
// the invocation record and its result encoded back.
func HandleFunc[A, R any](h *MemoryHost, cmd string, fn func(ctx context.Context, args A) (R, error)) {
	h.Handle(cmd, func(ctx context.Context, raw Value) (Value, error) {
		args, err := TryDecode[A](cmd, raw)
		if err != nil {
			return nil, Reject(err.Error())
		}
		result, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		return TryEncode(cmd, result)
	})
}

// Commands returns the installed command names, sorted
func (h *MemoryHost) Commands() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the handler installed for cmd. Unknown commands are rejected
// with a string payload. Handler errors that are not already a *Rejection are
// rejected with their message.
func (h *MemoryHost) Invoke(ctx context.Context, cmd string, args Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	fn, ok := h.commands[cmd]
	h.mu.RUnlock()
	if !ok {
		return nil, Reject(fmt.Sprintf("command %s not found", cmd))
	}

	value, err := fn(ctx, args)
	if err != nil {
		var rejection *Rejection
		if errors.As(err, &rejection) {
			return nil, err
		}
		return nil, Reject(err.Error())
	}
	return value, nil
}

// Listen registers handler for event
func (h *MemoryHost) Listen(ctx context.Context, event string, handler func(Value)) (UnlistenFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New()

	h.mu.Lock()
	if h.listeners[event] == nil {
		h.listeners[event] = make(map[uuid.UUID]func(Value))
	}
	h.listeners[event][id] = handler
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners[event], id)
		if len(h.listeners[event]) == 0 {
			delete(h.listeners, event)
		}
	}, nil
}

// Emit delivers payload wrapped in an Envelope to every listener of event
// and returns once all of them have run.
func (h *MemoryHost) Emit(event string, payload any) error {
	value, err := TryEncode(event, Envelope[any]{Payload: payload})
	if err != nil {
		return err
	}
	h.EmitValue(event, value)
	return nil
}

// EmitValue delivers an already serialized value to every listener of event
func (h *MemoryHost) EmitValue(event string, value Value) {
	h.mu.RLock()
	handlers := make([]func(Value), 0, len(h.listeners[event]))
	for _, handler := range h.listeners[event] {
		handlers = append(handlers, handler)
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler(value)
	}
}

// Listeners returns the number of listeners registered for event
func (h *MemoryHost) Listeners(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[event])
}
