package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type CommandHandler func(ctx context.Context, payload []byte) error

// Dispatcher routes named commands to their handlers. Buffered operations are replayed
// through it so the buffer does not need to know about individual use cases.
type Dispatcher struct {
	handlers map[string]CommandHandler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]CommandHandler),
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload []byte) error {
	d.mu.RLock()
	handler, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("command handler %s not registered", name)
	}
	return handler(ctx, payload)
}

// Commands lists registered command names in order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
