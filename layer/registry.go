package layer

import (
	"fmt"
	"sync"

	"github.com/tolelom/casinochain/core"
)

// Handler is the function signature every instruction module implements.
type Handler func(ctx *Context, ins core.Instruction) error

// Registry maps InstructionTags to Handlers. Thread-safe for concurrent
// registration, mirroring the registry teacher handlers self-register into.
type Registry struct {
	mu       sync.RWMutex
	handlers map[core.InstructionTag]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[core.InstructionTag]Handler)}
}

// Register associates tag with h. Panics on duplicate registration.
func (r *Registry) Register(tag core.InstructionTag, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[tag]; exists {
		panic(fmt.Sprintf("layer: handler already registered for tag %d", tag))
	}
	r.handlers[tag] = h
}

// Execute dispatches ins to the handler registered for its tag.
func (r *Registry) Execute(ctx *Context, ins core.Instruction) error {
	r.mu.RLock()
	h, ok := r.handlers[ins.Tag]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("layer: no handler registered for instruction tag %d", ins.Tag)
	}
	return h(ctx, ins)
}

// globalRegistry is the package-level singleton handler packages register
// into from their init() functions.
var globalRegistry = NewRegistry()

// Register adds h as the handler for tag in the global registry.
func Register(tag core.InstructionTag, h Handler) {
	globalRegistry.Register(tag, h)
}
