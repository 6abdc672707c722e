package screen

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateScreen marks an id collision at registration. This is a
	// configuration error and fatal at startup.
	ErrDuplicateScreen = errors.New("screen already registered")
	// ErrUnknownScreen marks a failed resolution at runtime. The engine
	// renders a generic fallback instead of propagating it.
	ErrUnknownScreen = errors.New("unknown screen")
)

// Registry maps screen ids to definitions. It is populated once at process
// start from the business screen catalog and treated as immutable while
// serving traffic.
type Registry struct {
	screens sync.Map
}

// NewRegistry creates an empty screen registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a screen definition.
func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, loaded := r.screens.LoadOrStore(def.ID, def); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateScreen, def.ID)
	}
	return nil
}

// Resolve looks a screen up by id.
func (r *Registry) Resolve(screenID string) (*Definition, error) {
	val, ok := r.screens.Load(screenID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScreen, screenID)
	}
	return val.(*Definition), nil
}

// Has reports whether a screen id is registered.
func (r *Registry) Has(screenID string) bool {
	_, ok := r.screens.Load(screenID)
	return ok
}

// Count returns the number of registered screens.
func (r *Registry) Count() int {
	var n int
	r.screens.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
