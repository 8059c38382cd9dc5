package hif

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Backend populates operation tables for one interconnect kind.
type Backend interface {

	// Kind identifies the interconnect served by the backend.
	Kind() Kind

	// ContextSize returns the size in bytes of the backend context area the
	// device allocator must reserve (see NewSoftc).
	ContextSize() int

	// InitOps fills in every mandatory slot of ops and any optional slot the
	// backend implements. An error aborts attach and is returned to the
	// caller unchanged.
	InitOps(sc *Softc, ops *Ops) error
}

// Registry maps interconnect kinds to backends.
type Registry struct {
	mu       sync.RWMutex
	backends map[Kind]Backend
}

// DefaultRegistry is used by Open when Config.Registry is nil.
var DefaultRegistry = NewRegistry()

// NewRegistry returns a registry holding the given backends.
// It panics if two of them serve the same kind.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: make(map[Kind]Backend)}
	for _, b := range backends {
		if err := r.Register(b); err != nil {
			panic(err)
		}
	}

	return r
}

// Register adds b to DefaultRegistry.
func Register(b Backend) error {
	return DefaultRegistry.Register(b)
}

// Register adds b to the registry. It fails if a backend is already
// registered for b's kind.
func (r *Registry) Register(b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := b.Kind()
	if _, ok := r.backends[k]; ok {
		return fmt.Errorf("%w: %v", ErrRegistered, k)
	}

	r.backends[k] = b
	return nil
}

// Lookup returns the backend registered for kind, or nil.
func (r *Registry) Lookup(kind Kind) Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.backends[kind]
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kk := make([]Kind, 0, len(r.backends))
	for k := range r.backends {
		kk = append(kk, k)
	}

	slices.Sort(kk)
	return kk
}

// ContextSize returns the backend context size for kind,
// or 0 if no backend is registered for it.
func (r *Registry) ContextSize(kind Kind) int {
	b := r.Lookup(kind)
	if b == nil {
		return 0
	}

	return b.ContextSize()
}

// BusOpen attaches sc to the backend registered for kind and calls the
// backend's BusOpen through the freshly bound table.
//
// If no backend is registered the error wraps ErrUnsupported and the table is
// left with defaults only. Errors from the backend's InitOps are returned
// as-is. If the backend left a slot empty the error wraps ErrIncomplete and
// BusOpen is not called.
func (r *Registry) BusOpen(sc *Softc, kind Kind) error {
	InitDefaultOps(&sc.ops)
	sc.state = StateDefaulted

	b := r.Lookup(kind)
	if b == nil {
		slog.Error("hif: bus not supported", "bus", kind)
		return fmt.Errorf("%w: %v", ErrUnsupported, kind)
	}

	if err := b.InitOps(sc, &sc.ops); err != nil {
		slog.Error("hif: bus ops init failed", "bus", kind, "err", err)
		return err
	}

	sc.kind = kind
	sc.state = StateBound

	if err := VerifyOps(&sc.ops); err != nil {
		return err
	}

	sc.state = StateVerified

	if err := sc.ops.BusOpen(sc, kind); err != nil {
		return err
	}

	sc.state = StateOpen
	return nil
}
