package hif

import "fmt"

// State tracks a device context through attach.
type State int

const (
	StateUninitialized State = iota
	StateDefaulted           // optional ops seeded
	StateBound               // backend filled the table
	StateVerified            // no slot is nil
	StateOpen                // backend BusOpen succeeded
	StateClosed              // BusClose called; terminal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDefaulted:
		return "defaulted"
	case StateBound:
		return "bound"
	case StateVerified:
		return "verified"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Softc is the per-device context seen by backends. It owns the device's
// operation table for its whole lifetime.
type Softc struct {
	kind  Kind
	state State
	ops   Ops
	ctx   []byte
	priv  any
}

// NewSoftc allocates a device context with size bytes of backend context.
// The size normally comes from Registry.ContextSize.
func NewSoftc(size int) *Softc {
	if size < 0 {
		size = 0
	}

	return &Softc{ctx: make([]byte, size)}
}

// Kind returns the interconnect selected at attach. It is InvalidKind until a
// backend has filled in the table.
func (sc *Softc) Kind() Kind {
	return sc.kind
}

func (sc *Softc) State() State {
	return sc.state
}

// Context returns the backend-specific context area.
func (sc *Softc) Context() []byte {
	return sc.ctx
}

// Priv returns the value stored by SetPriv.
func (sc *Softc) Priv() any {
	return sc.priv
}

// SetPriv stores backend private state in the context.
func (sc *Softc) SetPriv(v any) {
	sc.priv = v
}

// Ops returns a copy of the device's operation table.
func (sc *Softc) Ops() Ops {
	return sc.ops
}

// Device returns the upper-layer handle for sc. It fails with ErrNotOpen
// unless attach completed.
func (sc *Softc) Device() (*Device, error) {
	if sc.state != StateOpen {
		return nil, fmt.Errorf("%w: %v", ErrNotOpen, sc.state)
	}

	return &Device{sc: sc}, nil
}
