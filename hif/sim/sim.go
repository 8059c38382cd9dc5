//go:build linux

// Package sim implements a simulated hif backend. It keeps a shadow register
// window in the device's backend context and an mmaped target RAM, which is
// enough to drive the dispatch layer without hardware.
package sim

import (
	"encoding/binary"
	"fmt"

	"github.com/c35s/hif/hif"
)

// Options configures a simulated backend.
type Options struct {

	// TargetMemSize is the size of the simulated target RAM in bytes.
	// If TargetMemSize is 0, the target has 64K of RAM.
	TargetMemSize int

	// Stats, if set, makes the backend provide its own DisplayStats and
	// ClearStats instead of leaving the defaults in place.
	Stats bool
}

// Backend is a simulated backend for one interconnect kind.
type Backend struct {
	kind hif.Kind
	opts Options
}

const TargetMemSizeDefault = 64 << 10

// contextSize is the size of the register window for each kind.
var contextSize = map[hif.Kind]int{
	hif.PCI:  0x400,
	hif.AHB:  0x200,
	hif.SNOC: 0x200,
	hif.SDIO: 0x100,
}

// chipID is the value of regChipID for each kind.
var chipID = map[hif.Kind]uint32{
	hif.PCI:  0x003c,
	hif.AHB:  0x0056,
	hif.SNOC: 0x0042,
	hif.SDIO: 0x0050,
}

// config item opcodes understood by GetConfigItem

const (
	ConfigBusType       = 1 // uint32 hif.Kind
	ConfigChipID        = 2 // uint32 chip id
	ConfigTargetMemSize = 3 // uint32 target RAM size
)

// NumIRQ is the number of interrupt lines of a simulated device.
const NumIRQ = 12

var le = binary.LittleEndian

// New returns a simulated backend for kind. It panics if kind isn't valid.
func New(kind hif.Kind, opts Options) *Backend {
	if !kind.IsValid() {
		panic(fmt.Sprintf("sim: invalid bus %v", kind))
	}

	return &Backend{
		kind: kind,
		opts: opts.withDefaults(),
	}
}

// NewRegistry returns a registry holding a simulated backend for each of kinds.
func NewRegistry(opts Options, kinds ...hif.Kind) *hif.Registry {
	r := hif.NewRegistry()
	for _, k := range kinds {
		if err := r.Register(New(k, opts)); err != nil {
			panic(err)
		}
	}

	return r
}

func (b *Backend) Kind() hif.Kind {
	return b.kind
}

func (b *Backend) ContextSize() int {
	return contextSize[b.kind]
}

func (b *Backend) InitOps(sc *hif.Softc, ops *hif.Ops) error {
	if len(sc.Context()) < regWindowSize {
		return fmt.Errorf("sim: context too small: %d < %d", len(sc.Context()), regWindowSize)
	}

	if b.opts.Stats {
		hif.Bind(ops, statsBus{bus{b}})
	} else {
		hif.Bind(ops, bus{b})
	}

	return nil
}

func (opts Options) withDefaults() Options {
	if opts.TargetMemSize == 0 {
		opts.TargetMemSize = TargetMemSizeDefault
	}

	return opts
}

// WriteTargetMemory copies p into the simulated target RAM of dev at addr.
// dev must be attached to a simulated backend.
func WriteTargetMemory(dev *hif.Device, addr uint32, p []byte) error {
	d, ok := dev.Softc().Priv().(*device)
	if !ok {
		return fmt.Errorf("sim: %v device isn't simulated", dev.Kind())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if uint64(addr)+uint64(len(p)) > uint64(len(d.mem)) {
		return fmt.Errorf("sim: write of %d bytes at %#x exceeds target memory (%d)", len(p), addr, len(d.mem))
	}

	copy(d.mem[addr:], p)
	return nil
}
