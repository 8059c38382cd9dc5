package hif

// DMAAddr is a device-visible bus address.
type DMAAddr uint64

// CEResource describes the copy-engine ring an offload engine (IPA) needs to
// drive transfers directly.
type CEResource struct {
	SRBase     DMAAddr // source ring base
	SRRingSize uint32  // source ring size in entries
	RegBase    DMAAddr // copy-engine register base
}

// BusID identifies the bus device being enabled, e.g. a PCI vendor/device pair.
type BusID struct {
	Vendor uint16
	Device uint16
}

// EnableType says why the bus is being enabled.
type EnableType int

const (
	EnableProbe  EnableType = iota // first probe of the device
	EnableReinit                   // re-enable after a reset or SSR
)

func (t EnableType) String() string {
	switch t {
	case EnableProbe:
		return "probe"
	case EnableReinit:
		return "reinit"
	default:
		return "unknown"
	}
}

// Ops is the per-device operation table. Every slot is filled in during
// attach, first by InitDefaultOps and then by the selected backend, and is
// not modified afterwards.
//
// Ops must only contain func fields; each one has an entry in slots.
type Ops struct {
	BusOpen                   func(sc *Softc, kind Kind) error
	BusClose                  func(sc *Softc)
	BusPreventLinkdown        func(sc *Softc, flag bool)
	ResetSoC                  func(sc *Softc)
	BusSuspend                func(sc *Softc) error
	BusResume                 func(sc *Softc) error
	TargetSleepStateAdjust    func(sc *Softc, sleepOK, waitForIt bool) error
	DisableISR                func(sc *Softc)
	NoIntrs                   func(sc *Softc)
	EnableBus                 func(sc *Softc, dev, bdev any, id *BusID, typ EnableType) error
	DisableBus                func(sc *Softc)
	BusConfigure              func(sc *Softc) error
	GetConfigItem             func(sc *Softc, opcode int, buf []byte) error
	SetMailboxSwap            func(sc *Softc)
	ClaimDevice               func(sc *Softc)
	ShutdownDevice            func(sc *Softc)
	Stop                      func(sc *Softc)
	CancelDeferredTargetSleep func(sc *Softc)
	IRQEnable                 func(sc *Softc, irq int)
	IRQDisable                func(sc *Softc, irq int)
	DumpRegisters             func(sc *Softc) error
	DumpTargetMemory          func(sc *Softc, buf []byte, addr, size uint32)
	GetCEResource             func(sc *Softc) CEResource
	MaskInterruptCall         func(sc *Softc)
	EnablePowerManagement     func(sc *Softc, pktlogEnabled bool)
	DisablePowerManagement    func(sc *Softc)
	DisplayStats              func(sc *Softc)
	ClearStats                func(sc *Softc)
}

type slot struct {
	name string
	set  bool
}

// slots enumerates the table in declaration order.
func (o *Ops) slots() []slot {
	return []slot{
		{"BusOpen", o.BusOpen != nil},
		{"BusClose", o.BusClose != nil},
		{"BusPreventLinkdown", o.BusPreventLinkdown != nil},
		{"ResetSoC", o.ResetSoC != nil},
		{"BusSuspend", o.BusSuspend != nil},
		{"BusResume", o.BusResume != nil},
		{"TargetSleepStateAdjust", o.TargetSleepStateAdjust != nil},
		{"DisableISR", o.DisableISR != nil},
		{"NoIntrs", o.NoIntrs != nil},
		{"EnableBus", o.EnableBus != nil},
		{"DisableBus", o.DisableBus != nil},
		{"BusConfigure", o.BusConfigure != nil},
		{"GetConfigItem", o.GetConfigItem != nil},
		{"SetMailboxSwap", o.SetMailboxSwap != nil},
		{"ClaimDevice", o.ClaimDevice != nil},
		{"ShutdownDevice", o.ShutdownDevice != nil},
		{"Stop", o.Stop != nil},
		{"CancelDeferredTargetSleep", o.CancelDeferredTargetSleep != nil},
		{"IRQEnable", o.IRQEnable != nil},
		{"IRQDisable", o.IRQDisable != nil},
		{"DumpRegisters", o.DumpRegisters != nil},
		{"DumpTargetMemory", o.DumpTargetMemory != nil},
		{"GetCEResource", o.GetCEResource != nil},
		{"MaskInterruptCall", o.MaskInterruptCall != nil},
		{"EnablePowerManagement", o.EnablePowerManagement != nil},
		{"DisablePowerManagement", o.DisablePowerManagement != nil},
		{"DisplayStats", o.DisplayStats != nil},
		{"ClearStats", o.ClearStats != nil},
	}
}

// BusOps is implemented by backends. It holds every mandatory operation, so a
// backend that fills its table with Bind can't leave a mandatory slot empty.
type BusOps interface {
	BusOpen(sc *Softc, kind Kind) error
	BusClose(sc *Softc)
	BusPreventLinkdown(sc *Softc, flag bool)
	ResetSoC(sc *Softc)
	BusSuspend(sc *Softc) error
	BusResume(sc *Softc) error
	TargetSleepStateAdjust(sc *Softc, sleepOK, waitForIt bool) error
	DisableISR(sc *Softc)
	NoIntrs(sc *Softc)
	EnableBus(sc *Softc, dev, bdev any, id *BusID, typ EnableType) error
	DisableBus(sc *Softc)
	BusConfigure(sc *Softc) error
	GetConfigItem(sc *Softc, opcode int, buf []byte) error
	SetMailboxSwap(sc *Softc)
	ClaimDevice(sc *Softc)
	ShutdownDevice(sc *Softc)
	Stop(sc *Softc)
	CancelDeferredTargetSleep(sc *Softc)
	IRQEnable(sc *Softc, irq int)
	IRQDisable(sc *Softc, irq int)
	DumpRegisters(sc *Softc) error
	DumpTargetMemory(sc *Softc, buf []byte, addr, size uint32)
	GetCEResource(sc *Softc) CEResource
	MaskInterruptCall(sc *Softc)
	EnablePowerManagement(sc *Softc, pktlogEnabled bool)
	DisablePowerManagement(sc *Softc)
}

// StatsOps is optionally implemented by backends that keep bus statistics.
type StatsOps interface {
	DisplayStats(sc *Softc)
	ClearStats(sc *Softc)
}

// Bind fills ops from b. The stats slots are only overwritten if b also
// implements StatsOps.
func Bind(ops *Ops, b BusOps) {
	ops.BusOpen = b.BusOpen
	ops.BusClose = b.BusClose
	ops.BusPreventLinkdown = b.BusPreventLinkdown
	ops.ResetSoC = b.ResetSoC
	ops.BusSuspend = b.BusSuspend
	ops.BusResume = b.BusResume
	ops.TargetSleepStateAdjust = b.TargetSleepStateAdjust
	ops.DisableISR = b.DisableISR
	ops.NoIntrs = b.NoIntrs
	ops.EnableBus = b.EnableBus
	ops.DisableBus = b.DisableBus
	ops.BusConfigure = b.BusConfigure
	ops.GetConfigItem = b.GetConfigItem
	ops.SetMailboxSwap = b.SetMailboxSwap
	ops.ClaimDevice = b.ClaimDevice
	ops.ShutdownDevice = b.ShutdownDevice
	ops.Stop = b.Stop
	ops.CancelDeferredTargetSleep = b.CancelDeferredTargetSleep
	ops.IRQEnable = b.IRQEnable
	ops.IRQDisable = b.IRQDisable
	ops.DumpRegisters = b.DumpRegisters
	ops.DumpTargetMemory = b.DumpTargetMemory
	ops.GetCEResource = b.GetCEResource
	ops.MaskInterruptCall = b.MaskInterruptCall
	ops.EnablePowerManagement = b.EnablePowerManagement
	ops.DisablePowerManagement = b.DisablePowerManagement

	if s, ok := b.(StatsOps); ok {
		ops.DisplayStats = s.DisplayStats
		ops.ClearStats = s.ClearStats
	}
}
