package hif

// Config describes a device to attach.
type Config struct {

	// Bus selects the backend that will drive the device.
	Bus Kind

	// Registry, if set, is searched for the backend instead of DefaultRegistry.
	Registry *Registry
}

// Device is the handle upper layers use to call bus operations. Every method
// forwards directly to the backend bound at attach; none of them validate
// arguments or translate errors.
//
// Device methods must not be called after Close. Concurrent calls are safe as
// far as the backend's own operations are.
type Device struct {
	sc *Softc
}

// Open allocates a device context, attaches it to the backend for cfg.Bus
// and opens the bus. A Device is only returned if every step succeeded.
func Open(cfg Config) (*Device, error) {
	cfg = cfg.withDefaults()

	sc := NewSoftc(cfg.Registry.ContextSize(cfg.Bus))
	if err := cfg.Registry.BusOpen(sc, cfg.Bus); err != nil {
		return nil, err
	}

	return &Device{sc: sc}, nil
}

func (cfg Config) withDefaults() Config {
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry
	}

	return cfg
}

// Softc returns the device context behind d.
func (d *Device) Softc() *Softc {
	return d.sc
}

// Kind returns the interconnect the device is attached over.
func (d *Device) Kind() Kind {
	return d.sc.kind
}

// State returns the device's attach state.
func (d *Device) State() State {
	return d.sc.state
}

// Close closes the bus. The device can't be used afterwards.
func (d *Device) Close() {
	sc := d.Softc()
	sc.ops.BusClose(sc)
	sc.state = StateClosed
}

// PreventLinkdown keeps the bus awake during suspend if flag is true, or lets
// it go to sleep.
func (d *Device) PreventLinkdown(flag bool) {
	sc := d.Softc()
	sc.ops.BusPreventLinkdown(sc, flag)
}

func (d *Device) ResetSoC() {
	sc := d.Softc()
	sc.ops.ResetSoC(sc)
}

func (d *Device) Suspend() error {
	sc := d.Softc()
	return sc.ops.BusSuspend(sc)
}

func (d *Device) Resume() error {
	sc := d.Softc()
	return sc.ops.BusResume(sc)
}

// TargetSleepStateAdjust allows (sleepOK) or forbids target sleep. If
// waitForIt is set, the backend waits for the target to be awake.
func (d *Device) TargetSleepStateAdjust(sleepOK, waitForIt bool) error {
	sc := d.Softc()
	return sc.ops.TargetSleepStateAdjust(sc, sleepOK, waitForIt)
}

func (d *Device) DisableISR() {
	sc := d.Softc()
	sc.ops.DisableISR(sc)
}

func (d *Device) NoIntrs() {
	sc := d.Softc()
	sc.ops.NoIntrs(sc)
}

// EnableBus enables the bus device. dev and bdev are the parent and bus
// device handles; they are passed through to the backend untouched.
func (d *Device) EnableBus(dev, bdev any, id *BusID, typ EnableType) error {
	sc := d.Softc()
	return sc.ops.EnableBus(sc, dev, bdev, id, typ)
}

func (d *Device) DisableBus() {
	sc := d.Softc()
	sc.ops.DisableBus(sc)
}

func (d *Device) Configure() error {
	sc := d.Softc()
	return sc.ops.BusConfigure(sc)
}

// GetConfigItem reads the config item identified by opcode into buf.
func (d *Device) GetConfigItem(opcode int, buf []byte) error {
	sc := d.Softc()
	return sc.ops.GetConfigItem(sc, opcode, buf)
}

func (d *Device) SetMailboxSwap() {
	sc := d.Softc()
	sc.ops.SetMailboxSwap(sc)
}

func (d *Device) ClaimDevice() {
	sc := d.Softc()
	sc.ops.ClaimDevice(sc)
}

func (d *Device) ShutdownDevice() {
	sc := d.Softc()
	sc.ops.ShutdownDevice(sc)
}

func (d *Device) Stop() {
	sc := d.Softc()
	sc.ops.Stop(sc)
}

func (d *Device) CancelDeferredTargetSleep() {
	sc := d.Softc()
	sc.ops.CancelDeferredTargetSleep(sc)
}

func (d *Device) IRQEnable(irq int) {
	sc := d.Softc()
	sc.ops.IRQEnable(sc, irq)
}

func (d *Device) IRQDisable(irq int) {
	sc := d.Softc()
	sc.ops.IRQDisable(sc, irq)
}

func (d *Device) DumpRegisters() error {
	sc := d.Softc()
	return sc.ops.DumpRegisters(sc)
}

// DumpTargetMemory copies size bytes of target memory starting at addr into buf.
func (d *Device) DumpTargetMemory(buf []byte, addr, size uint32) {
	sc := d.Softc()
	sc.ops.DumpTargetMemory(sc, buf, addr, size)
}

// GetCEResource describes the copy-engine ring handed to the offload engine.
func (d *Device) GetCEResource() CEResource {
	sc := d.Softc()
	return sc.ops.GetCEResource(sc)
}

func (d *Device) MaskInterruptCall() {
	sc := d.Softc()
	sc.ops.MaskInterruptCall(sc)
}

// EnablePowerManagement enables bus power management once the driver is
// loaded. Packet logging may require fewer power saving features.
func (d *Device) EnablePowerManagement(pktlogEnabled bool) {
	sc := d.Softc()
	sc.ops.EnablePowerManagement(sc, pktlogEnabled)
}

// DisablePowerManagement returns bus power management to its default state.
// It isn't necessarily the reverse of EnablePowerManagement.
func (d *Device) DisablePowerManagement() {
	sc := d.Softc()
	sc.ops.DisablePowerManagement(sc)
}

func (d *Device) DisplayStats() {
	sc := d.Softc()
	sc.ops.DisplayStats(sc)
}

func (d *Device) ClearStats() {
	sc := d.Softc()
	sc.ops.ClearStats(sc)
}
