//go:build linux

package sim

import (
	"log/slog"
	"sync"

	"github.com/c35s/hif/hif"
	"golang.org/x/sys/unix"
)

// bus implements hif.BusOps for a Backend.
type bus struct {
	b *Backend
}

// statsBus is a bus that also implements hif.StatsOps.
type statsBus struct {
	bus
}

// device is the per-attach state stored in the softc.
type device struct {
	mu   sync.Mutex
	regs []byte // backend context
	mem  []byte // target RAM
}

const (
	ceSRBase   = 0x00400000
	ceSRSize   = 512
	ceRegsBase = 0x00024000
)

var (
	_ hif.BusOps   = bus{}
	_ hif.StatsOps = statsBus{}
)

func devOf(sc *hif.Softc) *device {
	return sc.Priv().(*device)
}

func (d *device) r(off int) uint32 {
	return le.Uint32(d.regs[off:])
}

func (d *device) w(off int, v uint32) {
	le.PutUint32(d.regs[off:], v)
}

func (d *device) set(off int, bits uint32) {
	d.w(off, d.r(off)|bits)
}

func (d *device) clear(off int, bits uint32) {
	d.w(off, d.r(off)&^bits)
}

func (d *device) inc(off int) {
	d.w(off, d.r(off)+1)
}

func (d *device) has(bits uint32) bool {
	return d.r(regStatus)&bits == bits
}

func (s bus) BusOpen(sc *hif.Softc, kind hif.Kind) error {
	if kind != s.b.kind {
		return unix.EINVAL
	}

	mem, err := unix.Mmap(-1, 0, s.b.opts.TargetMemSize,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_NORESERVE)

	if err != nil {
		return err
	}

	d := &device{
		regs: sc.Context(),
		mem:  mem,
	}

	clear(d.regs)
	d.w(regChipID, chipID[kind])
	d.w(regBusType, uint32(kind))

	sc.SetPriv(d)
	slog.Debug("sim: bus open", "bus", kind, "mem", len(mem))

	return nil
}

func (s bus) BusClose(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := unix.Munmap(d.mem); err != nil {
		slog.Error("sim: unmap target memory failed", "bus", s.b.kind, "err", err)
	}

	d.mem = nil
	sc.SetPriv(nil)
}

func (bus) BusPreventLinkdown(sc *hif.Softc, flag bool) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if flag {
		d.set(regStatus, statusKeepAlive)
	} else {
		d.clear(regStatus, statusKeepAlive)
	}
}

func (bus) ResetSoC(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.inc(regResetCount)
	d.clear(regStatus, statusSuspended|statusStopped|statusConfigured)
	d.w(regIntrEnable, 0)
}

func (bus) BusSuspend(sc *hif.Softc) error {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.has(statusEnabled) || d.has(statusSuspended) {
		return unix.EPERM
	}

	d.set(regStatus, statusSuspended)
	d.inc(regStatSuspend)

	return nil
}

func (bus) BusResume(sc *hif.Softc) error {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.has(statusSuspended) {
		return unix.EPERM
	}

	d.clear(regStatus, statusSuspended)
	d.inc(regStatResume)

	return nil
}

func (s bus) TargetSleepStateAdjust(sc *hif.Softc, sleepOK, waitForIt bool) error {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	// only PCI targets can be put to sleep by the host
	if s.b.kind != hif.PCI {
		return nil
	}

	if !sleepOK && waitForIt && !d.has(statusEnabled) {
		return unix.EPERM
	}

	if sleepOK {
		d.set(regStatus, statusSleepOK)
	} else {
		d.clear(regStatus, statusSleepOK)
	}

	return nil
}

func (bus) DisableISR(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.w(regIntrMask, 1)
}

func (bus) NoIntrs(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.w(regIntrEnable, 0)
}

func (bus) EnableBus(sc *hif.Softc, dev, bdev any, id *hif.BusID, typ hif.EnableType) error {
	if id == nil {
		return unix.EINVAL
	}

	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if typ == hif.EnableProbe && d.has(statusEnabled) {
		return unix.EBUSY
	}

	d.set(regStatus, statusEnabled)
	d.clear(regStatus, statusShutdown)
	d.inc(regEnableCount)

	return nil
}

func (bus) DisableBus(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.clear(regStatus, statusEnabled|statusConfigured)
}

func (bus) BusConfigure(sc *hif.Softc) error {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.has(statusEnabled) {
		return unix.EPERM
	}

	d.set(regStatus, statusConfigured)
	return nil
}

func (s bus) GetConfigItem(sc *hif.Softc, opcode int, buf []byte) error {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(buf) < 4 {
		return unix.EINVAL
	}

	switch opcode {
	case ConfigBusType:
		le.PutUint32(buf, d.r(regBusType))

	case ConfigChipID:
		le.PutUint32(buf, d.r(regChipID))

	case ConfigTargetMemSize:
		le.PutUint32(buf, uint32(len(d.mem)))

	default:
		return unix.EINVAL
	}

	return nil
}

func (bus) SetMailboxSwap(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.set(regStatus, statusMboxSwap)
}

func (bus) ClaimDevice(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.set(regStatus, statusClaimed)
}

func (bus) ShutdownDevice(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.set(regStatus, statusShutdown)
	d.clear(regStatus, statusEnabled|statusConfigured|statusClaimed)
}

func (bus) Stop(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.set(regStatus, statusStopped)
	d.w(regIntrEnable, 0)
}

func (bus) CancelDeferredTargetSleep(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.clear(regStatus, statusSleepOK)
}

func (s bus) IRQEnable(sc *hif.Softc, irq int) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if irq < 0 || irq >= NumIRQ {
		slog.Debug("sim: ignoring irq", "bus", s.b.kind, "irq", irq)
		return
	}

	d.set(regIntrEnable, 1<<irq)
	d.inc(regStatIntr)
}

func (s bus) IRQDisable(sc *hif.Softc, irq int) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	if irq < 0 || irq >= NumIRQ {
		slog.Debug("sim: ignoring irq", "bus", s.b.kind, "irq", irq)
		return
	}

	d.clear(regIntrEnable, 1<<irq)
	d.inc(regStatIntr)
}

func (s bus) DumpRegisters(sc *hif.Softc) error {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range regNames {
		slog.Info("sim: register", "bus", s.b.kind, "reg", r.name,
			"off", r.off, "val", d.r(r.off))
	}

	d.inc(regStatDump)
	return nil
}

func (s bus) DumpTargetMemory(sc *hif.Softc, buf []byte, addr, size uint32) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	// bytes past the end of target RAM are left untouched
	if uint64(addr)+uint64(size) > uint64(len(d.mem)) {
		slog.Error("sim: target memory dump out of range", "bus", s.b.kind,
			"addr", addr, "size", size, "mem", len(d.mem))
	}

	off := min(uint64(addr), uint64(len(d.mem)))
	copy(buf[:min(len(buf), int(size))], d.mem[off:])
	d.inc(regStatDump)
}

func (s bus) GetCEResource(sc *hif.Softc) hif.CEResource {
	// SDIO targets have no copy engine
	if s.b.kind == hif.SDIO {
		return hif.CEResource{}
	}

	return hif.CEResource{
		SRBase:     ceSRBase,
		SRRingSize: ceSRSize,
		RegBase:    ceRegsBase,
	}
}

func (bus) MaskInterruptCall(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.w(regIntrMask, 1)
}

func (bus) EnablePowerManagement(sc *hif.Softc, pktlogEnabled bool) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.set(regStatus, statusPM)
	if pktlogEnabled {
		d.set(regStatus, statusPktlog)
	}
}

func (bus) DisablePowerManagement(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.clear(regStatus, statusPM|statusPktlog)
}

func (s statsBus) DisplayStats(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	args := []any{"bus", s.b.kind}
	for _, st := range statNames {
		args = append(args, st.name, d.r(st.off))
	}

	slog.Info("sim: bus stats", args...)
}

func (statsBus) ClearStats(sc *hif.Softc) {
	d := devOf(sc)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, st := range statNames {
		d.w(st.off, 0)
	}
}
