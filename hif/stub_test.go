package hif_test

import (
	"reflect"

	"github.com/c35s/hif/hif"
)

// call records one operation seen by stubBus.
type call struct {
	Op   string
	Args []any
}

// stubBus implements hif.BusOps by recording every call.
type stubBus struct {
	calls []call

	openErr    error
	suspendErr error
	dumpErr    error
	ceres      hif.CEResource
}

func (b *stubBus) record(op string, args ...any) {
	b.calls = append(b.calls, call{Op: op, Args: args})
}

func (b *stubBus) count(op string) int {
	var n int
	for _, c := range b.calls {
		if c.Op == op {
			n++
		}
	}

	return n
}

func (b *stubBus) BusOpen(sc *hif.Softc, kind hif.Kind) error {
	b.record("BusOpen", kind)
	return b.openErr
}

func (b *stubBus) BusClose(*hif.Softc) { b.record("BusClose") }

func (b *stubBus) BusPreventLinkdown(_ *hif.Softc, flag bool) {
	b.record("BusPreventLinkdown", flag)
}

func (b *stubBus) ResetSoC(*hif.Softc) { b.record("ResetSoC") }

func (b *stubBus) BusSuspend(*hif.Softc) error {
	b.record("BusSuspend")
	return b.suspendErr
}

func (b *stubBus) BusResume(*hif.Softc) error {
	b.record("BusResume")
	return nil
}

func (b *stubBus) TargetSleepStateAdjust(_ *hif.Softc, sleepOK, waitForIt bool) error {
	b.record("TargetSleepStateAdjust", sleepOK, waitForIt)
	return nil
}

func (b *stubBus) DisableISR(*hif.Softc) { b.record("DisableISR") }

func (b *stubBus) NoIntrs(*hif.Softc) { b.record("NoIntrs") }

func (b *stubBus) EnableBus(_ *hif.Softc, dev, bdev any, id *hif.BusID, typ hif.EnableType) error {
	b.record("EnableBus", dev, bdev, id, typ)
	return nil
}

func (b *stubBus) DisableBus(*hif.Softc) { b.record("DisableBus") }

func (b *stubBus) BusConfigure(*hif.Softc) error {
	b.record("BusConfigure")
	return nil
}

func (b *stubBus) GetConfigItem(_ *hif.Softc, opcode int, buf []byte) error {
	b.record("GetConfigItem", opcode, buf)
	return nil
}

func (b *stubBus) SetMailboxSwap(*hif.Softc) { b.record("SetMailboxSwap") }

func (b *stubBus) ClaimDevice(*hif.Softc) { b.record("ClaimDevice") }

func (b *stubBus) ShutdownDevice(*hif.Softc) { b.record("ShutdownDevice") }

func (b *stubBus) Stop(*hif.Softc) { b.record("Stop") }

func (b *stubBus) CancelDeferredTargetSleep(*hif.Softc) {
	b.record("CancelDeferredTargetSleep")
}

func (b *stubBus) IRQEnable(_ *hif.Softc, irq int) { b.record("IRQEnable", irq) }

func (b *stubBus) IRQDisable(_ *hif.Softc, irq int) { b.record("IRQDisable", irq) }

func (b *stubBus) DumpRegisters(*hif.Softc) error {
	b.record("DumpRegisters")
	return b.dumpErr
}

func (b *stubBus) DumpTargetMemory(_ *hif.Softc, buf []byte, addr, size uint32) {
	b.record("DumpTargetMemory", buf, addr, size)
}

func (b *stubBus) GetCEResource(*hif.Softc) hif.CEResource {
	b.record("GetCEResource")
	return b.ceres
}

func (b *stubBus) MaskInterruptCall(*hif.Softc) { b.record("MaskInterruptCall") }

func (b *stubBus) EnablePowerManagement(_ *hif.Softc, pktlogEnabled bool) {
	b.record("EnablePowerManagement", pktlogEnabled)
}

func (b *stubBus) DisablePowerManagement(*hif.Softc) {
	b.record("DisablePowerManagement")
}

// statsBus is a stubBus that also keeps statistics.
type statsBus struct {
	*stubBus
}

func (b statsBus) DisplayStats(*hif.Softc) { b.record("DisplayStats") }

func (b statsBus) ClearStats(*hif.Softc) { b.record("ClearStats") }

// stubBackend binds bus, or runs init instead if it is set.
type stubBackend struct {
	kind hif.Kind
	size int
	bus  hif.BusOps
	init func(sc *hif.Softc, ops *hif.Ops) error
}

func (b *stubBackend) Kind() hif.Kind { return b.kind }

func (b *stubBackend) ContextSize() int { return b.size }

func (b *stubBackend) InitOps(sc *hif.Softc, ops *hif.Ops) error {
	if b.init != nil {
		return b.init(sc, ops)
	}

	hif.Bind(ops, b.bus)
	return nil
}

// slotPtrs maps each slot of ops to its code pointer, or 0 if it is nil.
func slotPtrs(ops hif.Ops) map[string]uintptr {
	v := reflect.ValueOf(ops)
	m := make(map[string]uintptr, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		var p uintptr
		if f := v.Field(i); !f.IsNil() {
			p = f.Pointer()
		}

		m[v.Type().Field(i).Name] = p
	}

	return m
}
