//go:build linux

package sim

// register offsets in the backend context

const (
	regChipID      = 0x000 // chip id (R)
	regBusType     = 0x004 // hif.Kind (R)
	regStatus      = 0x008 // status bits (RW)
	regIntrEnable  = 0x010 // one enable bit per irq (RW)
	regIntrMask    = 0x014 // nonzero masks all interrupts (RW)
	regResetCount  = 0x020 // number of SoC resets (R)
	regEnableCount = 0x024 // number of bus enables (R)
	regStatIntr    = 0x040 // irq enable/disable events
	regStatSuspend = 0x044 // suspends
	regStatResume  = 0x048 // resumes
	regStatDump    = 0x04c // register and memory dumps
	regWindowSize  = 0x050
)

// status bits

const (
	statusEnabled    = 1 << 0
	statusConfigured = 1 << 1
	statusSuspended  = 1 << 2
	statusClaimed    = 1 << 3
	statusStopped    = 1 << 4
	statusShutdown   = 1 << 5
	statusMboxSwap   = 1 << 6
	statusKeepAlive  = 1 << 7 // link kept up across suspend
	statusPM         = 1 << 8
	statusPktlog     = 1 << 9
	statusSleepOK    = 1 << 10
)

var regNames = []struct {
	off  int
	name string
}{
	{regChipID, "chip_id"},
	{regBusType, "bus_type"},
	{regStatus, "status"},
	{regIntrEnable, "intr_enable"},
	{regIntrMask, "intr_mask"},
	{regResetCount, "reset_count"},
	{regEnableCount, "enable_count"},
}

var statNames = []struct {
	off  int
	name string
}{
	{regStatIntr, "intr"},
	{regStatSuspend, "suspend"},
	{regStatResume, "resume"},
	{regStatDump, "dump"},
}
