package hif

// InitDefaultOps seeds the optional slots of ops with no-op implementations.
// It runs before the backend is selected, so a backend that doesn't keep
// statistics still leaves a usable table behind.
//
// BusClose is cleared: it has no sane default and must be set by the backend.
func InitDefaultOps(ops *Ops) {
	ops.BusClose = nil

	ops.DisplayStats = dummyDisplayStats
	ops.ClearStats = dummyClearStats
}

func dummyDisplayStats(*Softc) {}

func dummyClearStats(*Softc) {}
