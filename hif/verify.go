package hif

import (
	"fmt"
	"log/slog"
	"strings"
)

// VerifyOps returns an error wrapping ErrIncomplete if any slot of ops is nil.
// Each missing slot is logged with its index and name.
func VerifyOps(ops *Ops) error {
	var missing []string
	for i, s := range ops.slots() {
		if !s.set {
			slog.Error("hif: bus op is nil", "index", i, "op", s.name)
			missing = append(missing, s.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ","))
	}

	return nil
}
