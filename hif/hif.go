// Package hif dispatches hardware-interface bus operations to the backend of
// the interconnect a device is attached over.
//
// A device is attached with Open. Attach seeds the device's operation table
// with defaults for the optional operations, lets the backend registered for
// the requested Kind fill in the rest, verifies that no slot was left empty
// and finally calls the backend's BusOpen. The returned Device forwards every
// call straight into the bound table.
package hif

import "errors"

var (
	ErrUnsupported = errors.New("hif: unsupported interconnect")
	ErrIncomplete  = errors.New("hif: incomplete operation table")
	ErrRegistered  = errors.New("hif: backend already registered")
	ErrNotOpen     = errors.New("hif: device is not open")
)
