// Package qm describes the fixed-format commands consumed by the hardware
// queue manager.
package qm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PauseQIDCmd stops all hardware accesses and updates to one MPDU transmit
// queue. The queue manager raises an interrupt once it has been processed.
//
//	Dword	Fields
//	0	cmd_id[3:0], reserved_0a[7:4], sw_cmd_ref[15:8], qid[29:16], reserved_0b[31:30]
//	1	reserved_1[31:0]
//	2	reserved_2[31:0]
//	3	reserved_3[31:0]
//
// Reserved fields are written as zero and ignored by the hardware.
type PauseQIDCmd struct {
	CmdID    uint8  // always PauseQIDCmdID
	SWCmdRef uint8  // opaque to hardware; maps the command back to its originator
	QID      uint16 // transmit queue index, at most MaxQID
}

const (
	PauseQIDCmdID = 0x3

	// NumDwordsPauseQIDCmd is the size of the command in 32-bit words.
	NumDwordsPauseQIDCmd = 4

	// PauseQIDCmdSize is the size of the command in bytes.
	PauseQIDCmdSize = 4 * NumDwordsPauseQIDCmd

	MaxQID = 1<<14 - 1
)

// field offsets, least significant bits and masks

const (
	PauseQIDCmd0CmdIDOffset = 0x00000000
	PauseQIDCmd0CmdIDLSB    = 0
	PauseQIDCmd0CmdIDMask   = 0x0000000f

	PauseQIDCmd0Reserved0aOffset = 0x00000000
	PauseQIDCmd0Reserved0aLSB    = 4
	PauseQIDCmd0Reserved0aMask   = 0x000000f0

	PauseQIDCmd0SWCmdRefOffset = 0x00000000
	PauseQIDCmd0SWCmdRefLSB    = 8
	PauseQIDCmd0SWCmdRefMask   = 0x0000ff00

	PauseQIDCmd0QIDOffset = 0x00000000
	PauseQIDCmd0QIDLSB    = 16
	PauseQIDCmd0QIDMask   = 0x3fff0000

	PauseQIDCmd0Reserved0bOffset = 0x00000000
	PauseQIDCmd0Reserved0bLSB    = 30
	PauseQIDCmd0Reserved0bMask   = 0xc0000000

	PauseQIDCmd1Reserved1Offset = 0x00000004
	PauseQIDCmd1Reserved1LSB    = 0
	PauseQIDCmd1Reserved1Mask   = 0xffffffff

	PauseQIDCmd2Reserved2Offset = 0x00000008
	PauseQIDCmd2Reserved2LSB    = 0
	PauseQIDCmd2Reserved2Mask   = 0xffffffff

	PauseQIDCmd3Reserved3Offset = 0x0000000c
	PauseQIDCmd3Reserved3LSB    = 0
	PauseQIDCmd3Reserved3Mask   = 0xffffffff
)

var (
	ErrQIDRange = errors.New("qm: queue id out of range")
	ErrCmdID    = errors.New("qm: wrong command id")
	ErrReserved = errors.New("qm: reserved bits set")
)

var le = binary.LittleEndian

// NewPauseQIDCmd returns a pause command for queue qid tagged with ref.
func NewPauseQIDCmd(ref uint8, qid uint16) (PauseQIDCmd, error) {
	if qid > MaxQID {
		return PauseQIDCmd{}, fmt.Errorf("%w: %d > %d", ErrQIDRange, qid, MaxQID)
	}

	return PauseQIDCmd{
		CmdID:    PauseQIDCmdID,
		SWCmdRef: ref,
		QID:      qid,
	}, nil
}

// Words returns the command as it is laid out in device memory. Fields wider
// than their bit range are truncated.
func (c PauseQIDCmd) Words() [NumDwordsPauseQIDCmd]uint32 {
	var w [NumDwordsPauseQIDCmd]uint32
	w[0] = uint32(c.CmdID)<<PauseQIDCmd0CmdIDLSB&PauseQIDCmd0CmdIDMask |
		uint32(c.SWCmdRef)<<PauseQIDCmd0SWCmdRefLSB&PauseQIDCmd0SWCmdRefMask |
		uint32(c.QID)<<PauseQIDCmd0QIDLSB&PauseQIDCmd0QIDMask

	return w
}

// MarshalBinary implements encoding.BinaryMarshaler. The result is
// PauseQIDCmdSize bytes of little-endian words.
func (c PauseQIDCmd) MarshalBinary() ([]byte, error) {
	if c.QID > MaxQID {
		return nil, fmt.Errorf("%w: %d > %d", ErrQIDRange, c.QID, MaxQID)
	}

	if c.CmdID != PauseQIDCmdID {
		return nil, fmt.Errorf("%w: %#x", ErrCmdID, c.CmdID)
	}

	data := make([]byte, PauseQIDCmdSize)
	for i, w := range c.Words() {
		le.PutUint32(data[4*i:], w)
	}

	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rejects commands
// with reserved bits set or with a command id other than PauseQIDCmdID.
func (c *PauseQIDCmd) UnmarshalBinary(data []byte) error {
	if len(data) < PauseQIDCmdSize {
		return io.ErrUnexpectedEOF
	}

	var w [NumDwordsPauseQIDCmd]uint32
	for i := range w {
		w[i] = le.Uint32(data[4*i:])
	}

	if w[0]&(PauseQIDCmd0Reserved0aMask|PauseQIDCmd0Reserved0bMask) != 0 ||
		w[1]&PauseQIDCmd1Reserved1Mask != 0 ||
		w[2]&PauseQIDCmd2Reserved2Mask != 0 ||
		w[3]&PauseQIDCmd3Reserved3Mask != 0 {
		return ErrReserved
	}

	id := uint8(w[0] & PauseQIDCmd0CmdIDMask >> PauseQIDCmd0CmdIDLSB)
	if id != PauseQIDCmdID {
		return fmt.Errorf("%w: %#x", ErrCmdID, id)
	}

	*c = PauseQIDCmd{
		CmdID:    id,
		SWCmdRef: uint8(w[0] & PauseQIDCmd0SWCmdRefMask >> PauseQIDCmd0SWCmdRefLSB),
		QID:      uint16(w[0] & PauseQIDCmd0QIDMask >> PauseQIDCmd0QIDLSB),
	}

	return nil
}
