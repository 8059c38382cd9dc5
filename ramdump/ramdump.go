// Package ramdump collects target memory dumps from a device into a cpio
// archive and ships them to a collector.
package ramdump

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c35s/hif/hif"
	"github.com/cavaliergopher/cpio"
	"github.com/mdlayher/vsock"
)

// Region is a range of target memory.
type Region struct {
	Addr uint32
	Size uint32
}

// Entry is a file in a dump archive.
type Entry struct {
	Name string
	Data []byte
}

const (
	busEntry = "bus"
	ceEntry  = "ce"
)

// MaxRegionSize bounds the size of a single region.
const MaxRegionSize = 64 << 20

var (
	ErrRegion = errors.New("ramdump: invalid region")
	ErrDump   = errors.New("ramdump: register dump failed")
)

// ParseRegion parses a region written as addr:size. Both numbers may use a
// 0x prefix.
func ParseRegion(s string) (Region, error) {
	a, sz, ok := strings.Cut(s, ":")
	if !ok {
		return Region{}, fmt.Errorf("%w: %q: want addr:size", ErrRegion, s)
	}

	addr, err := strconv.ParseUint(a, 0, 32)
	if err != nil {
		return Region{}, fmt.Errorf("%w: %q: %w", ErrRegion, s, err)
	}

	size, err := strconv.ParseUint(sz, 0, 32)
	if err != nil {
		return Region{}, fmt.Errorf("%w: %q: %w", ErrRegion, s, err)
	}

	r := Region{Addr: uint32(addr), Size: uint32(size)}
	if err := r.validate(); err != nil {
		return Region{}, err
	}

	return r, nil
}

func (r Region) String() string {
	return fmt.Sprintf("%#x:%#x", r.Addr, r.Size)
}

func (r Region) name() string {
	return fmt.Sprintf("mem-%08x", r.Addr)
}

func (r Region) validate() error {
	if r.Size == 0 {
		return fmt.Errorf("%w: %v: empty", ErrRegion, r)
	}

	if r.Size > MaxRegionSize {
		return fmt.Errorf("%w: %v: larger than %d", ErrRegion, r, MaxRegionSize)
	}

	if uint64(r.Addr)+uint64(r.Size) > 1<<32 {
		return fmt.Errorf("%w: %v: wraps the address space", ErrRegion, r)
	}

	return nil
}

// Collect dumps the device registers, then the given target memory regions,
// and returns them as a cpio archive. The archive starts with a "bus" entry
// naming the interconnect and a "ce" entry describing the copy-engine ring.
//
// memSize is the size of the device's target RAM. Every region must lie
// below it; nothing is dumped otherwise.
func Collect(dev *hif.Device, memSize uint32, regions ...Region) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := Write(buf, dev, memSize, regions...); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Write is like Collect but writes the archive to w.
func Write(w io.Writer, dev *hif.Device, memSize uint32, regions ...Region) error {
	for _, r := range regions {
		if err := r.validate(); err != nil {
			return err
		}

		if uint64(r.Addr)+uint64(r.Size) > uint64(memSize) {
			return fmt.Errorf("%w: %v: exceeds target memory (%#x)", ErrRegion, r, memSize)
		}
	}

	if err := dev.DumpRegisters(); err != nil {
		return fmt.Errorf("%w: %w", ErrDump, err)
	}

	ce := dev.GetCEResource()
	entries := []Entry{
		{Name: busEntry, Data: []byte(dev.Kind().String() + "\n")},
		{Name: ceEntry, Data: []byte(fmt.Sprintf("sr_base=%#x sr_ring_size=%d reg_base=%#x\n",
			ce.SRBase, ce.SRRingSize, ce.RegBase))},
	}

	for _, r := range regions {
		data := make([]byte, r.Size)
		dev.DumpTargetMemory(data, r.Addr, r.Size)
		entries = append(entries, Entry{Name: r.name(), Data: data})
	}

	cw := cpio.NewWriter(w)
	for _, e := range entries {
		err := cw.WriteHeader(&cpio.Header{
			Name: e.Name,
			Mode: 0644,
			Size: int64(len(e.Data)),
		})

		if err != nil {
			return err
		}

		if _, err := cw.Write(e.Data); err != nil {
			return err
		}
	}

	return cw.Close()
}

// Read returns the entries of a dump archive in order.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry

	cr := cpio.NewReader(r)
	for {
		hdr, err := cr.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(cr)
		if err != nil {
			return nil, fmt.Errorf("ramdump: read %s: %w", hdr.Name, err)
		}

		entries = append(entries, Entry{Name: hdr.Name, Data: data})
	}

	return entries, nil
}

// Send streams archive to the collector listening on port of the VM or host
// with context ID cid. Use vsock.Host to reach the hypervisor.
func Send(cid, port uint32, archive []byte) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("ramdump: send to %d:%d: %w", cid, port, err)
		}
	}()

	conn, err := vsock.Dial(cid, port, nil)
	if err != nil {
		return err
	}

	defer conn.Close()

	if _, err := conn.Write(archive); err != nil {
		return err
	}

	return conn.CloseWrite()
}
