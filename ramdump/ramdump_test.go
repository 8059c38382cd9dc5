//go:build linux

package ramdump_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/c35s/hif/hif"
	"github.com/c35s/hif/hif/sim"
	"github.com/c35s/hif/ramdump"
	"github.com/google/go-cmp/cmp"
)

const memSize = 16 << 10

func open(t *testing.T, kind hif.Kind) *hif.Device {
	t.Helper()

	dev, err := hif.Open(hif.Config{
		Bus:      kind,
		Registry: sim.NewRegistry(sim.Options{TargetMemSize: memSize}, kind),
	})

	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(dev.Close)
	return dev
}

func TestCollect(t *testing.T) {
	dev := open(t, hif.AHB)

	fw := []byte("firmware crash signature")
	if err := sim.WriteTargetMemory(dev, 0x2000, fw); err != nil {
		t.Fatal(err)
	}

	archive, err := ramdump.Collect(dev, memSize,
		ramdump.Region{Addr: 0x2000, Size: uint32(len(fw))},
		ramdump.Region{Addr: 0, Size: 8},
	)

	if err != nil {
		t.Fatal(err)
	}

	entries, err := ramdump.Read(bytes.NewReader(archive))
	if err != nil {
		t.Fatal(err)
	}

	want := []ramdump.Entry{
		{Name: "bus", Data: []byte("ahb\n")},
		{Name: "ce", Data: []byte("sr_base=0x400000 sr_ring_size=512 reg_base=0x24000\n")},
		{Name: "mem-00002000", Data: fw},
		{Name: "mem-00000000", Data: make([]byte, 8)},
	}

	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries differ: %s", diff)
	}
}

func TestCollectNoRegions(t *testing.T) {
	dev := open(t, hif.SDIO)

	archive, err := ramdump.Collect(dev, memSize)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := ramdump.Read(bytes.NewReader(archive))
	if err != nil {
		t.Fatal(err)
	}

	want := []ramdump.Entry{
		{Name: "bus", Data: []byte("sdio\n")},
		{Name: "ce", Data: []byte("sr_base=0x0 sr_ring_size=0 reg_base=0x0\n")},
	}

	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries differ: %s", diff)
	}
}

func TestCollectBadRegion(t *testing.T) {
	dev := open(t, hif.PCI)

	bad := []ramdump.Region{
		{Addr: 0, Size: 0},
		{Addr: 0, Size: ramdump.MaxRegionSize + 1},
		{Addr: 0xffffff00, Size: 0x200},
	}

	for _, r := range bad {
		if _, err := ramdump.Collect(dev, memSize, r); !errors.Is(err, ramdump.ErrRegion) {
			t.Errorf("%v: error isn't ErrRegion: %v", r, err)
		}
	}
}

func TestCollectPastEndOfMemory(t *testing.T) {
	dev := open(t, hif.PCI)

	tail := bytes.Repeat([]byte{0xab}, 16)
	if err := sim.WriteTargetMemory(dev, memSize-16, tail); err != nil {
		t.Fatal(err)
	}

	_, err := ramdump.Collect(dev, memSize, ramdump.Region{Addr: memSize - 16, Size: 0x20})
	if !errors.Is(err, ramdump.ErrRegion) {
		t.Errorf("error isn't ErrRegion: %v", err)
	}

	archive, err := ramdump.Collect(dev, memSize, ramdump.Region{Addr: memSize - 16, Size: 16})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := ramdump.Read(bytes.NewReader(archive))
	if err != nil {
		t.Fatal(err)
	}

	last := entries[len(entries)-1]
	if diff := cmp.Diff(ramdump.Entry{Name: "mem-00003ff0", Data: tail}, last); diff != "" {
		t.Errorf("tail entry differs: %s", diff)
	}
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in   string
		want ramdump.Region
		ok   bool
	}{
		{"0x400000:0x1000", ramdump.Region{Addr: 0x400000, Size: 0x1000}, true},
		{"4096:16", ramdump.Region{Addr: 4096, Size: 16}, true},
		{"0x1000", ramdump.Region{}, false},
		{"0x1000:0", ramdump.Region{}, false},
		{"zz:0x10", ramdump.Region{}, false},
		{"0x10:0x100000000", ramdump.Region{}, false},
	}

	for _, tt := range tests {
		r, err := ramdump.ParseRegion(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("%q: unexpected error state: %v", tt.in, err)
			continue
		}

		if !tt.ok && !errors.Is(err, ramdump.ErrRegion) {
			t.Errorf("%q: error isn't ErrRegion: %v", tt.in, err)
		}

		if r != tt.want {
			t.Errorf("%q: %v != %v", tt.in, r, tt.want)
		}
	}
}
