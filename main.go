//go:build linux

// hif attaches the simulated devices listed in a YAML file and runs one bus
// operation on each. It needs Linux for the simulated target memory.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/c35s/hif/hif"
	"github.com/c35s/hif/hif/sim"
	"github.com/c35s/hif/hw/qm"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// op runs against one attached device.
type op func(name string, dev *hif.Device) error

var ops = map[string]op{
	"regs": func(_ string, dev *hif.Device) error {
		return dev.DumpRegisters()
	},

	"stats": func(_ string, dev *hif.Device) error {
		dev.DisplayStats()
		return nil
	},

	"suspend": func(_ string, dev *hif.Device) error {
		return dev.Suspend()
	},

	"resume": func(_ string, dev *hif.Device) error {
		if err := dev.Suspend(); err != nil {
			return err
		}

		return dev.Resume()
	},

	"ce": func(name string, dev *hif.Device) error {
		ce := dev.GetCEResource()
		fmt.Printf("%s\t%v\tsr_base=%#x sr_ring_size=%d reg_base=%#x\n",
			name, dev.Kind(), ce.SRBase, ce.SRRingSize, ce.RegBase)

		return nil
	},
}

func main() {

	var (
		configPath = flag.String("config", "devices.yaml", "read devices from `file`")
		opName     = flag.String("op", "regs", "run op on each device: "+opNames()+" or pauseq")
		qid        = flag.Uint("qid", 0, "pauseq: queue id")
		ref        = flag.Uint("ref", 0, "pauseq: software command reference")
		verbose    = flag.Bool("v", false, "log debug messages")
	)

	flag.Parse()
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, *verbose)))

	if *opName == "pauseq" {
		if err := printPauseQ(*ref, *qid); err != nil {
			fatal(err)
		}

		return
	}

	run, ok := ops[*opName]
	if !ok {
		fatal(fmt.Errorf("hif: unknown op %q", *opName))
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		fatal(err)
	}

	f, err := parseDeviceFile(data)
	if err != nil {
		fatal(err)
	}

	devs, err := attach(f)
	if err != nil {
		detach(f, devs)
		fatal(err)
	}

	for i, d := range f.Devices {
		if err := run(d.Name, devs[i]); err != nil {
			slog.Error("hif: op failed", "dev", d.Name, "bus", d.kind, "op", *opName, "err", err)
		}
	}

	detach(f, devs)
}

// attach opens, enables, and configures every device in f. The returned
// slice is parallel to f.Devices. Devices that failed to attach are nil.
func attach(f *deviceFile) ([]*hif.Device, error) {
	reg := sim.NewRegistry(sim.Options{
		TargetMemSize: f.TargetMemSize,
		Stats:         f.Stats,
	}, f.kinds...)

	slog.Debug("hif: registered backends", "kinds", reg.Kinds())

	devs := make([]*hif.Device, len(f.Devices))

	var g errgroup.Group
	for i, d := range f.Devices {
		i, d := i, d
		g.Go(func() error {
			dev, err := hif.Open(hif.Config{Bus: d.kind, Registry: reg})
			if err != nil {
				return fmt.Errorf("%s: %w", d.Name, err)
			}

			devs[i] = dev

			id := &hif.BusID{Vendor: d.Vendor, Device: d.Device}
			if err := dev.EnableBus(nil, nil, id, hif.EnableProbe); err != nil {
				return fmt.Errorf("%s: enable bus: %w", d.Name, err)
			}

			if err := dev.Configure(); err != nil {
				return fmt.Errorf("%s: configure bus: %w", d.Name, err)
			}

			slog.Debug("hif: attached", "dev", d.Name, "bus", d.kind)
			return nil
		})
	}

	return devs, g.Wait()
}

func detach(f *deviceFile, devs []*hif.Device) {
	for i, dev := range devs {
		if dev == nil {
			continue
		}

		dev.DisableBus()
		dev.Close()
		slog.Debug("hif: detached", "dev", f.Devices[i].Name)
	}
}

func printPauseQ(ref, qid uint) error {
	if ref > 0xff {
		return fmt.Errorf("hif: sw cmd ref %d doesn't fit in 8 bits", ref)
	}

	if qid > qm.MaxQID {
		return fmt.Errorf("%w: %d > %d", qm.ErrQIDRange, qid, qm.MaxQID)
	}

	cmd, err := qm.NewPauseQIDCmd(uint8(ref), uint16(qid))
	if err != nil {
		return err
	}

	buf, err := cmd.MarshalBinary()
	if err != nil {
		return err
	}

	for i, w := range cmd.Words() {
		fmt.Printf("word%d\t%#08x\n", i, w)
	}

	fmt.Printf("bytes\t% x\n", buf)
	return nil
}

// newLogHandler returns a text handler if w is a terminal and a JSON
// handler otherwise.
func newLogHandler(w *os.File, verbose bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	if term.IsTerminal(int(w.Fd())) {
		return slog.NewTextHandler(w, opts)
	}

	return slog.NewJSONHandler(w, opts)
}

func opNames() string {
	var names []string
	for name := range ops {
		names = append(names, name)
	}

	sort.Strings(names)
	return strings.Join(names, ", ")
}

func fatal(err error) {
	slog.Error("hif: fatal", "err", err)
	os.Exit(1)
}
