//go:build linux

// hif-ramdump attaches a simulated device, dumps its registers and target
// memory, and writes the dump to a file or sends it to a vsock collector.
// Like the simulated backend it runs on Linux only.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/c35s/hif/hif"
	"github.com/c35s/hif/hif/sim"
	"github.com/c35s/hif/ramdump"
	"github.com/mdlayher/vsock"
)

type regionList []ramdump.Region

func (l *regionList) String() string {
	var s []string
	for _, r := range *l {
		s = append(s, r.String())
	}

	return strings.Join(s, ",")
}

func (l *regionList) Set(v string) error {
	r, err := ramdump.ParseRegion(v)
	if err != nil {
		return err
	}

	*l = append(*l, r)
	return nil
}

func main() {

	var (
		bus     = flag.String("bus", "pci", "attach over `bus`: pci, ahb, snoc, or sdio")
		memSize = flag.Int("mem", sim.TargetMemSizeDefault, "set the target memory size in bytes")
		out     = flag.String("o", "ramdump.cpio", "write the dump to `file`")
		cid     = flag.Uint("cid", 0, "send the dump to vsock context `id` instead of writing a file")
		port    = flag.Uint("port", 9000, "send the dump to vsock `port`")
		regions regionList
	)

	flag.Var(&regions, "region", "dump target memory `addr:size` (repeatable)")
	flag.Parse()

	kind, err := hif.ParseKind(*bus)
	if err != nil {
		panic(err)
	}

	if len(regions) == 0 {
		regions = regionList{{Addr: 0, Size: uint32(*memSize)}}
	}

	dev, err := hif.Open(hif.Config{
		Bus:      kind,
		Registry: sim.NewRegistry(sim.Options{TargetMemSize: *memSize}, kind),
	})

	if err != nil {
		panic(err)
	}

	defer dev.Close()

	archive, err := ramdump.Collect(dev, uint32(*memSize), regions...)
	if err != nil {
		panic(err)
	}

	if *cid != 0 {
		if *cid == vsock.Local {
			slog.Warn("hif-ramdump: sending to the local context")
		}

		if err := ramdump.Send(uint32(*cid), uint32(*port), archive); err != nil {
			panic(err)
		}

		slog.Info("hif-ramdump: sent", "cid", *cid, "port", *port, "size", len(archive))
		return
	}

	if err := os.WriteFile(*out, archive, 0644); err != nil {
		panic(err)
	}

	fmt.Printf("%s: %d bytes, %d regions\n", *out, len(archive), len(regions))
}
