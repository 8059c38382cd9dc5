//go:build linux

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/c35s/hif/hif"
	"gopkg.in/yaml.v3"
)

// deviceFile is the contents of the file named by -config.
type deviceFile struct {

	// Backends lists the bus kinds with a registered backend.
	// If Backends is empty, every kind is registered.
	Backends []string `yaml:"backends"`

	// TargetMemSize is the simulated target RAM size of each device.
	TargetMemSize int `yaml:"target_mem_size"`

	// Stats enables the backends' own stats ops.
	Stats bool `yaml:"stats"`

	Devices []deviceConfig `yaml:"devices"`

	kinds []hif.Kind
}

type deviceConfig struct {
	Name   string `yaml:"name"`
	Bus    string `yaml:"bus"`
	Vendor uint16 `yaml:"vendor"`
	Device uint16 `yaml:"device"`

	kind hif.Kind
}

var errDeviceFile = errors.New("hif: invalid device file")

func parseDeviceFile(data []byte) (*deviceFile, error) {
	var f deviceFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", errDeviceFile, err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

func (f *deviceFile) validate() error {
	if f.TargetMemSize < 0 {
		return fmt.Errorf("%w: negative target_mem_size %d", errDeviceFile, f.TargetMemSize)
	}

	registered := make(map[hif.Kind]bool)
	for _, s := range f.Backends {
		k, err := hif.ParseKind(s)
		if err != nil {
			return fmt.Errorf("%w: backends: %w", errDeviceFile, err)
		}

		if registered[k] {
			return fmt.Errorf("%w: backends: %v listed twice", errDeviceFile, k)
		}

		registered[k] = true
		f.kinds = append(f.kinds, k)
	}

	if len(f.kinds) == 0 {
		f.kinds = hif.AllKinds
	}

	if len(f.Devices) == 0 {
		return fmt.Errorf("%w: no devices", errDeviceFile)
	}

	names := make(map[string]bool)
	for i := range f.Devices {
		d := &f.Devices[i]
		if d.Name == "" {
			return fmt.Errorf("%w: device %d has no name", errDeviceFile, i)
		}

		if names[d.Name] {
			return fmt.Errorf("%w: duplicate device %q", errDeviceFile, d.Name)
		}

		names[d.Name] = true

		k, err := hif.ParseKind(d.Bus)
		if err != nil {
			return fmt.Errorf("%w: device %q: %w", errDeviceFile, d.Name, err)
		}

		d.kind = k
	}

	return nil
}
