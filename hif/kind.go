package hif

import (
	"fmt"
	"strings"
)

// Kind identifies the interconnect a device is attached over.
type Kind uint32

const (
	InvalidKind = Kind(0)
	PCI         = Kind(1)
	AHB         = Kind(2)
	SNOC        = Kind(3)
	SDIO        = Kind(4)
)

// AllKinds lists the interconnect kinds known to the dispatch layer, whether
// or not a backend is registered for them.
var AllKinds = []Kind{PCI, AHB, SNOC, SDIO}

func (k Kind) String() string {
	switch k {
	case InvalidKind:
		return "invalid"

	case PCI:
		return "pci"

	case AHB:
		return "ahb"

	case SNOC:
		return "snoc"

	case SDIO:
		return "sdio"

	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsValid reports whether k is one of AllKinds.
func (k Kind) IsValid() bool {
	return k >= PCI && k <= SDIO
}

// ParseKind returns the kind named by s. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}

	return InvalidKind, fmt.Errorf("hif: unknown bus %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("hif: cannot marshal %v", k)
	}

	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = v
	return nil
}
