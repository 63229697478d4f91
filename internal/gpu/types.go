package gpu

import "fmt"

// Kind is the adapter category.
type Kind int

const (
	KindUnknown Kind = iota
	KindIntegrated
	KindDiscrete
	KindVirtual
	KindCPU
)

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindIntegrated: "integrated",
	KindDiscrete:   "discrete",
	KindVirtual:    "virtual",
	KindCPU:        "cpu",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// MarshalText encodes the kind by name for JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown gpu kind %q", text)
}

// GPU is one normalized adapter record. Records are built fresh on every
// detection and are not shared between calls.
type GPU struct {
	Kind          Kind    `json:"kind" yaml:"kind"`
	Name          string  `json:"name" yaml:"name"`
	Vendor        string  `json:"vendor" yaml:"vendor"`
	DriverVersion string  `json:"driver_version" yaml:"driver_version"`
	VRAM          uint64  `json:"vram" yaml:"vram"`                                   // megabytes, 0 if unknown
	ClockSpeed    *uint32 `json:"clock_speed,omitempty" yaml:"clock_speed,omitempty"` // MHz
	Temperature   *uint32 `json:"temperature,omitempty" yaml:"temperature,omitempty"` // celsius
}
