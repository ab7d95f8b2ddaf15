/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: layout.go
Description: Anchor-relative field offsets and the ordered fallback chains built from
them. Chains are plain (probe, extract) lists tried in priority order; the first
candidate whose probe succeeds is used and the rest are ignored.
*/

package decoder

import (
	"fmt"
	"strings"
)

// ServiceSlot pairs a service name offset with the offset of its file path list
type ServiceSlot struct {
	Name  int `json:"name" yaml:"name"`
	Paths int `json:"paths" yaml:"paths"`
}

// Layout holds anchor-relative offsets of every configuration field.
// The values are tied to historical builds and have no derivation.
type Layout struct {
	C2Address     int           `json:"c2_address" yaml:"c2_address"`
	C2URL         int           `json:"c2_url" yaml:"c2_url"`
	RegistryPaths []int         `json:"registry_paths" yaml:"registry_paths"`
	CommandLine   int           `json:"command_line" yaml:"command_line"`
	ServiceSlots  []ServiceSlot `json:"service_slots" yaml:"service_slots"`
}

// EnfalLayout is the reference Enfal configuration layout
var EnfalLayout = Layout{
	C2Address:     0x2E8,
	C2URL:         0xE8,
	RegistryPaths: []int{0x13B0, 0x13C0, 0x13D0},
	CommandLine:   0x14A2,
	ServiceSlots: []ServiceSlot{
		{Name: 0x14B0, Paths: 0x14C0},
		{Name: 0x14C0, Paths: 0x14D0},
		{Name: 0x14D0, Paths: 0x14E0},
	},
}

const (
	registrySentinel    = 'S'
	commandLineSentinel = 'C'
)

// candidate is one entry of a fallback chain
type candidate[T any] struct {
	name    string
	probe   func(buf []byte, base int) bool
	extract func(buf []byte, base int) T
}

// firstMatch evaluates chain in order and extracts from the first candidate whose
// probe succeeds. It never backtracks once a candidate is chosen.
func firstMatch[T any](chain []candidate[T], buf []byte, base int) (T, string, bool) {
	for _, c := range chain {
		if c.probe(buf, base) {
			return c.extract(buf, base), c.name, true
		}
	}
	var zero T
	return zero, "", false
}

// serviceConfig is the outcome of the service/file path chain
type serviceConfig struct {
	name  string
	paths []string
}

// registryChain tries each registry path offset gated on the 'S' sentinel
func registryChain(l Layout) []candidate[string] {
	chain := make([]candidate[string], 0, len(l.RegistryPaths))
	for _, off := range l.RegistryPaths {
		chain = append(chain, candidate[string]{
			name: fmt.Sprintf("registry@%#x", off),
			probe: func(buf []byte, base int) bool {
				return probeEquals(buf, base+off, registrySentinel)
			},
			extract: func(buf []byte, base int) string {
				return ReadBoundedString(buf, base+off, MaxStringSize)
			},
		})
	}
	return chain
}

// serviceChain builds the command line candidate followed by each service slot
func serviceChain(l Layout) []candidate[serviceConfig] {
	chain := make([]candidate[serviceConfig], 0, len(l.ServiceSlots)+1)

	cmdOff := l.CommandLine
	chain = append(chain, candidate[serviceConfig]{
		name: fmt.Sprintf("cmdline@%#x", cmdOff),
		probe: func(buf []byte, base int) bool {
			return probeEquals(buf, base+cmdOff, commandLineSentinel)
		},
		extract: func(buf []byte, base int) serviceConfig {
			list := ReadDelimitedList(buf, base+cmdOff, MaxStringSize, ListDelimiter)
			// Only the executable of the first entry is kept; arguments and
			// later entries are dropped.
			exe, _, _ := strings.Cut(list[0], " ")
			return serviceConfig{paths: []string{exe}}
		},
	})

	for _, slot := range l.ServiceSlots {
		chain = append(chain, candidate[serviceConfig]{
			name: fmt.Sprintf("service@%#x", slot.Name),
			probe: func(buf []byte, base int) bool {
				return probeNotEquals(buf, base+slot.Name, 0x00)
			},
			extract: func(buf []byte, base int) serviceConfig {
				return serviceConfig{
					name:  ReadBoundedString(buf, base+slot.Name, MaxStringSize),
					paths: ReadDelimitedList(buf, base+slot.Paths, MaxStringSize, ListDelimiter),
				}
			},
		})
	}
	return chain
}
