// Package registry is the build-time plugin table of world state backends.
package registry

import (
	"flag"
	"fmt"
	"sort"
	"sync"

	"xdao.co/degreeledger/state"
)

// Param is one configuration key a backend reads. Every Param is also exposed
// as a command-line flag of the same name.
type Param struct {
	Key     string
	Default string
	Usage   string
}

// Backend opens a state.Store from a string configuration map.
//
// Backends typically register themselves in init():
//
//	registry.MustRegister(registry.Backend{ ... })
type Backend struct {
	Name        string
	Description string
	Usage       Usage
	Params      []Param

	// Open constructs the store. Keys missing from cfg take their Param default.
	// It returns an optional close function.
	Open func(cfg map[string]string) (state.Store, func() error, error)
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
)

// Register registers a backend.
func Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("registry: backend name is required")
	}
	if b.Open == nil {
		return fmt.Errorf("registry: backend %q missing Open", b.Name)
	}
	if b.Usage == 0 {
		return fmt.Errorf("registry: backend %q missing Usage", b.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("registry: backend %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// List returns backends matching usage, sorted by name.
func List(usage Usage) []Backend {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns backend names matching usage, sorted.
func Names(usage Usage) []string {
	bs := List(usage)
	n := make([]string, 0, len(bs))
	for _, b := range bs {
		n = append(n, b.Name)
	}
	return n
}

// Open opens the named backend if it exists and matches usage.
func Open(name string, usage Usage, cfg map[string]string) (state.Store, func() error, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}
	if !b.Usage.allows(usage) {
		return nil, nil, fmt.Errorf("backend %q not supported in this binary", name)
	}
	return b.Open(withDefaults(b, cfg))
}

func withDefaults(b Backend, cfg map[string]string) map[string]string {
	out := make(map[string]string, len(b.Params))
	for _, p := range b.Params {
		out[p.Key] = p.Default
	}
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

// FlagValues holds the backend parameters bound to a flag.FlagSet.
type FlagValues struct {
	values map[string]*string
}

// RegisterFlags adds one string flag per backend parameter for all backends
// matching usage. A key shared by several backends is registered once.
//
// This enables single-pass flag parsing (Go's flag package rejects unknown flags).
func RegisterFlags(fs *flag.FlagSet, usage Usage) *FlagValues {
	v := &FlagValues{values: map[string]*string{}}
	for _, b := range List(usage) {
		for _, p := range b.Params {
			if _, dup := v.values[p.Key]; dup {
				continue
			}
			usageText := fmt.Sprintf("%s (for --backend=%s)", p.Usage, b.Name)
			v.values[p.Key] = fs.String(p.Key, p.Default, usageText)
		}
	}
	return v
}

// Config returns the flag values relevant to the named backend.
func (v *FlagValues) Config(name string) map[string]string {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	out := map[string]string{}
	if !ok || v == nil {
		return out
	}
	for _, p := range b.Params {
		if s, ok := v.values[p.Key]; ok && s != nil {
			out[p.Key] = *s
		}
	}
	return out
}
