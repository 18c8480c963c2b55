// Package config loads the TOML configuration shared by degreectl and
// degree-stated.
//
// Example:
//
//	[log]
//	level = "debug"
//	json = true
//
//	[state]
//	[[state.backends]]
//	name = "leveldb"
//	[state.backends.config]
//	leveldb-dir = "/var/lib/degreeledger"
//
//	[[state.backends]]
//	name = "redis"
//	id = "cache"
//	[state.backends.config]
//	redis-addr = "127.0.0.1:6379"
//
//	[snapshot]
//	signing_seed_hex = "..."
//	signing_role = "peer0"
//	alg = "dilithium3"
//
//	[organizations]
//	Org1MSP = "University of Organization 1"
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"xdao.co/degreeledger/authz"
	"xdao.co/degreeledger/internal/log"
	"xdao.co/degreeledger/keys"
	"xdao.co/degreeledger/state"
	"xdao.co/degreeledger/state/registry"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	State    StateConfig    `toml:"state"`
	Snapshot SnapshotConfig `toml:"snapshot"`

	// Organizations replaces the built-in MSP ID to university table when non-empty.
	Organizations map[string]string `toml:"organizations"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
	Color bool   `toml:"color"`
}

// StateConfig describes how to open one or more world state backends via the
// registry. Several backends are combined into a state.Replicating store that
// writes to all of them; the first backend serves reads.
//
// Callers still need to link desired backend plugins via blank imports.
type StateConfig struct {
	Backends []BackendConfig `toml:"backends"`
}

type BackendConfig struct {
	// Name is the registry backend name to open (e.g. "leveldb", "redis", "grpc").
	Name string `toml:"name"`
	// ID is an optional stable alias used in replica divergence reports.
	// If empty, Name is used.
	ID     string            `toml:"id"`
	Config map[string]string `toml:"config"`
}

type SnapshotConfig struct {
	SigningSeedHex string `toml:"signing_seed_hex"`
	// SigningRole, when set, derives the signing key from the seed per keys.DeriveNodeSeed.
	SigningRole string `toml:"signing_role"`
	Alg         string `toml:"alg"`
	HashAlg     string `toml:"hash_alg"`
	TrustedKey  string `toml:"trusted_key"`
}

// Default returns the configuration used when no file is given: info logging
// and an in-memory world state.
func Default() *Config {
	return &Config{
		Log:   LogConfig{Level: "info"},
		State: StateConfig{Backends: []BackendConfig{{Name: "memory"}}},
	}
}

// Load reads a TOML file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: empty config path")
	}
	cfg := Default()
	cfg.State.Backends = nil
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		names := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			names = append(names, k.String())
		}
		sort.Strings(names)
		return nil, fmt.Errorf("config: unknown keys: %s", strings.Join(names, ", "))
	}
	if len(cfg.State.Backends) == 0 {
		cfg.State.Backends = Default().State.Backends
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if err := c.State.Validate(); err != nil {
		return err
	}
	if _, err := c.Universities(); err != nil {
		return err
	}
	if c.Snapshot.SigningSeedHex != "" {
		if _, err := c.Snapshot.Signer(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyLog configures the process logger.
func (c *Config) ApplyLog() {
	log.SetLogger(c.Log.Level, c.Log.JSON, c.Log.Color)
}

// Universities returns the MSP table, falling back to authz.Default.
func (c *Config) Universities() (authz.Table, error) {
	if len(c.Organizations) == 0 {
		return authz.Default(), nil
	}
	t, err := authz.NewTable(c.Organizations)
	if err != nil {
		return authz.Table{}, fmt.Errorf("config: organizations: %w", err)
	}
	return t, nil
}

func (s StateConfig) Validate() error {
	if len(s.Backends) == 0 {
		return errors.New("config: at least one state backend is required")
	}
	seen := make(map[string]struct{}, len(s.Backends))
	for _, b := range s.Backends {
		if b.Name == "" {
			return errors.New("config: backend name is required")
		}
		id := b.id()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("config: duplicate backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

// Open opens the configured world state. The returned close function releases
// every backend and is never nil.
func (s StateConfig) Open(usage registry.Usage) (state.Store, func() error, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	named := make([]state.Named, 0, len(s.Backends))
	closers := make([]func() error, 0, len(s.Backends))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, b := range s.Backends {
		st, closeFn, err := registry.Open(b.Name, usage, b.Config)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("config: backend %q: %w", b.id(), err)
		}
		named = append(named, state.Named{Name: b.id(), Store: st})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
		log.Debug("Opened state backend", "name", b.Name, "id", b.id())
	}

	if len(named) == 1 {
		return named[0].Store, closeAll, nil
	}
	return state.Replicating{Backends: named}, closeAll, nil
}

// Signer returns the snapshot signer, or nil when no seed is configured.
func (s SnapshotConfig) Signer() (*keys.Signer, error) {
	if s.SigningSeedHex == "" {
		return nil, nil
	}
	seed, err := keys.ParseSeedHex(s.SigningSeedHex)
	if err != nil {
		return nil, fmt.Errorf("config: signing_seed_hex: %w", err)
	}
	if s.SigningRole != "" {
		if seed, err = keys.DeriveNodeSeed(seed, s.SigningRole); err != nil {
			return nil, fmt.Errorf("config: signing_role: %w", err)
		}
	}
	alg := s.Alg
	if alg == "" {
		alg = keys.AlgEd25519
	}
	return keys.NewSigner(alg, s.HashAlg, seed)
}
