package leveldb

import (
	"fmt"
	"strconv"

	"xdao.co/degreeledger/state"
	"xdao.co/degreeledger/state/registry"
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "leveldb",
		Description: "LevelDB world state (directory)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		Params: []registry.Param{
			{Key: "leveldb-dir", Usage: "LevelDB directory"},
			{Key: "leveldb-cache-mb", Default: "16", Usage: "LevelDB cache size in MiB"},
		},
		Open: func(cfg map[string]string) (state.Store, func() error, error) {
			dir := cfg["leveldb-dir"]
			if dir == "" {
				return nil, nil, fmt.Errorf("missing --leveldb-dir")
			}
			cache, err := strconv.Atoi(cfg["leveldb-cache-mb"])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --leveldb-cache-mb: %w", err)
			}
			s, err := Open(dir, Options{CacheMB: cache})
			if err != nil {
				return nil, nil, err
			}
			return s, s.Close, nil
		},
	})
}
