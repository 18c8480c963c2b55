package redisstate

import (
	"fmt"
	"strconv"

	"xdao.co/degreeledger/state"
	"xdao.co/degreeledger/state/registry"
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "redis",
		Description: "Redis world state (string keys under a prefix)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		Params: []registry.Param{
			{Key: "redis-addr", Usage: "Redis address host:port"},
			{Key: "redis-password", Usage: "Redis password"},
			{Key: "redis-db", Default: "0", Usage: "Redis database number"},
			{Key: "redis-prefix", Default: DefaultPrefix, Usage: "Key prefix"},
		},
		Open: func(cfg map[string]string) (state.Store, func() error, error) {
			if cfg["redis-addr"] == "" {
				return nil, nil, fmt.Errorf("missing --redis-addr")
			}
			db, err := strconv.Atoi(cfg["redis-db"])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --redis-db: %w", err)
			}
			s, err := Open(Options{
				Addr:     cfg["redis-addr"],
				Password: cfg["redis-password"],
				DB:       db,
				Prefix:   cfg["redis-prefix"],
			})
			if err != nil {
				return nil, nil, err
			}
			return s, s.Close, nil
		},
	})
}
