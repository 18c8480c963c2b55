package grpcstate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"xdao.co/degreeledger/state"
	"xdao.co/degreeledger/state/registry"
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "grpc",
		Description: "gRPC world state client (talks to degree-stated)",
		Usage:       registry.UsageCLI,
		Params: []registry.Param{
			{Key: "grpc-target", Usage: "gRPC target host:port"},
			{Key: "grpc-dial-timeout", Default: "5s", Usage: "Dial timeout"},
			{Key: "grpc-timeout", Default: "0s", Usage: "Per-RPC timeout"},
			{Key: "grpc-max-msg-bytes", Default: "0", Usage: "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults"},
		},
		Open: func(cfg map[string]string) (state.Store, func() error, error) {
			target := strings.TrimSpace(cfg["grpc-target"])
			if target == "" {
				return nil, nil, fmt.Errorf("missing --grpc-target")
			}
			dialTimeout, err := time.ParseDuration(cfg["grpc-dial-timeout"])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --grpc-dial-timeout: %w", err)
			}
			timeout, err := time.ParseDuration(cfg["grpc-timeout"])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --grpc-timeout: %w", err)
			}
			maxMsg, err := strconv.Atoi(cfg["grpc-max-msg-bytes"])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --grpc-max-msg-bytes: %w", err)
			}
			client, err := Dial(target, DialOptions{Timeout: dialTimeout, MaxMsgBytes: maxMsg})
			if err != nil {
				return nil, nil, err
			}
			client.Timeout = timeout
			return client, client.Close, nil
		},
	})
}
