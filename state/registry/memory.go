package registry

import "xdao.co/degreeledger/state"

func init() {
	MustRegister(Backend{
		Name:        "memory",
		Description: "In-process world state (lost on exit)",
		Usage:       UsageCLI | UsageDaemon,
		Open: func(map[string]string) (state.Store, func() error, error) {
			return state.NewMemory(), nil, nil
		},
	})
}
