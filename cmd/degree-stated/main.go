package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"xdao.co/degreeledger/config"
	"xdao.co/degreeledger/internal/log"
	"xdao.co/degreeledger/state/grpcstate"
	"xdao.co/degreeledger/state/registry"

	_ "xdao.co/degreeledger/state/leveldb"
	_ "xdao.co/degreeledger/state/redisstate"
)

func main() {
	fs := flag.NewFlagSet("degree-stated", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	configPath := fs.String("config", "", "TOML config file")
	backend := fs.String("backend", "", "State backend name (overrides config)")
	logLevel := fs.String("log-level", "", "Log level (overrides config)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	backendCfg := registry.RegisterFlags(fs, registry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range registry.List(registry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = c
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *backend != "" {
		cfg.State.Backends = []config.BackendConfig{{Name: *backend, Config: backendCfg.Config(*backend)}}
	}
	cfg.ApplyLog()

	store, closeFn, err := cfg.State.Open(registry.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closeFn()

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Error("Listen failed", "addr", *listen, "err", err)
		_ = closeFn()
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstate.RegisterWorldStateServer(s, &grpcstate.Server{Store: store})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Shutting down", "signal", sig.String())
		s.GracefulStop()
	}()

	log.Info("degree-stated listening", "addr", lis.Addr().String(), "backends", len(cfg.State.Backends))
	if err := s.Serve(lis); err != nil {
		log.Error("Serve failed", "err", err)
		_ = closeFn()
		os.Exit(1)
	}
}
