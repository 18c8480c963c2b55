package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"xdao.co/degreeledger/authz"
	"xdao.co/degreeledger/cidutil"
	"xdao.co/degreeledger/config"
	"xdao.co/degreeledger/degree"
	"xdao.co/degreeledger/ledger"
	"xdao.co/degreeledger/snapshot"
	"xdao.co/degreeledger/state"
	"xdao.co/degreeledger/state/registry"

	_ "xdao.co/degreeledger/state/grpcstate"
	_ "xdao.co/degreeledger/state/leveldb"
	_ "xdao.co/degreeledger/state/redisstate"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// opCommands maps subcommands onto ledger operations.
var opCommands = map[string]string{
	"init":                 "InitDegreeLedger",
	"confer":               "ConferDegree",
	"update-accreditation": "UpdateDegreeAccreditation",
	"read":                 "ReadDegree",
	"exists":               "DegreeExists",
	"university":           "GetUniversityName",
	"root":                 "WorldStateRoot",
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	if op, ok := opCommands[args[0]]; ok {
		return cmdOperation(args[0], op, args[1:], out, errOut)
	}
	switch args[0] {
	case "orgs":
		return cmdOrgs(args[1:], out, errOut)
	case "encode":
		return cmdEncode(args[1:], out, errOut)
	case "snapshot":
		return cmdSnapshot(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "backends":
		for _, b := range registry.List(registry.UsageCLI) {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "degreectl: degree ledger operator CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  degreectl init [flags]")
	fmt.Fprintln(w, "  degreectl confer [flags] <id> <college> <program> <honors> <specialization> <degreeName> <degreeLevel> <owner> <year>")
	fmt.Fprintln(w, "  degreectl update-accreditation [flags] <id> <true|false>")
	fmt.Fprintln(w, "  degreectl read [flags] <id>")
	fmt.Fprintln(w, "  degreectl exists [flags] <id>")
	fmt.Fprintln(w, "  degreectl university [flags]")
	fmt.Fprintln(w, "  degreectl root [flags]")
	fmt.Fprintln(w, "  degreectl verify [flags] <id>")
	fmt.Fprintln(w, "  degreectl orgs [--config <file>]")
	fmt.Fprintln(w, "  degreectl encode [--cid] [--check] <file>")
	fmt.Fprintln(w, "  degreectl snapshot export [flags] [--out <file>] [--canonical=false]")
	fmt.Fprintln(w, "  degreectl snapshot import [flags] [--trusted-key <key>] [--ignore-unknown] <file>")
	fmt.Fprintln(w, "  degreectl backends")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --config <file>     TOML configuration")
	fmt.Fprintln(w, "  --backend <name>    state backend, overrides the config (see degreectl backends)")
	fmt.Fprintln(w, "  --msp <id>          caller MSP ID (default $CORE_PEER_LOCALMSPID)")
	fmt.Fprintln(w, "  --log-level <lvl>   log level, overrides the config")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - flags must precede positional arguments")
	fmt.Fprintln(w, "  - the memory backend does not persist between invocations; use leveldb, redis or grpc")
	fmt.Fprintln(w, "  - contract errors are printed verbatim and exit with status 1")
}

type globals struct {
	configPath string
	backend    string
	msp        string
	logLevel   string
	backendCfg *registry.FlagValues
}

func newFlagSet(name string, errOut io.Writer) (*flag.FlagSet, *globals) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	g := &globals{}
	fs.StringVar(&g.configPath, "config", "", "TOML config file")
	fs.StringVar(&g.backend, "backend", "", "State backend (overrides config): "+strings.Join(registry.Names(registry.UsageCLI), ", "))
	fs.StringVar(&g.msp, "msp", os.Getenv("CORE_PEER_LOCALMSPID"), "Caller MSP ID")
	fs.StringVar(&g.logLevel, "log-level", "", "Log level (overrides config)")
	g.backendCfg = registry.RegisterFlags(fs, registry.UsageCLI)
	return fs, g
}

func (g *globals) load() (*config.Config, error) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	if g.configPath != "" {
		c, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.backend != "" {
		cfg.State.Backends = []config.BackendConfig{{Name: g.backend, Config: g.backendCfg.Config(g.backend)}}
	}
	cfg.ApplyLog()
	return cfg, nil
}

type session struct {
	cfg      *config.Config
	contract *ledger.Contract
	inv      ledger.Invocation
	close    func() error
}

func (g *globals) open() (*session, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	table, err := cfg.Universities()
	if err != nil {
		return nil, err
	}
	st, closeFn, err := cfg.State.Open(registry.UsageCLI)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:      cfg,
		contract: &ledger.Contract{Universities: table},
		inv:      ledger.Invocation{State: st, Caller: authz.StaticCaller(g.msp)},
		close:    closeFn,
	}, nil
}

func cmdOperation(name, opName string, args []string, out io.Writer, errOut io.Writer) int {
	op, _ := ledger.Lookup(opName)
	fs, g := newFlagSet(name, errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != len(op.Params) {
		usage := "usage: degreectl " + name + " [flags]"
		for _, p := range op.Params {
			usage += " <" + p + ">"
		}
		fmt.Fprintln(errOut, usage)
		return 2
	}

	s, err := g.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer s.close()

	result, err := s.contract.Invoke(s.inv, opName, fs.Args()...)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(result) > 0 {
		_, _ = fmt.Fprintln(out, string(result))
	}
	return 0
}

// cmdVerify compares one key across the configured replicas.
func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs, g := newFlagSet("verify", errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || fs.Arg(0) == "" {
		fmt.Fprintln(errOut, "usage: degreectl verify [flags] <id>")
		return 2
	}
	id := fs.Arg(0)

	s, err := g.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer s.close()

	rep, ok := s.inv.State.(state.Replicating)
	if !ok {
		_, _ = fmt.Fprintf(out, "%s: single backend, nothing to compare\n", id)
		return 0
	}
	diverged, err := rep.Verify(id)
	if errors.Is(err, state.ErrDiverged) {
		fmt.Fprintf(errOut, "%s: replicas diverged: %s\n", id, strings.Join(diverged, ", "))
		return 1
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "%s: %d replicas agree\n", id, len(rep.Backends))
	return 0
}

func cmdOrgs(args []string, out io.Writer, errOut io.Writer) int {
	fs, g := newFlagSet("orgs", errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := g.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	table, err := cfg.Universities()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	for _, id := range table.Organizations() {
		u, _ := table.Resolve(id)
		_, _ = fmt.Fprintf(out, "%s\t%s\n", id, u)
	}
	return 0
}

func cmdEncode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	printCID := fs.Bool("cid", false, "Print the CID of the canonical encoding instead of the encoding")
	check := fs.Bool("check", false, "Fail unless the file is already canonical")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: degreectl encode [--cid] [--check] <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read record: %v\n", err)
		return 1
	}

	var enc []byte
	if *check {
		enc, err = degree.Canonicalize(b)
	} else {
		var d degree.Degree
		if d, err = degree.Decode(b); err == nil {
			enc, err = degree.Encode(d)
		}
	}
	if err != nil {
		fmt.Fprintf(errOut, "invalid record: %v\n", err)
		return 1
	}
	if *printCID {
		_, _ = fmt.Fprintln(out, cidutil.String(enc))
		return 0
	}
	_, _ = fmt.Fprintln(out, string(enc))
	return 0
}

func cmdSnapshot(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: degreectl snapshot <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdSnapshotExport(args[1:], out, errOut)
	case "import":
		return cmdSnapshotImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown snapshot subcommand: %s\n", args[0])
		return 2
	}
}

func cmdSnapshotExport(args []string, out io.Writer, errOut io.Writer) int {
	fs, g := newFlagSet("snapshot export", errOut)
	outPath := fs.String("out", "", "Output file (default stdout)")
	canonical := fs.Bool("canonical", true, "Require every value to be a canonical degree record")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: degreectl snapshot export [flags] [--out <file>]")
		return 2
	}

	s, err := g.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer s.close()

	it, ok := s.inv.State.(state.Iterable)
	if !ok {
		fmt.Fprintln(errOut, "state backend cannot enumerate keys")
		return 1
	}
	signer, err := s.cfg.Snapshot.Signer()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	w := out
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(errOut, "create snapshot: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	m, err := snapshot.Export(w, it, snapshot.ExportOptions{Signer: signer, Canonical: *canonical})
	if err != nil {
		fmt.Fprintf(errOut, "export snapshot: %v\n", err)
		return 1
	}
	fmt.Fprintf(errOut, "exported %d entries, root %s\n", len(m.Entries), m.Root)
	return 0
}

func cmdSnapshotImport(args []string, out io.Writer, errOut io.Writer) int {
	fs, g := newFlagSet("snapshot import", errOut)
	trustedKey := fs.String("trusted-key", "", "Require a signature by this key (overrides config)")
	ignoreUnknown := fs.Bool("ignore-unknown", false, "Ignore unknown archive entries")
	canonical := fs.Bool("canonical", true, "Require every value to be a canonical degree record")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: degreectl snapshot import [flags] <file>")
		return 2
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "open snapshot: %v\n", err)
		return 1
	}
	defer f.Close()

	s, err := g.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer s.close()

	opts := snapshot.ImportOptions{
		IgnoreUnknown: *ignoreUnknown,
		TrustedKey:    s.cfg.Snapshot.TrustedKey,
		Canonical:     *canonical,
	}
	if *trustedKey != "" {
		opts.TrustedKey = *trustedKey
	}
	m, err := snapshot.Import(f, s.inv.State, opts)
	if err != nil {
		if errors.Is(err, snapshot.ErrUnsigned) {
			fmt.Fprintln(errOut, "snapshot is unsigned but a trusted key is configured")
			return 1
		}
		fmt.Fprintf(errOut, "import snapshot: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, m.Root)
	return 0
}
