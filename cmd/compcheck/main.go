package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/compcheck/internal/config"
	"github.com/danmuck/compcheck/internal/discovery"
	"github.com/danmuck/compcheck/internal/logging"
	"github.com/danmuck/compcheck/internal/observability"
	"github.com/danmuck/compcheck/internal/probe"
	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const (
	exitOK             = 0
	exitSetupFailed    = 1
	exitEndpointFailed = 2
)

func main() {
	logging.ConfigureRuntime()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath      string
	runtimeDir      string
	format          string
	metricsFile     string
	logLevel        string
	verbose         bool
	connectAttempts int
}

func run(argv []string, stdout, stderr io.Writer) int {
	cfg, sockets, err := setup(argv, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "compcheck: %v\n", err)
		return exitSetupFailed
	}

	var (
		rep      report.Report
		writeErr error
	)
	if len(sockets) == 1 && cfg.Format == report.FormatText {
		sock := sockets[0]
		writeErr = report.WriteConnecting(stdout, sock.Path)
		res := probe.Probe(sock, cfg.Session)
		if !errors.Is(res.Err, protocol.ErrConnect) {
			writeErr = errors.Join(writeErr, report.WriteConnected(stdout, res.PeerName))
		}
		rep = report.Build([]probe.EndpointResult{res})
	} else {
		rep = report.Build(probe.Run(sockets, cfg.Session))
	}

	code := exitOK
	if err := errors.Join(writeErr, report.Write(stdout, cfg.Format, rep)); err != nil {
		fmt.Fprintf(stderr, "compcheck: write report: %v\n", err)
		code = exitSetupFailed
	}
	if cfg.MetricsFile != "" {
		if err := observability.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error().Str("path", cfg.MetricsFile).Err(err).Msg("write metrics failed")
			code = exitSetupFailed
		}
	}
	if code == exitOK && rep.Failed() {
		code = exitEndpointFailed
	}
	return code
}

func setup(argv []string, stderr io.Writer) (config.Config, []discovery.Socket, error) {
	var opts options
	fs := pflag.NewFlagSet("compcheck", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: compcheck [flags] [wayland-N | /path/to/socket ...]\n\n")
		fmt.Fprintf(stderr, "Lists the globals of one compositor, or the protocols each of\nseveral compositors is missing compared to the others.\n\n")
		fs.PrintDefaults()
	}
	fs.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	fs.StringVar(&opts.runtimeDir, "runtime-dir", "", "directory holding wayland sockets (default $XDG_RUNTIME_DIR)")
	fs.StringVarP(&opts.format, "format", "f", "text", "report format: text | yaml")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus text exposition to this path")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: trace | debug | info | warn | error | off")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	fs.IntVar(&opts.connectAttempts, "connect-attempts", 1, "connect attempts per socket")
	readTimeout := fs.Duration("read-timeout", 0, "per-read deadline; 0 waits forever")
	if err := fs.Parse(argv); err != nil {
		return config.Config{}, nil, err
	}

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = loaded
	}
	if fs.Changed("runtime-dir") {
		cfg.RuntimeDir = opts.runtimeDir
	}
	if fs.Changed("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if fs.Changed("connect-attempts") {
		cfg.Session.ConnectAttempts = opts.connectAttempts
	}
	if fs.Changed("read-timeout") {
		cfg.Session.ReadTimeout = *readTimeout
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, nil, err
	}
	if cfg.LogLevel != "" && !logging.SetLevel(cfg.LogLevel) {
		return config.Config{}, nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	sockets, err := resolveSockets(cfg, fs.Args())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, sockets, nil
}

func resolveSockets(cfg config.Config, args []string) ([]discovery.Socket, error) {
	names := args
	if len(names) == 0 {
		names = cfg.Sockets
	}
	dir := cfg.RuntimeDir
	if dir == "" {
		envDir, err := discovery.RuntimeDir()
		if err != nil && needsRuntimeDir(names) {
			return nil, err
		}
		dir = envDir
	}
	if len(names) > 0 {
		sockets := discovery.Resolve(dir, names)
		if len(sockets) == 0 {
			return nil, fmt.Errorf("no sockets given")
		}
		return sockets, nil
	}
	sockets, err := discovery.FindSockets(dir)
	if err != nil {
		return nil, err
	}
	if len(sockets) == 0 {
		return nil, fmt.Errorf("no %s* sockets found in %s", discovery.SocketPrefix, dir)
	}
	log.Debug().Str("runtime_dir", dir).Int("sockets", len(sockets)).Msg("discovered sockets")
	return sockets, nil
}

func needsRuntimeDir(names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if !filepath.IsAbs(strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
