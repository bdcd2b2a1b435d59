package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Makepad-fr/bookshop/internal/app"
	"github.com/Makepad-fr/bookshop/internal/config"
	"github.com/Makepad-fr/bookshop/internal/logger"
	"github.com/Makepad-fr/bookshop/internal/ui"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "bookshop"
)

// Options carry the process streams so commands can be driven from tests.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Loader overrides config discovery (tests).
	Loader *config.Loader
}

// usageError marks bad invocations; Run maps it to exit code 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error { return usageError{msg: fmt.Sprintf(format, a...)} }

// env is the per-invocation state shared by the commands.
type env struct {
	opt Options
	p   ui.Printer

	configPath string
	dataDir    string
	backend    string
	logLevel   string
	logSource  bool
	theme      string
	policy     string

	cfg  *config.Config
	log  *slog.Logger
	shop *app.Shop
	logf *os.File
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	e := &env{opt: opt, p: ui.Printer{Out: opt.Stdout, Err: opt.Stderr}}
	defer e.close()

	root := e.rootCmd()
	root.SetArgs(args)
	root.SetIn(opt.Stdin)
	root.SetOut(opt.Stdout)
	root.SetErr(opt.Stderr)

	if len(args) == 0 {
		_ = root.Help()
		return 2
	}

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	e.p.Fail(err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		e.p.Hint("Run `bookshop --help` for usage.")
		return 2
	}
	return 1
}

func (e *env) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "A tiny terminal bookshop",
		Long: `bookshop - browse books, keep a cart, pay with a pretend PayPal.

The cart, catalog and login live in a durable slot: JSON files in the data
directory by default, or Redis.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown subcommand: %s", args[0])
			}
			return cmd.Help()
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	f := cmd.PersistentFlags()
	f.StringVarP(&e.configPath, "config", "c", "", "config file (YAML)")
	f.StringVar(&e.dataDir, "data-dir", "", "directory for the JSON slot files")
	f.StringVar(&e.backend, "backend", "", "slot backend: file, redis or memory")
	f.StringVar(&e.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.BoolVar(&e.logSource, "log-source", false, "add file:line to log records")
	f.StringVar(&e.theme, "theme", "", "color theme (classic, neon, mono)")
	f.StringVar(&e.policy, "checkout-policy", "", "what checkout does to the cart: keep or clear")

	cmd.AddCommand(
		e.booksCmd(),
		e.cartCmd(),
		e.checkoutCmd(),
		e.authCmd(),
		e.shopCmd(),
		e.configCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  noArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 {
		return usagef("unexpected arguments: %v", args)
	}
	return nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: bookshop %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("usage: bookshop %s", usage)
		}
		return nil
	}
}

// loadConfig resolves config files, env and flags, in that order.
func (e *env) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	loader := e.opt.Loader
	if loader == nil {
		loader = config.NewLoader(slog.New(slog.NewTextHandler(e.opt.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	}
	cfg, err := loader.Load(e.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = e.dataDir
	}
	if flags.Changed("backend") {
		cfg.Backend = e.backend
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = e.logLevel
	}
	if flags.Changed("log-source") {
		cfg.Log.Source = e.logSource
	}
	if flags.Changed("theme") {
		cfg.Theme = e.theme
	}
	if flags.Changed("checkout-policy") {
		cfg.Checkout.Policy = e.policy
	}
	if err := cfg.Validate(); err != nil {
		return nil, usageError{msg: "config: " + err.Error()}
	}
	ui.SetTheme(cfg.Theme)
	e.cfg = cfg
	return cfg, nil
}

// open loads config, sets up logging and opens the shop. Interactive mode logs
// to a file so the screen stays clean.
func (e *env) open(cmd *cobra.Command, interactive bool) (*app.Shop, error) {
	if e.shop != nil {
		return e.shop, nil
	}
	cfg, err := e.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	out := e.opt.Stderr
	if interactive && cfg.Backend == config.BackendFile {
		if err := os.MkdirAll(dataDirOrCwd(cfg.DataDir), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
		f, err := logger.OpenFile(cfg.LogPath())
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		e.logf = f
		out = f
	} else if interactive {
		out = io.Discard
	}
	e.log = logger.New(logger.Options{Level: cfg.Log.Level, Output: out, AddSource: cfg.Log.Source})

	shop, err := app.Open(cmd.Context(), cfg, e.log)
	if err != nil {
		return nil, err
	}
	e.shop = shop
	return shop, nil
}

func (e *env) close() {
	if e.shop != nil {
		if err := e.shop.Close(); err != nil && e.log != nil {
			e.log.Warn("close slot", slog.String("error", err.Error()))
		}
	}
	if e.logf != nil {
		e.logf.Close()
	}
}

func dataDirOrCwd(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
