package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/book"
	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/conversation"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/metrics"
	"github.com/hammamikhairi/recipebook/internal/storage"
)

// app carries the wired dependencies shared by every command.
type app struct {
	configPath string
	verbose    bool
	quiet      bool

	cfg      *config.Config
	log      *logger.Logger
	logFile  io.Closer
	store    domain.SlotStore
	book     *book.Book
	metrics  *metrics.Recorder
	notifier domain.Notifier

	// printFn receives notifier output. The shell points it at the UI.
	printFn conversation.PrintFunc
	out     io.Writer
}

// execute runs the command line in args and always releases what setup
// acquired, even when the command fails.
func execute(ctx context.Context, args []string, out io.Writer) error {
	a := newApp()
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newApp() *app {
	a := &app{out: os.Stdout}
	a.printFn = func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	return a
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recipebook",
		Short:         "Keep recipes and rescale them to any number of servings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./recipebook.yaml if present)")
	pf.BoolVar(&a.verbose, "verbose", false, "enable verbose/debug logging")
	pf.BoolVar(&a.quiet, "quiet", false, "disable all logging")
	pf.String("log-level", "", "log level: off, normal or verbose")
	pf.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	pf.String("store", "", "storage driver: file, memory, sqlite, postgres or s3")
	pf.String("store-dir", "", "directory for the file driver")
	pf.String("key", "", "slot the collection is stored under")

	root.AddCommand(
		newShellCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newScaleCmd(a),
		newImportCmd(a),
		newExportCmd(a),
	)
	return root
}

// print forwards to the current printFn so the notifier can be created
// before the shell UI exists.
func (a *app) print(format string, args ...interface{}) {
	a.printFn(format, args...)
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = logger.LevelVerbose
	}
	if a.quiet {
		level = logger.LevelOff
	}

	// Direct logs to a file by default so the shell stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			a.logFile = f
		}
	}
	// Third-party packages that use the standard logger follow ours.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	a.log = logger.New(level, logOut)
	if cfg.File != "" {
		a.log.Debug("config loaded from %s", cfg.File)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.Open(ctx, cfg.Store, a.log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	a.store = store
	a.metrics = metrics.New()
	a.notifier = conversation.NewCLINotifier(a.log.Named("notify"), a.print)

	a.book = book.New(store, a.log.Named("book"),
		book.WithKey(cfg.Key),
		book.WithNotifier(a.notifier),
		book.WithObserver(a.metrics),
	)
	if err := a.book.Load(ctx); err != nil && !book.IsPersistWarning(err) {
		return err
	}
	a.log.Info("recipebook ready (store=%s, key=%s, %d recipes)", cfg.Store.Driver, cfg.Key, len(a.book.Recipes()))
	return nil
}

func (a *app) close() error {
	var firstErr error
	if a.metrics != nil && a.cfg != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.log.Warn("%v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
		a.store = nil
	}
	if a.logFile != nil {
		stdlog.SetOutput(os.Stderr)
		_ = a.logFile.Close()
		a.logFile = nil
	}
	return firstErr
}

// warnPersist drops persistence warnings, which the notifier has already
// reported. Other errors pass through.
func (a *app) warnPersist(err error) error {
	if book.IsPersistWarning(err) {
		return nil
	}
	return err
}
