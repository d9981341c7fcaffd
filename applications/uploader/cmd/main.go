package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/donmikel/sheetdrop/applications/uploader/config"
)

// exitCode is a process termination code.
type exitCode int

const (
	// exitSuccess is code for successful program termination.
	exitSuccess exitCode = 0
	// exitFailure is code for unsuccessful program termination.
	exitFailure exitCode = 1
)

const defaultConfigPath = "config.yml"

var (
	// version is the service version from git tag.
	version = ""
)

func main() {
	os.Exit(int(gracefulMain()))
}

type options struct {
	configPath string
	logLevel   string
	logger     log.Logger
}

// gracefulMain releases resources gracefully upon termination.
// When we call os.Exit defer statements do not run resulting in unclean process shutdown.
func gracefulMain() exitCode {
	opts := &options{logger: log.NewNopLogger()}

	root := &cobra.Command{
		Use:           "sheetdrop",
		Short:         "Upload spreadsheets and CSV files through presigned URLs",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			opts.logger = newLogger(opts.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "path to the config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		workflowsCmd(opts),
		uploadCmd(opts),
		syncCmd(opts),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return exitFailure
	}

	return exitSuccess
}

func versionString() string {
	if version == "" {
		return "dev"
	}

	return version
}

func newLogger(lvl string) log.Logger {
	var logger log.Logger
	{
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		logger = level.NewFilter(logger, levelOption(lvl))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	return logger
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func (o *options) loadConfig() (config.Uploader, error) {
	level.Debug(o.logger).Log("configPath", o.configPath)

	cfg, err := config.Parse(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("cannot parse config: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (o *options) workflow(cfg config.Uploader, name string) (config.Workflow, error) {
	w, ok := cfg.Workflow(name)
	if !ok {
		return w, fmt.Errorf("unknown workflow %q", name)
	}

	return w, nil
}

// runActors runs fn next to a signal watcher. SIGINT or SIGTERM cancels the
// context passed to fn.
func runActors(ctx context.Context, logger log.Logger, fn func(ctx context.Context) error) (err error) {
	defer monitorPanic(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)

		select {
		case <-ctx.Done():
			return nil
		case s := <-sig:
			level.Info(logger).Log("msg", "terminating...", "signal", s)
			return fmt.Errorf("signal received: %s", s)
		}
	})

	group.Go(func() error {
		defer cancel()
		return fn(ctx)
	})

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		level.Debug(logger).Log("msg", fmt.Sprintf("actors stopped with err: %v", err))
	}

	return err
}

// monitorPanic monitors panics and reports them somewhere (e.g. logs, ...).
func monitorPanic(logger log.Logger) {
	if rec := recover(); rec != nil {
		err := fmt.Sprintf("panic: %v \n stack trace: %s", rec, debug.Stack())
		level.Error(logger).Log("err", err)
		panic(err)
	}
}
