package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/donmikel/sheetdrop/applications/issuer"
	"github.com/donmikel/sheetdrop/applications/issuer/adapters/inmemory"
	"github.com/donmikel/sheetdrop/applications/issuer/adapters/s3"
	"github.com/donmikel/sheetdrop/applications/issuer/config"
	"github.com/donmikel/sheetdrop/applications/issuer/handlers/http"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
	"github.com/donmikel/sheetdrop/applications/issuer/metrics"
	"github.com/donmikel/sheetdrop/applications/issuer/services"
)

// exitCode is a process termination code.
type exitCode int

// Possible process termination codes are listed below.
const (
	// exitSuccess is code for successful program termination.
	exitSuccess exitCode = 0
	// exitFailure is code for unsuccessful program termination.
	exitFailure exitCode = 1
)

// Time to let in-flight uploads drain after a termination signal.
const preStopWait = 2 * time.Second

// Shutdown timeout for http servers.
const shutdownTimeout = 5 * time.Second

var (
	// version is the service version from git tag.
	version = ""
)

func main() {
	os.Exit(int(gracefulMain()))
}

// gracefulMain releases resources gracefully upon termination.
// When we call os.Exit defer statements do not run resulting in unclean process shutdown.
// nolint
func gracefulMain() exitCode {
	var logger log.Logger
	{
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "config.yml", "path to the config file")
	v := fs.Bool("v", false, "Show version")

	err := fs.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		return exitSuccess
	}
	if err != nil {
		logger.Log("msg", "parsing cli flags failed", "err", err)
		return exitFailure
	}

	if *v {
		if version == "" {
			level.Error(logger).Log("msg", "version not set")
		} else {
			level.Info(logger).Log("version", version)
		}

		return exitSuccess
	}

	logger.Log("configPath", *configPath)

	cfg, err := config.Parse(*configPath)
	if err != nil {
		logger.Log("msg", "cannot parse service config", "err", err)
		return exitFailure
	}

	err = cfg.Validate()
	if err != nil {
		logger.Log("msg", "config validation failed", "err", err)
		return exitFailure
	}

	// It's nice to be able to see panics in Logs, hence we monitor for panics after
	// logger has been bootstrapped.
	defer monitorPanic(logger)
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	var objectMetaStorage interfaces.ObjectMetaStorage
	{
		objectMetaStorage = inmemory.NewObjectMetaStorage()
	}

	var volumeManager interfaces.VolumeManager
	{
		volumeManager = inmemory.NewVolumeManager(logger)
	}

	var (
		presigner interfaces.Presigner
		grants    interfaces.GrantStore
	)
	switch cfg.Storage.Mode {
	case config.ModeS3:
		presigner, err = s3.NewPresigner(ctx, cfg.S3)
		if err != nil {
			level.Error(logger).Log("msg", "error creating s3 presigner", "err", err)
			return exitFailure
		}
	default:
		for i := 0; i < cfg.Storage.Volumes; i++ {
			volumeURL := fmt.Sprintf("volume_%d", i)
			err = volumeManager.AddVolume(ctx, volumeURL, inmemory.NewVolume(volumeURL, cfg.Storage.VolumeSize, logger))
			if err != nil {
				level.Error(logger).Log("msg", "error adding volume",
					"err", err,
				)

				return exitFailure
			}
		}

		grants = inmemory.NewGrantStore(cfg.Storage.GrantTTL, time.Now)
		presigner, err = inmemory.NewPresigner(cfg.API.PublicURL, grants)
		if err != nil {
			level.Error(logger).Log("msg", "error creating presigner", "err", err)
			return exitFailure
		}
	}

	var uploadService issuer.UploadService
	{
		uploadService = services.NewService(objectMetaStorage, volumeManager, presigner, grants, m, logger,
			services.WithKeyPrefix(cfg.Storage.KeyPrefix),
		)
	}

	level.Info(logger).Log("msg", "issuer starting",
		"addr", cfg.API.HTTPAddr,
		"mode", cfg.Storage.Mode,
	)

	hServer := http.NewHTTPServer(cfg.API, uploadService, registry, m, logger)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-sig:
			level.Info(logger).Log("msg", fmt.Sprintf("signal received (waiting %v before terminating): %v", preStopWait, s))
			time.Sleep(preStopWait)
			level.Info(logger).Log("msg", "terminating...")

			return fmt.Errorf("signal received: %s", s)
		}
	})

	group.Go(func() error {
		if err := hServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("listen and server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		level.Info(logger).Log("msg", "graceful shutdown of server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = hServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		return ctx.Err()
	})

	if err = group.Wait(); err != nil {
		level.Error(logger).Log("msg", fmt.Sprintf("actors stopped with err: %v", err))
		return exitFailure
	}

	level.Info(logger).Log("msg", "actors stopped without errors")

	return exitSuccess
}

// monitorPanic monitors panics and reports them somewhere (e.g. logs, ...).
func monitorPanic(logger log.Logger) {
	if rec := recover(); rec != nil {
		err := fmt.Sprintf("panic: %v \n stack trace: %s", rec, debug.Stack())
		level.Error(logger).Log("err", err)
		panic(err)
	}
}
