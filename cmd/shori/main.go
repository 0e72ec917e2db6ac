// Package main is the shori services entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/analyze"
	"github.com/hyperjump/shori/internal/bus"
	"github.com/hyperjump/shori/internal/config"
	"github.com/hyperjump/shori/internal/intake"
	"github.com/hyperjump/shori/internal/lifecycle"
	"github.com/hyperjump/shori/internal/models"
	"github.com/hyperjump/shori/internal/server"
	"github.com/hyperjump/shori/internal/storage"
	"github.com/hyperjump/shori/internal/worker"
	"github.com/hyperjump/shori/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath  = "/usr/local/etc/shori/config.yaml"
	startupPingTimeout = 5 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "gateway":
		runGateway()
	case "image-worker":
		runWorker(models.TypeImage)
	case "text-worker":
		runWorker(models.TypeText)
	case "version", "--version", "-v":
		fmt.Printf("shori version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shori - document processing pipeline

Usage:
  shori gateway      [-config path] [-debug]   start the API gateway
  shori image-worker [-config path] [-debug]   start the image worker
  shori text-worker  [-config path] [-debug]   start the text worker
  shori version                                print version
  shori help                                   print this help`)
}

// loadConfig loads config from path. When path is the default and no file
// exists there, a config.yaml in the current directory is used if present;
// otherwise built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); err != nil {
			if cwd, cwdErr := os.Getwd(); cwdErr == nil {
				fallback := filepath.Join(cwd, "config.yaml")
				if _, statErr := os.Stat(fallback); statErr == nil {
					return config.Load(fallback)
				}
			}
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func setup(name string) (*config.Config, *zap.Logger) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

func runGateway() {
	cfg, logger := setup("gateway")
	defer logger.Sync()

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}
	defer store.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), startupPingTimeout)
	err = store.Ping(pingCtx)
	pingCancel()
	if err != nil {
		logger.Fatal("document store unreachable", zap.Error(err))
	}

	kafkaBus := bus.NewKafkaBus(cfg.Kafka.Brokers, cfg.Kafka.ClientID, logger)
	defer kafkaBus.Close()

	topics := lifecycle.Topics{
		ImageProcessing: cfg.Kafka.Topics.ImageProcessing,
		TextProcessing:  cfg.Kafka.Topics.TextProcessing,
	}
	orch := lifecycle.NewOrchestrator(store, kafkaBus, topics, logger)
	reconciler := lifecycle.NewReconciler(orch, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := reconciler.Run(ctx, kafkaBus, cfg.Kafka.Groups.Gateway, cfg.Kafka.Topics.ProcessingResults)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("result consumer stopped", zap.Error(err))
		}
	}()

	intakeWatcher := intake.NewWatcher(cfg.Intake.Directories, orch, logger)
	if err := intakeWatcher.Start(ctx); err != nil {
		logger.Fatal("failed to start intake watcher", zap.Error(err))
	}

	srv := server.NewServer(orch, "api-gateway", logger)
	go func() {
		if err := srv.Start(cfg.Gateway.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("gateway server failed", zap.Error(err))
		}
	}()

	waitForSignal(logger)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("gateway shutdown error", zap.Error(err))
	}
	logger.Info("gateway stopped")
}

func runWorker(docType models.DocumentType) {
	name := string(docType) + "-service"
	cfg, logger := setup(name)
	defer logger.Sync()

	var (
		svcCfg   config.ServiceConfig
		topic    string
		group    string
		analyzer analyze.Analyzer
	)
	if docType == models.TypeImage {
		svcCfg = cfg.Image
		topic = cfg.Kafka.Topics.ImageProcessing
		group = cfg.Kafka.Groups.Image
		analyzer = analyze.NewImageAnalyzer()
	} else {
		svcCfg = cfg.Text
		topic = cfg.Kafka.Topics.TextProcessing
		group = cfg.Kafka.Groups.Text
		analyzer = analyze.NewTextAnalyzer()
	}

	kafkaBus := bus.NewKafkaBus(cfg.Kafka.Brokers, cfg.Kafka.ClientID, logger)
	defer kafkaBus.Close()

	w := worker.New(docType, topic, cfg.Kafka.Topics.ProcessingResults, group, analyzer, kafkaBus, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// HTTP stays up even when the broker is unreachable, so health checks
	// keep passing while Kafka recovers.
	healthSrv := server.NewHealthServer(svcCfg.Addr(), name)
	go func() {
		logger.Info("health endpoint listening", zap.String("addr", svcCfg.Addr()))
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("health server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := w.Run(ctx, kafkaBus); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("message consumer stopped, running HTTP only", zap.Error(err))
		}
	}()

	waitForSignal(logger)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health server shutdown error", zap.Error(err))
	}
	logger.Info("worker stopped", zap.String("service", name))
}

func waitForSignal(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
