// Command server exposes the ladder model over HTTP, with a gRPC health service on a
// separate port.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/trdeg/internal/config"
	"github.com/xtding233/trdeg/internal/logging"
)

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", getenv("TRDEG_ADDR", ":8080"), "HTTP listen address")
		grpcAddr   = flag.String("grpc-addr", getenv("TRDEG_GRPC_ADDR", ":9090"), "gRPC health listen address")
		confDir    = flag.String("conf", getenv("TRDEG_CONF", "configs"), "config base directory")
		ladderName = flag.String("ladder", getenv("TRDEG_LADDER", "tenhou"), "ladder config name")
		sweepName  = flag.String("sweep", "", "optional sweep config name")
		poll       = flag.Duration("poll", 2*time.Second, "config poll interval")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	logger, err := logging.New(*debug, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.Install(logger)

	loader := config.NewLoader(*confDir)
	srv, err := newServer(loader, *ladderName, *sweepName)
	if err != nil {
		logger.Fatal("load config", zap.String("ladder", *ladderName), zap.Error(err))
	}

	// a bad edit keeps the previous model
	watcher := config.NewFileWatcher(loader.Paths(*ladderName, *sweepName), *poll, func(path string) {
		logger.Info("config changed", zap.String("path", path))
		if err := srv.reload(); err != nil {
			logger.Error("reload failed", zap.String("path", path), zap.Error(err))
		}
	})
	watcher.Start()
	defer watcher.Stop()

	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		logger.Fatal("grpc listen", zap.String("addr", *grpcAddr), zap.Error(err))
	}
	go func() {
		if err := gs.Serve(lis); err != nil {
			logger.Error("grpc serve", zap.Error(err))
		}
	}()

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("listening", zap.String("http", *addr), zap.String("grpc", *grpcAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http serve", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	gs.GracefulStop()
}
