package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/shop-cart/internal/adapter/handler"
	"github.com/rl1809/shop-cart/internal/adapter/view"
	"github.com/rl1809/shop-cart/internal/app"
	"github.com/rl1809/shop-cart/internal/config"
	"github.com/rl1809/shop-cart/internal/core/service"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open backends: %v", err)
	}

	// One process is one tab
	tabStorage := service.NewTabStorage(backends.Area, backends.Bus, logger)
	store := service.NewCartStore(backends.Catalog, tabStorage, cfg.Cart.StorageKey, logger)
	htmlView, err := view.NewHTMLView(cfg.Cart.CurrencySymbol)
	if err != nil {
		logger.Fatalf("failed to create view: %v", err)
	}
	widget, err := service.NewWidget(backends.Catalog, store, tabStorage, htmlView, logger)
	if err != nil {
		logger.Fatalf("failed to create widget: %v", err)
	}
	if err := widget.Start(ctx); err != nil {
		logger.Fatalf("failed to start widget: %v", err)
	}
	logger.WithField("origin", tabStorage.Origin()).Infof("widget started with %d items", widget.Snapshot().Totals.Count)

	// gRPC server
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(widget, logger))
	healthpb.RegisterHealthServer(grpcServer, health.NewServer())

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}

	// HTTP server
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewHTTPHandler(widget, htmlView, logger).Router(),
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return widget.Sync(groupCtx)
	})
	g.Go(func() error {
		logger.Infof("gRPC server listening on %s", cfg.GRPCAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("HTTP shutdown: %v", err)
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	err = g.Wait()
	backends.Close()
	logger.Info("connections closed")
	if err != nil {
		logger.Errorf("server error: %v", err)
		os.Exit(1)
	}
}
