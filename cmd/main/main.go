package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-dashboard/src/app"
	"market-dashboard/src/config"
	"market-dashboard/src/grpc_control"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/server"
)

const (
	journalCleanupInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// Setup components
	c, err := app.Setup(conf, appLogger)
	if err != nil {
		appLogger.Critical("Failed to initialize: %v", err)
	}
	defer c.Recorder.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Servers
	servers := []interfaces.IDashboardServer{
		server.NewDashboardServer(conf.MConfig, c.Dashboard, c.Images, appLogger.Named("DashboardServer")),
	}
	if conf.GrpcPort != 0 {
		grpcLogger := appLogger.Named("ControlService")
		service := grpc_control.NewControlService(c.Dashboard, grpcLogger)
		servers = append(servers, grpc_control.NewControlServer(conf.GrpcHost, conf.GrpcPort, service, grpcLogger))
	}

	errs := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv interfaces.IDashboardServer) {
			errs <- srv.Start()
		}(srv)
	}

	// Journal retention
	go func() {
		ticker := time.NewTicker(journalCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.Recorder.CleanupOldData(); err != nil {
					appLogger.Warning("Render journal cleanup failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	appLogger.Info("Dashboard ready (provider %s)", c.Sources.Name())

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down...")
	case err := <-errs:
		if err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Stop(shutdownCtx); err != nil {
			appLogger.Warning("Shutdown: %v", err)
		}
	}
	appLogger.Info("Shutdown complete.")
}
