// Command pflow-server starts the workflow engine's HTTP API, exposing
// execute/validate/describe over REST and metrics at /metrics, grounded on
// the teacher's cmd/server entrypoint (flag-parsed address/timeouts,
// signal-driven graceful shutdown).
//
// Endpoints:
//
//	POST /api/v1/workflow/execute
//	POST /api/v1/workflow/validate
//	GET  /api/v1/registry
//	GET  /metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pflowhq/pflow/internal/defaults"
	"github.com/pflowhq/pflow/internal/httpserver"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
	"github.com/pflowhq/pflow/internal/telemetry"
)

func main() {
	addr := flag.String("addr", ":8080", "server address")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	settingsPath := flag.String("settings", "", "path to a runtime settings YAML file")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	logLevel := "info"
	if *verbose {
		logLevel = "debug"
	}
	logger := obslog.New(obslog.Config{Level: logLevel})

	cfg := runtimeconfig.Default()
	if *settingsPath != "" {
		if err := runtimeconfig.LoadSettingsFile(*settingsPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load settings file: %v\n", err)
			os.Exit(1)
		}
	}

	tel, err := telemetry.New(context.Background(), telemetry.DefaultConfig())
	if err != nil {
		logger.WithError(err).Warn("telemetry disabled: failed to initialize")
		tel = nil
	}

	serverConfig := httpserver.DefaultConfig()
	serverConfig.Address = *addr
	serverConfig.ReadTimeout = *readTimeout
	serverConfig.WriteTimeout = *writeTimeout

	srv, err := httpserver.New(serverConfig, defaults.NewRegistry(), defaults.NewFactories(), cfg, logger, tel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		fmt.Printf("pflow-server listening on %s\n", *addr)
		fmt.Printf("execute:  http://localhost%s/api/v1/workflow/execute\n", *addr)
		fmt.Printf("validate: http://localhost%s/api/v1/workflow/validate\n", *addr)
		fmt.Printf("registry: http://localhost%s/api/v1/registry\n", *addr)
		fmt.Printf("metrics:  http://localhost%s/metrics\n", *addr)

		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	case <-sigChan:
		fmt.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
			os.Exit(1)
		}
		if tel != nil {
			_ = tel.Shutdown(ctx)
		}
		fmt.Println("server stopped")
	}
}
