// Command events-mcp-http starts the MCP HTTP server for the event platform.
package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "golang.org/x/sync/errgroup"

    "events-mcp/internal/config"
    "events-mcp/internal/eventapi"
    "events-mcp/internal/logging"
    "events-mcp/internal/server"
    "events-mcp/internal/tools"
)

const shutdownTimeout = 10 * time.Second

func main() {
    configPath := flag.String("config", getEnv("EVENTS_MCP_CONFIG", ""), "path to a YAML or TOML config file")
    flag.Parse()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    if err := run(ctx, *configPath); err != nil {
        fmt.Fprintf(os.Stderr, "Error: %v\n", err)
        os.Exit(1)
    }
}

func run(ctx context.Context, configPath string) error {
    cfg, err := config.Load(configPath)
    if err != nil {
        return fmt.Errorf("loading config: %w", err)
    }

    logger := logging.New(cfg.Logging, os.Stdout)
    slog.SetDefault(logger)

    if cfg.Server.Token == "" {
        logger.Warn("MCP_TOKEN not set; endpoints will be open. Set MCP_TOKEN to secure.")
    }

    client := eventapi.New(eventapi.Config{
        BaseURL:        cfg.Upstream.BaseURL,
        TenantID:       cfg.Upstream.TenantID,
        TenantSecret:   cfg.Upstream.TenantSecret,
        ConnectTimeout: cfg.Upstream.ConnectTimeout,
        Timeout:        cfg.Upstream.Timeout,
    }, nil)
    registry := tools.NewRegistry(client, logger)

    metricsPath := ""
    if cfg.Metrics.Enabled {
        metricsPath = cfg.Metrics.Path
    }
    srv := server.New(server.Config{
        Token:        cfg.Server.Token,
        ResponseMode: cfg.Server.ResponseMode,
        MetricsPath:  metricsPath,
    }, registry, logger)

    httpServer := &http.Server{
        Addr:              cfg.Addr(),
        Handler:           srv.Router(),
        ReadHeaderTimeout: 10 * time.Second,
    }

    g, gctx := errgroup.WithContext(ctx)

    g.Go(func() error {
        logger.Info("starting MCP HTTP server",
            slog.String("addr", httpServer.Addr),
            slog.Bool("tls", cfg.TLSEnabled()),
            slog.String("response_mode", cfg.Server.ResponseMode),
            slog.String("upstream", cfg.Upstream.BaseURL),
            slog.Int("tools", len(registry.List())))

        var err error
        if cfg.TLSEnabled() {
            err = httpServer.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
        } else {
            err = httpServer.ListenAndServe()
        }
        if err != nil && !errors.Is(err, http.ErrServerClosed) {
            return fmt.Errorf("serving http: %w", err)
        }
        return nil
    })

    g.Go(func() error {
        <-gctx.Done()
        logger.Info("shutting down MCP HTTP server")

        shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
        defer cancel()
        if err := httpServer.Shutdown(shutdownCtx); err != nil {
            return fmt.Errorf("shutting down http: %w", err)
        }
        return nil
    })

    return g.Wait()
}

func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}
