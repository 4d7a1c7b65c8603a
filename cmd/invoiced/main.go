package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/export"
	"github.com/MIDevJourney/invoice-analyzer/internal/extract"
	"github.com/MIDevJourney/invoice-analyzer/internal/extractcache"
	"github.com/MIDevJourney/invoice-analyzer/internal/filestore"
	"github.com/MIDevJourney/invoice-analyzer/internal/handler"
	"github.com/MIDevJourney/invoice-analyzer/internal/llm/openai"
	"github.com/MIDevJourney/invoice-analyzer/internal/pipeline"
	"github.com/MIDevJourney/invoice-analyzer/internal/repository"
	"github.com/MIDevJourney/invoice-analyzer/internal/service"
	"github.com/MIDevJourney/invoice-analyzer/internal/usagelog"
)

func main() {
	root := &cobra.Command{
		Use:   "invoiced",
		Short: "Invoice analyzer API server",
	}
	root.AddCommand(serveCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := repository.Migrate(ctx, db, logger); err != nil {
		return err
	}

	files, err := filestore.New(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize file store", "error", err)
		return err
	}

	users := repository.NewUserRepository(db, logger)
	invoices := repository.NewInvoiceRepository(db, logger)

	orch := pipeline.NewOrchestrator(
		logger,
		files,
		extract.NewPDFExtractor(logger),
		extractcache.New(cfg.Cache.Dir, logger),
		openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger),
		usagelog.New(cfg.Usage.Path),
	)

	authSvc := service.NewAuthService(logger, users, cfg.Auth)
	invoiceSvc := service.NewInvoiceService(logger, invoices, files, orch)
	exportSvc := export.NewService(invoices, logger)

	router := handler.NewRouter(
		handler.NewAuthHandler(authSvc, logger),
		handler.NewInvoiceHandler(invoiceSvc, exportSvc, logger),
		[]byte(cfg.Auth.JWTSecret),
	)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
