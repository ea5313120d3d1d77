package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
	transporthttp "github.com/MrKriegler/go-warranty/internal/http"
	"github.com/MrKriegler/go-warranty/internal/http/handlers"
	"github.com/MrKriegler/go-warranty/internal/http/health"
	"github.com/MrKriegler/go-warranty/internal/jobs"
	"github.com/MrKriegler/go-warranty/internal/platform/config"
	"github.com/MrKriegler/go-warranty/internal/platform/logging"
	"github.com/MrKriegler/go-warranty/internal/store"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting go-warranty API", "env", cfg.Env, "db", cfg.DBType)

	// ---- Storage ----
	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	// ---- Services ----
	discountSvc, err := core.NewDiscountService(stores.Discounts, core.CampaignSettings{
		Code:               cfg.Campaign.Code,
		Type:               core.DiscountType(cfg.Campaign.Type),
		Value:              cfg.Campaign.Value,
		ValidityDays:       cfg.Campaign.ValidityDays,
		ApplicableProducts: cfg.Campaign.Products,
	})
	if err != nil {
		return fmt.Errorf("campaign settings: %w", err)
	}
	policySvc := core.NewPolicyService(stores.Policies, discountSvc, log)
	quoteSvc := core.NewQuoteService()
	draftSvc := core.NewDraftService(stores.Drafts, time.Duration(cfg.DraftTTLMin)*time.Minute)

	// ---- Background jobs ----
	opTimeout := time.Duration(cfg.OpTimeoutMs) * time.Millisecond
	scheduler := jobs.NewScheduler(log, 10*opTimeout)
	if err := scheduler.Add(ctx, cfg.ExpirySweepSchedule, jobs.NewExpiryWorker(discountSvc, log)); err != nil {
		return fmt.Errorf("schedule expiry sweep %q: %w", cfg.ExpirySweepSchedule, err)
	}
	scheduler.Start()

	// ---- HTTP ----
	router := transporthttp.NewRouter(transporthttp.Deps{
		Log: log,
		Public: []handlers.Mountable{
			handlers.NewWarrantyHandler(quoteSvc, log),
			handlers.NewPolicyHandler(policySvc, log),
			handlers.NewDiscountHandler(discountSvc, log),
			handlers.NewDraftHandler(draftSvc, log),
		},
		Admin: []handlers.Mountable{
			handlers.NewAdminHandler(discountSvc, log),
			handlers.NewPolicyAdminHandler(policySvc, log),
		},
		Health:         health.New(log, stores.Checks, opTimeout),
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        stores.Limiter,
		RequestTimeout: time.Duration(cfg.HTTPRequestTimeoutSec) * time.Second,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
