package jobs

import (
	"context"
	"log/slog"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/platform/metrics"
)

// ExpiryWorker archives discount codes whose validity window has closed.
type ExpiryWorker struct {
	BaseWorker
	discounts core.DiscountService
}

// NewExpiryWorker creates a new expiry worker.
func NewExpiryWorker(discounts core.DiscountService, log *slog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		BaseWorker: NewBaseWorker("discount-expiry", log),
		discounts:  discounts,
	}
}

// Run performs one sweep.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	n, err := w.discounts.ExpireCodes(ctx)
	if err != nil {
		metrics.ExpirySweepsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.ExpirySweepsTotal.WithLabelValues("ok").Inc()
	metrics.DiscountCodesArchivedTotal.Add(float64(n))

	if n > 0 {
		w.log.InfoContext(ctx, "archived expired discount codes", "count", n)
	}
	return nil
}
