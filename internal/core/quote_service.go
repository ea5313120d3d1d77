package core

import (
	"context"
	"time"

	"github.com/MrKriegler/go-warranty/internal/platform/metrics"
	"github.com/MrKriegler/go-warranty/internal/warranty"
)

type quoteService struct {
	clock func() time.Time
}

func NewQuoteService() QuoteService {
	return &quoteService{clock: time.Now}
}

func (s *quoteService) Quote(_ context.Context, in QuoteInput) (WarrantyQuote, error) {
	if err := in.Validate(); err != nil {
		return WarrantyQuote{}, err
	}

	start := in.StartDate
	if start.IsZero() {
		y, m, d := s.clock().UTC().Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	known := warranty.IsKnownPaymentType(in.PaymentType)
	if !known {
		metrics.UnknownPaymentTypesTotal.Inc()
	}

	info := warranty.PaymentDurationInfo(in.PaymentType)
	return WarrantyQuote{
		PlanTier:         in.PlanTier,
		PaymentType:      in.PaymentType,
		Months:           info.Months,
		DisplayText:      info.DisplayText,
		PaymentFrequency: info.PaymentFrequency,
		EmailText:        warranty.FormatDurationForEmail(in.PaymentType),
		StartDate:        start,
		EndDate:          warranty.AddMonths(start, info.Months),
		Coverage:         warranty.Coverage(in.PlanTier),
		KnownPaymentType: known,
		LegacyMismatch:   !warranty.CompareResolvers(in.PaymentType).DurationsAgree,
	}, nil
}
