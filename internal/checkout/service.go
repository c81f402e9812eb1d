package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tableserve/pos-backend/internal/cart"
	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/internal/ledger"
	"github.com/tableserve/pos-backend/internal/stock"
	"github.com/tableserve/pos-backend/pkg/enums"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
	"github.com/tableserve/pos-backend/pkg/metrics"
	"github.com/tableserve/pos-backend/pkg/money"
)

type stockRunner interface {
	Adjust(ctx context.Context, cat *catalog.Catalog, kind enums.ItemKind, id, delta int) error
	ApplyBatch(ctx context.Context, cat *catalog.Catalog, demands []stock.Demand) error
	CommitAll(ctx context.Context, cat *catalog.Catalog) error
}

type ledgerAppender interface {
	Append(ctx context.Context, entry ledger.Entry) (ledger.Record, error)
}

// Service executes the two money moments of an order: reserving stock
// when it goes to the kitchen and recording it in the ledger when it is
// paid.
type Service interface {
	SendToKitchen(ctx context.Context, cat *catalog.Catalog, lines []cart.Line) error
	Finalize(ctx context.Context, lines []cart.Line, tipCents int) (ledger.Record, error)
}

type service struct {
	stock   stockRunner
	ledger  ledgerAppender
	taxRate decimal.Decimal
	logg    *logger.Logger
	metrics *metrics.RegisterMetrics
}

// NewService builds the checkout orchestration. Metrics may be nil.
func NewService(stockSvc stockRunner, ledgerSvc ledgerAppender, taxRate decimal.Decimal, logg *logger.Logger, m *metrics.RegisterMetrics) (Service, error) {
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("tax rate must be at least 0 and below 1")
	}
	return &service{
		stock:   stockSvc,
		ledger:  ledgerSvc,
		taxRate: taxRate,
		logg:    logg,
		metrics: m,
	}, nil
}

// Demands maps order lines onto stock demands, one per line. The stock
// layer aggregates repeats of the same entry before validating.
func Demands(lines []cart.Line) []stock.Demand {
	demands := make([]stock.Demand, len(lines))
	for i, line := range lines {
		demands[i] = stock.Demand{Kind: line.Kind, ID: line.ID, Qty: line.Qty}
	}
	return demands
}

// SendToKitchen reserves stock for every line of the order and persists
// the new levels. The reservation is all or nothing; when persisting
// fails the reserved quantities are put back so a failed send leaves
// the register exactly where it was.
func (s *service) SendToKitchen(ctx context.Context, cat *catalog.Catalog, lines []cart.Line) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no order to send to the kitchen")
	}

	demands := Demands(lines)
	if err := s.stock.ApplyBatch(ctx, cat, demands); err != nil {
		result := metrics.SendResultError
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			result = metrics.SendResultInsufficientStock
		}
		s.metrics.RecordKitchenSend(result)
		return err
	}

	if err := s.stock.CommitAll(ctx, cat); err != nil {
		for _, d := range demands {
			if restoreErr := s.stock.Adjust(ctx, cat, d.Kind, d.ID, d.Qty); restoreErr != nil {
				s.logg.Error(ctx, "restoring stock after failed commit", restoreErr)
			}
		}
		s.metrics.RecordKitchenSend(metrics.SendResultError)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "could not persist stock for the kitchen ticket")
	}

	s.metrics.RecordKitchenSend(metrics.SendResultOK)
	s.logg.Info(s.logg.WithField(ctx, "line_items", len(lines)), "order sent to kitchen")
	return nil
}

// Finalize computes tax on the subtotal, records the order in the
// ledger and reports the written block. Stock was already taken when
// the order went to the kitchen.
func (s *service) Finalize(ctx context.Context, lines []cart.Line, tipCents int) (ledger.Record, error) {
	if len(lines) == 0 {
		return ledger.Record{}, pkgerrors.New(pkgerrors.CodeValidation, "no order to check out")
	}
	if tipCents < 0 {
		return ledger.Record{}, pkgerrors.New(pkgerrors.CodeValidation, "tip cannot be negative").
			WithDetails(map[string]any{"tip_cents": tipCents})
	}

	subtotal := 0
	for _, line := range lines {
		subtotal += line.ExtendedCents()
	}
	taxCents := money.TaxCents(subtotal, s.taxRate)

	record, err := s.ledger.Append(ctx, ledger.Entry{Lines: lines, TaxCents: taxCents, TipCents: tipCents})
	if err != nil {
		return ledger.Record{}, err
	}

	s.metrics.RecordOrderFinalized(record.TotalCents)
	s.logg.Info(s.logg.WithOrderNumber(ctx, record.Number), "order checked out")
	return record, nil
}
