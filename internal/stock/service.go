package stock

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/pkg/enums"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
	"github.com/tableserve/pos-backend/pkg/metrics"
	"github.com/tableserve/pos-backend/pkg/textrec"
)

// Service is the stock-mutation protocol over catalog entries: bounded
// in-memory adjustment and durable commit back to the backing files.
type Service interface {
	Adjust(ctx context.Context, cat *catalog.Catalog, kind enums.ItemKind, id, delta int) error
	ValidateBatch(ctx context.Context, cat *catalog.Catalog, demands []Demand) error
	ApplyBatch(ctx context.Context, cat *catalog.Catalog, demands []Demand) error
	CommitProducts(ctx context.Context, cat *catalog.Catalog) error
	CommitAddons(ctx context.Context, cat *catalog.Catalog) error
	CommitAll(ctx context.Context, cat *catalog.Catalog) error
}

// Demand is one batch decrement requirement, aggregated per entry before
// validation.
type Demand struct {
	Kind enums.ItemKind
	ID   int
	Qty  int
}

type service struct {
	productsPath string
	addonsPath   string
	logg         *logger.Logger
	metrics      *metrics.RegisterMetrics
}

// NewService wires the stock protocol against the two backing files.
// Metrics may be nil.
func NewService(productsPath, addonsPath string, logg *logger.Logger, m *metrics.RegisterMetrics) (Service, error) {
	if strings.TrimSpace(productsPath) == "" {
		return nil, fmt.Errorf("products path required")
	}
	if strings.TrimSpace(addonsPath) == "" {
		return nil, fmt.Errorf("addons path required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		productsPath: productsPath,
		addonsPath:   addonsPath,
		logg:         logg,
		metrics:      m,
	}, nil
}

// Adjust applies newStock = current + delta to one entry. A result below
// zero is rejected and stock is left unchanged; zero is accepted.
func (s *service) Adjust(ctx context.Context, cat *catalog.Catalog, kind enums.ItemKind, id, delta int) error {
	if cat == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog not loaded")
	}

	name, current, apply, err := resolveEntry(cat, kind, id)
	if err != nil {
		return err
	}

	next := current + delta
	if next < 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock cannot go below zero").
			WithDetails(map[string]any{
				"kind":      kind.String(),
				"id":        id,
				"name":      name,
				"available": current,
				"requested": -delta,
			})
	}

	apply(next)
	return nil
}

// ValidateBatch checks availability for every demand, aggregated per
// catalog entry, without mutating anything. Resuming a held order runs
// this so a hold that can no longer be fulfilled stays parked.
func (s *service) ValidateBatch(ctx context.Context, cat *catalog.Catalog, demands []Demand) error {
	_, err := planBatch(cat, demands)
	return err
}

// ApplyBatch validates availability for every demand, aggregated per
// catalog entry, before mutating anything. Either all decrements are
// applied or none are.
func (s *service) ApplyBatch(ctx context.Context, cat *catalog.Catalog, demands []Demand) error {
	applications, err := planBatch(cat, demands)
	if err != nil {
		return err
	}
	for _, app := range applications {
		app.apply(app.next)
	}
	return nil
}

type application struct {
	apply func(int)
	next  int
}

func planBatch(cat *catalog.Catalog, demands []Demand) ([]application, error) {
	if cat == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog not loaded")
	}

	type entryKey struct {
		kind enums.ItemKind
		id   int
	}
	needed := map[entryKey]int{}
	var order []entryKey
	for _, d := range demands {
		if d.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "demand quantity must be positive").
				WithDetails(map[string]any{"kind": d.Kind.String(), "id": d.ID, "qty": d.Qty})
		}
		key := entryKey{kind: d.Kind, id: d.ID}
		if _, ok := needed[key]; !ok {
			order = append(order, key)
		}
		needed[key] += d.Qty
	}

	var applications []application
	var shorts []map[string]any

	for _, key := range order {
		name, current, apply, err := resolveEntry(cat, key.kind, key.id)
		if err != nil {
			return nil, err
		}
		qty := needed[key]
		if current < qty {
			shorts = append(shorts, map[string]any{
				"kind":      key.kind.String(),
				"id":        key.id,
				"name":      name,
				"available": current,
				"requested": qty,
			})
			continue
		}
		applications = append(applications, application{apply: apply, next: current - qty})
	}

	if len(shorts) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for order").
			WithDetails(map[string]any{"items": shorts})
	}
	return applications, nil
}

// CommitProducts rewrites the persisted stock field of every product in
// the catalog. No other line of the file changes.
func (s *service) CommitProducts(ctx context.Context, cat *catalog.Catalog) error {
	if cat == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog not loaded")
	}
	values := map[int]string{}
	for _, p := range cat.Products() {
		values[p.ID] = strconv.Itoa(p.Stock)
	}
	if err := textrec.RewriteValues(s.productsPath, catalog.KeyProductID, catalog.KeyProductStock, values); err != nil {
		s.metrics.RecordCommitFailure("products")
		commitErr := pkgerrors.Wrap(pkgerrors.CodePersistence, err, "committing product stock").
			WithDetails(map[string]any{"path": s.productsPath})
		s.logg.Error(s.logg.WithField(ctx, "path", s.productsPath), "product stock commit failed", commitErr)
		return commitErr
	}
	return nil
}

// CommitAddons rewrites the persisted stock field of every add-on in the
// catalog, preserving interleaved metadata lines.
func (s *service) CommitAddons(ctx context.Context, cat *catalog.Catalog) error {
	if cat == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog not loaded")
	}
	values := map[int]string{}
	for _, a := range cat.Addons() {
		values[a.ID] = strconv.Itoa(a.Stock)
	}
	if err := textrec.RewriteValues(s.addonsPath, catalog.KeyAddonID, catalog.KeyAddonStock, values); err != nil {
		s.metrics.RecordCommitFailure("addons")
		commitErr := pkgerrors.Wrap(pkgerrors.CodePersistence, err, "committing addon stock").
			WithDetails(map[string]any{"path": s.addonsPath})
		s.logg.Error(s.logg.WithField(ctx, "path", s.addonsPath), "addon stock commit failed", commitErr)
		return commitErr
	}
	return nil
}

// CommitAll commits both stores. The stores are independent files, so one
// failing does not stop the other; failures are combined. In-memory stock
// keeps its adjusted values either way, commit failure means "retry
// persisting", never "redo the sale".
func (s *service) CommitAll(ctx context.Context, cat *catalog.Catalog) error {
	return multierr.Append(
		s.CommitProducts(ctx, cat),
		s.CommitAddons(ctx, cat),
	)
}

func resolveEntry(cat *catalog.Catalog, kind enums.ItemKind, id int) (name string, current int, apply func(int), err error) {
	switch kind {
	case enums.ItemKindProduct:
		p := cat.FindProduct(id)
		if p == nil {
			return "", 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
				WithDetails(map[string]any{"id": id})
		}
		return p.Name, p.Stock, func(next int) { p.Stock = next }, nil
	case enums.ItemKindAddon:
		a := cat.FindAddon(id)
		if a == nil {
			return "", 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown add-on").
				WithDetails(map[string]any{"id": id})
		}
		return a.Name, a.Stock, func(next int) { a.Stock = next }, nil
	default:
		return "", 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown item kind").
			WithDetails(map[string]any{"kind": kind.String()})
	}
}
