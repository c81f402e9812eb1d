package register

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tableserve/pos-backend/internal/cart"
	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/internal/checkout"
	"github.com/tableserve/pos-backend/internal/holds"
	"github.com/tableserve/pos-backend/internal/ledger"
	"github.com/tableserve/pos-backend/internal/stock"
	"github.com/tableserve/pos-backend/pkg/enums"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
	"github.com/tableserve/pos-backend/pkg/metrics"
	"github.com/tableserve/pos-backend/pkg/money"
)

// AttachToLastGroup selects the most recently added group when
// attaching an add-on.
const AttachToLastGroup = -1

// CartView is the active order as the terminal displays it: grouped
// lines plus the running totals at the configured tax rate.
type CartView struct {
	State         enums.OrderState `json:"state"`
	Groups        []cart.Group     `json:"groups"`
	SubtotalCents int              `json:"subtotal_cents"`
	TaxCents      int              `json:"tax_cents"`
	TotalCents    int              `json:"total_cents"`
}

// Service is the single cash register session. Every operation runs
// under one lock; the register is the sole owner of the catalog, the
// active order, and the hold queue.
type Service interface {
	Products(ctx context.Context, nameFilter string) []catalog.Product
	Addons(ctx context.Context) []catalog.Addon
	ReloadCatalog(ctx context.Context) (*catalog.LoadReport, error)

	AdjustStock(ctx context.Context, kind enums.ItemKind, id, delta int) (int, error)
	CommitStock(ctx context.Context) error

	Cart(ctx context.Context) CartView
	AddProduct(ctx context.Context, productID, qty int) (CartView, error)
	AttachAddon(ctx context.Context, groupIndex, addonID, qty int) (CartView, error)
	RemoveLastLine(ctx context.Context) (cart.Line, CartView, error)
	RemoveGroup(ctx context.Context, groupIndex int) (CartView, error)
	RemoveAddon(ctx context.Context, groupIndex, addonIndex int) (CartView, error)
	ClearOrder(ctx context.Context) (CartView, error)
	Receipt(ctx context.Context) (string, error)

	SendToKitchen(ctx context.Context) (CartView, error)
	Checkout(ctx context.Context, tipCents int) (ledger.Record, error)

	HoldOrder(ctx context.Context) (holds.HeldOrder, error)
	ListHolds(ctx context.Context) []holds.HeldOrder
	CancelHold(ctx context.Context, holdID int) (holds.HeldOrder, error)
	ResumeHold(ctx context.Context, holdID int) (CartView, error)

	NextOrderNumber(ctx context.Context) (int, error)
}

// Params collects the register's dependencies.
type Params struct {
	Loader   *catalog.Loader
	Catalog  *catalog.Catalog
	Stock    stock.Service
	Checkout checkout.Service
	Ledger   ledger.Service
	Holds    *holds.Queue
	TaxRate  decimal.Decimal
	Logger   *logger.Logger
	Metrics  *metrics.RegisterMetrics
}

type service struct {
	mu sync.Mutex

	cat   *catalog.Catalog
	order *cart.Cart
	state enums.OrderState
	queue *holds.Queue

	loader   *catalog.Loader
	stock    stock.Service
	checkout checkout.Service
	ledger   ledger.Service
	taxRate  decimal.Decimal
	logg     *logger.Logger
	metrics  *metrics.RegisterMetrics
}

// NewService builds the register session. Metrics may be nil; a nil
// hold queue starts empty.
func NewService(p Params) (Service, error) {
	if p.Loader == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if p.Stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if p.Checkout == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	if p.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("tax rate must be at least 0 and below 1")
	}
	queue := p.Holds
	if queue == nil {
		queue = holds.NewQueue()
	}
	return &service{
		cat:      p.Catalog,
		order:    cart.New(),
		state:    enums.OrderStateBuilding,
		queue:    queue,
		loader:   p.Loader,
		stock:    p.Stock,
		checkout: p.Checkout,
		ledger:   p.Ledger,
		taxRate:  p.TaxRate,
		logg:     p.Logger,
		metrics:  p.Metrics,
	}, nil
}

func (s *service) Products(ctx context.Context, nameFilter string) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.cat.Products()
	if nameFilter == "" {
		return products
	}
	needle := strings.ToLower(nameFilter)
	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (s *service) Addons(ctx context.Context) []catalog.Addon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.Addons()
}

// ReloadCatalog replaces the in-memory catalog from the backing files.
// Only allowed at an empty register: an open order holds pointers into
// the catalog it was built against.
func (s *service) ReloadCatalog(ctx context.Context) (*catalog.LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.OrderStateBuilding || !s.order.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot reload the catalog during an open order")
	}

	cat, report, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.cat = cat
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"products": report.Products,
		"addons":   report.Addons,
		"issues":   len(report.Issues),
	}), "catalog reloaded")
	return report, nil
}

// AdjustStock applies one bounded delta and reports the new level.
// Adjustments are back-office operations and run in any order state.
func (s *service) AdjustStock(ctx context.Context, kind enums.ItemKind, id, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stock.Adjust(ctx, s.cat, kind, id, delta); err != nil {
		return 0, err
	}
	switch kind {
	case enums.ItemKindProduct:
		return s.cat.FindProduct(id).Stock, nil
	default:
		return s.cat.FindAddon(id).Stock, nil
	}
}

func (s *service) CommitStock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock.CommitAll(ctx, s.cat)
}

func (s *service) Cart(ctx context.Context) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *service) AddProduct(ctx context.Context, productID, qty int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return CartView{}, err
	}
	if err := s.order.AddProduct(s.cat, productID, qty); err != nil {
		return CartView{}, err
	}
	return s.view(), nil
}

// AttachAddon attaches to the group at groupIndex, or to the newest
// group when groupIndex is AttachToLastGroup.
func (s *service) AttachAddon(ctx context.Context, groupIndex, addonID, qty int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return CartView{}, err
	}
	var err error
	if groupIndex == AttachToLastGroup {
		err = s.order.AttachAddonToLast(s.cat, addonID, qty)
	} else {
		err = s.order.AttachAddon(s.cat, groupIndex, addonID, qty)
	}
	if err != nil {
		return CartView{}, err
	}
	return s.view(), nil
}

func (s *service) RemoveLastLine(ctx context.Context) (cart.Line, CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return cart.Line{}, CartView{}, err
	}
	line, err := s.order.RemoveLast()
	if err != nil {
		return cart.Line{}, CartView{}, err
	}
	return line, s.view(), nil
}

func (s *service) RemoveGroup(ctx context.Context, groupIndex int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return CartView{}, err
	}
	if _, err := s.order.RemoveGroup(groupIndex); err != nil {
		return CartView{}, err
	}
	return s.view(), nil
}

func (s *service) RemoveAddon(ctx context.Context, groupIndex, addonIndex int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return CartView{}, err
	}
	if _, err := s.order.RemoveAddon(groupIndex, addonIndex); err != nil {
		return CartView{}, err
	}
	return s.view(), nil
}

// ClearOrder abandons the active order in any state. Stock already
// taken for a sent order is not put back; voiding cooked food is a
// manual stock adjustment.
func (s *service) ClearOrder(ctx context.Context) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order.Reset()
	s.state = enums.OrderStateBuilding
	s.logg.Info(ctx, "order cleared")
	return s.view(), nil
}

// Receipt renders the preview receipt for the active order: the line
// items with subtotal, then tax and total at the configured rate.
func (s *service) Receipt(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.order.Empty() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "no items to print")
	}
	subtotal := s.order.TotalCents()
	tax := money.TaxCents(subtotal, s.taxRate)
	receipt := s.order.Receipt()
	receipt += fmt.Sprintf("Tax: %s\n", money.FormatCents(tax))
	receipt += fmt.Sprintf("Total: %s\n", money.FormatCents(subtotal+tax))
	return receipt, nil
}

// SendToKitchen reserves and persists stock for the active order and
// moves the register to the sent state. An order is sent exactly once.
func (s *service) SendToKitchen(ctx context.Context) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return CartView{}, err
	}
	if err := s.checkout.SendToKitchen(ctx, s.cat, s.order.Lines()); err != nil {
		return CartView{}, err
	}
	s.state = enums.OrderStateSent
	return s.view(), nil
}

// Checkout finalizes a sent order: tax is computed, the ledger block is
// written, and the register resets to an empty building order. On
// failure the order stays sent so the checkout can be retried.
func (s *service) Checkout(ctx context.Context, tipCents int) (ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.OrderStateSent {
		return ledger.Record{}, pkgerrors.New(pkgerrors.CodeStateConflict, "send the order to the kitchen before checkout")
	}
	record, err := s.checkout.Finalize(ctx, s.order.Lines(), tipCents)
	if err != nil {
		return ledger.Record{}, err
	}
	s.order.Reset()
	s.state = enums.OrderStateBuilding
	return record, nil
}

// HoldOrder parks the active order on the queue and clears the
// register. Stock is untouched; it is only reserved when the resumed
// order is eventually sent.
func (s *service) HoldOrder(ctx context.Context) (holds.HeldOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return holds.HeldOrder{}, err
	}
	held, err := s.queue.Enqueue(s.order.Snapshot())
	if err != nil {
		return holds.HeldOrder{}, err
	}
	s.order.Reset()
	s.metrics.SetHeldOrders(s.queue.Len())
	s.logg.Info(s.logg.WithField(ctx, "hold_id", held.ID), "order held")
	return held, nil
}

func (s *service) ListHolds(ctx context.Context) []holds.HeldOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.List()
}

// CancelHold drops a parked order. Nothing was reserved for it, so
// stock is untouched.
func (s *service) CancelHold(ctx context.Context, holdID int) (holds.HeldOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held, err := s.queue.Take(holdID)
	if err != nil {
		return holds.HeldOrder{}, err
	}
	s.metrics.SetHeldOrders(s.queue.Len())
	s.logg.Info(s.logg.WithField(ctx, "hold_id", holdID), "held order cancelled")
	return held, nil
}

// ResumeHold loads a parked order back into the empty register. Stock
// is re-checked against the current catalog first; a hold that can no
// longer be fulfilled stays parked.
func (s *service) ResumeHold(ctx context.Context, holdID int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuilding(); err != nil {
		return CartView{}, err
	}
	if !s.order.Empty() {
		return CartView{}, pkgerrors.New(pkgerrors.CodeStateConflict, "clear the active order before resuming a hold")
	}

	held, err := s.queue.Get(holdID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.stock.ValidateBatch(ctx, s.cat, checkout.Demands(held.Lines)); err != nil {
		return CartView{}, err
	}
	if err := s.order.LoadSnapshot(held.Lines); err != nil {
		return CartView{}, err
	}
	if _, err := s.queue.Take(holdID); err != nil {
		return CartView{}, err
	}
	s.metrics.SetHeldOrders(s.queue.Len())
	s.logg.Info(s.logg.WithField(ctx, "hold_id", holdID), "held order resumed")
	return s.view(), nil
}

func (s *service) NextOrderNumber(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.NextNumber(ctx)
}

func (s *service) view() CartView {
	subtotal := s.order.TotalCents()
	tax := money.TaxCents(subtotal, s.taxRate)
	return CartView{
		State:         s.state,
		Groups:        s.order.Groups(),
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}

func (s *service) requireBuilding() error {
	if s.state != enums.OrderStateBuilding {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already sent to the kitchen").
			WithDetails(map[string]any{"state": s.state.String()})
	}
	return nil
}
