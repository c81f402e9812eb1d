package controllers

import (
	"context"
	"io"

	"github.com/tableserve/pos-backend/internal/cart"
	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/internal/holds"
	"github.com/tableserve/pos-backend/internal/ledger"
	"github.com/tableserve/pos-backend/internal/register"
	"github.com/tableserve/pos-backend/pkg/enums"
	"github.com/tableserve/pos-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

// stubRegister implements register.Service with optional overrides per
// method. Without an override a method returns zero values.
type stubRegister struct {
	productsFn    func(ctx context.Context, nameFilter string) []catalog.Product
	addonsFn      func(ctx context.Context) []catalog.Addon
	reloadFn      func(ctx context.Context) (*catalog.LoadReport, error)
	adjustStockFn func(ctx context.Context, kind enums.ItemKind, id, delta int) (int, error)
	commitStockFn func(ctx context.Context) error
	cartFn        func(ctx context.Context) register.CartView
	addProductFn  func(ctx context.Context, productID, qty int) (register.CartView, error)
	attachAddonFn func(ctx context.Context, groupIndex, addonID, qty int) (register.CartView, error)
	removeLastFn  func(ctx context.Context) (cart.Line, register.CartView, error)
	removeGroupFn func(ctx context.Context, groupIndex int) (register.CartView, error)
	removeAddonFn func(ctx context.Context, groupIndex, addonIndex int) (register.CartView, error)
	clearFn       func(ctx context.Context) (register.CartView, error)
	receiptFn     func(ctx context.Context) (string, error)
	sendFn        func(ctx context.Context) (register.CartView, error)
	checkoutFn    func(ctx context.Context, tipCents int) (ledger.Record, error)
	holdFn        func(ctx context.Context) (holds.HeldOrder, error)
	listHoldsFn   func(ctx context.Context) []holds.HeldOrder
	cancelHoldFn  func(ctx context.Context, holdID int) (holds.HeldOrder, error)
	resumeHoldFn  func(ctx context.Context, holdID int) (register.CartView, error)
	nextNumberFn  func(ctx context.Context) (int, error)
}

func (s *stubRegister) Products(ctx context.Context, nameFilter string) []catalog.Product {
	if s.productsFn != nil {
		return s.productsFn(ctx, nameFilter)
	}
	return nil
}

func (s *stubRegister) Addons(ctx context.Context) []catalog.Addon {
	if s.addonsFn != nil {
		return s.addonsFn(ctx)
	}
	return nil
}

func (s *stubRegister) ReloadCatalog(ctx context.Context) (*catalog.LoadReport, error) {
	if s.reloadFn != nil {
		return s.reloadFn(ctx)
	}
	return &catalog.LoadReport{}, nil
}

func (s *stubRegister) AdjustStock(ctx context.Context, kind enums.ItemKind, id, delta int) (int, error) {
	if s.adjustStockFn != nil {
		return s.adjustStockFn(ctx, kind, id, delta)
	}
	return 0, nil
}

func (s *stubRegister) CommitStock(ctx context.Context) error {
	if s.commitStockFn != nil {
		return s.commitStockFn(ctx)
	}
	return nil
}

func (s *stubRegister) Cart(ctx context.Context) register.CartView {
	if s.cartFn != nil {
		return s.cartFn(ctx)
	}
	return register.CartView{}
}

func (s *stubRegister) AddProduct(ctx context.Context, productID, qty int) (register.CartView, error) {
	if s.addProductFn != nil {
		return s.addProductFn(ctx, productID, qty)
	}
	return register.CartView{}, nil
}

func (s *stubRegister) AttachAddon(ctx context.Context, groupIndex, addonID, qty int) (register.CartView, error) {
	if s.attachAddonFn != nil {
		return s.attachAddonFn(ctx, groupIndex, addonID, qty)
	}
	return register.CartView{}, nil
}

func (s *stubRegister) RemoveLastLine(ctx context.Context) (cart.Line, register.CartView, error) {
	if s.removeLastFn != nil {
		return s.removeLastFn(ctx)
	}
	return cart.Line{}, register.CartView{}, nil
}

func (s *stubRegister) RemoveGroup(ctx context.Context, groupIndex int) (register.CartView, error) {
	if s.removeGroupFn != nil {
		return s.removeGroupFn(ctx, groupIndex)
	}
	return register.CartView{}, nil
}

func (s *stubRegister) RemoveAddon(ctx context.Context, groupIndex, addonIndex int) (register.CartView, error) {
	if s.removeAddonFn != nil {
		return s.removeAddonFn(ctx, groupIndex, addonIndex)
	}
	return register.CartView{}, nil
}

func (s *stubRegister) ClearOrder(ctx context.Context) (register.CartView, error) {
	if s.clearFn != nil {
		return s.clearFn(ctx)
	}
	return register.CartView{}, nil
}

func (s *stubRegister) Receipt(ctx context.Context) (string, error) {
	if s.receiptFn != nil {
		return s.receiptFn(ctx)
	}
	return "", nil
}

func (s *stubRegister) SendToKitchen(ctx context.Context) (register.CartView, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx)
	}
	return register.CartView{}, nil
}

func (s *stubRegister) Checkout(ctx context.Context, tipCents int) (ledger.Record, error) {
	if s.checkoutFn != nil {
		return s.checkoutFn(ctx, tipCents)
	}
	return ledger.Record{}, nil
}

func (s *stubRegister) HoldOrder(ctx context.Context) (holds.HeldOrder, error) {
	if s.holdFn != nil {
		return s.holdFn(ctx)
	}
	return holds.HeldOrder{}, nil
}

func (s *stubRegister) ListHolds(ctx context.Context) []holds.HeldOrder {
	if s.listHoldsFn != nil {
		return s.listHoldsFn(ctx)
	}
	return nil
}

func (s *stubRegister) CancelHold(ctx context.Context, holdID int) (holds.HeldOrder, error) {
	if s.cancelHoldFn != nil {
		return s.cancelHoldFn(ctx, holdID)
	}
	return holds.HeldOrder{}, nil
}

func (s *stubRegister) ResumeHold(ctx context.Context, holdID int) (register.CartView, error) {
	if s.resumeHoldFn != nil {
		return s.resumeHoldFn(ctx, holdID)
	}
	return register.CartView{}, nil
}

func (s *stubRegister) NextOrderNumber(ctx context.Context) (int, error) {
	if s.nextNumberFn != nil {
		return s.nextNumberFn(ctx)
	}
	return 1, nil
}
