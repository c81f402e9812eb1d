package register

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/internal/checkout"
	"github.com/tableserve/pos-backend/internal/holds"
	"github.com/tableserve/pos-backend/internal/ledger"
	"github.com/tableserve/pos-backend/internal/stock"
	"github.com/tableserve/pos-backend/pkg/enums"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
)

const productsFixture = `prodID=1
prodName=Classic Burger
prodPrice=5.00
prodStock=10
prodPresetAddons=None

prodID=2
prodName=Loaded Fries
prodPrice=2.50
prodStock=30
prodPresetAddons=1,2
`

const addonsFixture = `addonID=1
addonName=Cheddar Slice
addonPrice=0.75
addonStock=40

addonID=2
addonName=Bacon
addonPrice=1.50
addonStock=12
`

type fixture struct {
	svc          Service
	loader       *catalog.Loader
	productsPath string
	addonsPath   string
	ledgerPath   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	productsPath := filepath.Join(dir, "products.txt")
	addonsPath := filepath.Join(dir, "addons.txt")
	ledgerPath := filepath.Join(dir, "orders.txt")
	if err := os.WriteFile(productsPath, []byte(productsFixture), 0o644); err != nil {
		t.Fatalf("writing products fixture: %v", err)
	}
	if err := os.WriteFile(addonsPath, []byte(addonsFixture), 0o644); err != nil {
		t.Fatalf("writing addons fixture: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	loader, err := catalog.NewLoader(productsPath, addonsPath, logg)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cat, _, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("loading fixture catalog: %v", err)
	}

	stockSvc, err := stock.NewService(productsPath, addonsPath, logg, nil)
	if err != nil {
		t.Fatalf("stock.NewService: %v", err)
	}
	ledgerSvc, err := ledger.NewService(ledgerPath, logg)
	if err != nil {
		t.Fatalf("ledger.NewService: %v", err)
	}
	rate, err := decimal.NewFromString("0.07")
	if err != nil {
		t.Fatalf("parsing tax rate: %v", err)
	}
	checkoutSvc, err := checkout.NewService(stockSvc, ledgerSvc, rate, logg, nil)
	if err != nil {
		t.Fatalf("checkout.NewService: %v", err)
	}
	svc, err := NewService(Params{
		Loader:   loader,
		Catalog:  cat,
		Stock:    stockSvc,
		Checkout: checkoutSvc,
		Ledger:   ledgerSvc,
		Holds:    holds.NewQueue(),
		TaxRate:  rate,
		Logger:   logg,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, loader: loader, productsPath: productsPath, addonsPath: addonsPath, ledgerPath: ledgerPath}
}

func assertState(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func (f *fixture) productStock(t *testing.T, id int) int {
	t.Helper()
	for _, p := range f.svc.Products(context.Background(), "") {
		if p.ID == id {
			return p.Stock
		}
	}
	t.Fatalf("product %d not in catalog", id)
	return 0
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.AddProduct(ctx, 1, 2)
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if view.SubtotalCents != 1000 || view.TaxCents != 70 || view.TotalCents != 1070 {
		t.Fatalf("unexpected totals: %+v", view)
	}
	if view.State != enums.OrderStateBuilding {
		t.Fatalf("expected building state, got %s", view.State)
	}

	view, err = f.svc.SendToKitchen(ctx)
	if err != nil {
		t.Fatalf("SendToKitchen: %v", err)
	}
	if view.State != enums.OrderStateSent {
		t.Fatalf("expected sent state, got %s", view.State)
	}
	if got := f.productStock(t, 1); got != 8 {
		t.Fatalf("stock after send = %d, want 8", got)
	}

	record, err := f.svc.Checkout(ctx, 100)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if record.Number != 1 || record.SubtotalCents != 1000 || record.TaxCents != 70 || record.TipCents != 100 || record.TotalCents != 1170 {
		t.Fatalf("unexpected record: %+v", record)
	}

	view = f.svc.Cart(ctx)
	if len(view.Groups) != 0 || view.State != enums.OrderStateBuilding {
		t.Fatalf("register must reset after checkout, got %+v", view)
	}

	data, err := os.ReadFile(f.ledgerPath)
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	if !strings.Contains(string(data), "Order #1") || !strings.Contains(string(data), "Classic Burger x2 @ $5.00 = $10.00") {
		t.Fatalf("ledger block missing expected content:\n%s", data)
	}

	// The second order re-scans the file and lands on #2.
	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.SendToKitchen(ctx); err != nil {
		t.Fatalf("SendToKitchen: %v", err)
	}
	record, err = f.svc.Checkout(ctx, 0)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if record.Number != 2 {
		t.Fatalf("second order should be #2, got %d", record.Number)
	}
}

func TestStateGates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, 0)
	assertState(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.SendToKitchen(ctx)
	assertState(t, err, pkgerrors.CodeValidation)

	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	_, err = f.svc.Checkout(ctx, 0)
	assertState(t, err, pkgerrors.CodeStateConflict)

	if _, err := f.svc.SendToKitchen(ctx); err != nil {
		t.Fatalf("SendToKitchen: %v", err)
	}

	_, err = f.svc.SendToKitchen(ctx)
	assertState(t, err, pkgerrors.CodeStateConflict)
	_, err = f.svc.AddProduct(ctx, 1, 1)
	assertState(t, err, pkgerrors.CodeStateConflict)
	_, _, err = f.svc.RemoveLastLine(ctx)
	assertState(t, err, pkgerrors.CodeStateConflict)
	_, err = f.svc.HoldOrder(ctx)
	assertState(t, err, pkgerrors.CodeStateConflict)

	if _, err := f.svc.Checkout(ctx, 0); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
}

func TestHoldResumeLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Loaded Fries expands to three lines per unit.
	if _, err := f.svc.AddProduct(ctx, 2, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	held, err := f.svc.HoldOrder(ctx)
	if err != nil {
		t.Fatalf("HoldOrder: %v", err)
	}
	if held.ID != 1 || len(held.Lines) != 3 {
		t.Fatalf("unexpected hold: %+v", held)
	}
	if view := f.svc.Cart(ctx); len(view.Groups) != 0 {
		t.Fatalf("holding must clear the register")
	}
	if got := f.productStock(t, 2); got != 30 {
		t.Fatalf("holding must not take stock, got %d", got)
	}

	// A new order occupies the register; resume must refuse.
	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	_, err = f.svc.ResumeHold(ctx, 1)
	assertState(t, err, pkgerrors.CodeStateConflict)
	if len(f.svc.ListHolds(ctx)) != 1 {
		t.Fatalf("refused resume must keep the hold")
	}

	if _, err := f.svc.ClearOrder(ctx); err != nil {
		t.Fatalf("ClearOrder: %v", err)
	}
	view, err := f.svc.ResumeHold(ctx, 1)
	if err != nil {
		t.Fatalf("ResumeHold: %v", err)
	}
	if len(view.Groups) != 1 || len(view.Groups[0].Addons) != 2 {
		t.Fatalf("resumed order lost its shape: %+v", view.Groups)
	}
	if len(f.svc.ListHolds(ctx)) != 0 {
		t.Fatalf("resumed hold must leave the queue")
	}

	if _, err := f.svc.SendToKitchen(ctx); err != nil {
		t.Fatalf("SendToKitchen: %v", err)
	}
	if got := f.productStock(t, 2); got != 29 {
		t.Fatalf("stock after sending resumed order = %d, want 29", got)
	}
}

func TestResumeRevalidatesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddProduct(ctx, 1, 10); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.HoldOrder(ctx); err != nil {
		t.Fatalf("HoldOrder: %v", err)
	}

	// The shelf shrinks while the order is parked.
	if _, err := f.svc.AdjustStock(ctx, enums.ItemKindProduct, 1, -5); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}

	_, err := f.svc.ResumeHold(ctx, 1)
	assertState(t, err, pkgerrors.CodeInsufficientStock)
	if len(f.svc.ListHolds(ctx)) != 1 {
		t.Fatalf("unfulfillable hold must stay parked")
	}

	if _, err := f.svc.AdjustStock(ctx, enums.ItemKindProduct, 1, 5); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if _, err := f.svc.ResumeHold(ctx, 1); err != nil {
		t.Fatalf("ResumeHold after restock: %v", err)
	}
}

func TestCancelHoldKeepsStockAndBurnsID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddProduct(ctx, 1, 3); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.HoldOrder(ctx); err != nil {
		t.Fatalf("HoldOrder: %v", err)
	}
	held, err := f.svc.CancelHold(ctx, 1)
	if err != nil {
		t.Fatalf("CancelHold: %v", err)
	}
	if held.ID != 1 {
		t.Fatalf("expected hold 1 back, got %d", held.ID)
	}
	if got := f.productStock(t, 1); got != 10 {
		t.Fatalf("cancel must never touch stock, got %d", got)
	}

	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	held, err = f.svc.HoldOrder(ctx)
	if err != nil {
		t.Fatalf("HoldOrder: %v", err)
	}
	if held.ID != 2 {
		t.Fatalf("cancelled IDs must not be reused, got %d", held.ID)
	}

	_, err = f.svc.CancelHold(ctx, 9)
	assertState(t, err, pkgerrors.CodeNotFound)
}

func TestClearAfterSendKeepsStockTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddProduct(ctx, 1, 2); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.SendToKitchen(ctx); err != nil {
		t.Fatalf("SendToKitchen: %v", err)
	}
	view, err := f.svc.ClearOrder(ctx)
	if err != nil {
		t.Fatalf("ClearOrder: %v", err)
	}
	if view.State != enums.OrderStateBuilding || len(view.Groups) != 0 {
		t.Fatalf("clear must reset the register, got %+v", view)
	}
	if got := f.productStock(t, 1); got != 8 {
		t.Fatalf("abandoning a sent order must not restock, got %d", got)
	}
}

func TestReloadCatalogGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	_, err := f.svc.ReloadCatalog(ctx)
	assertState(t, err, pkgerrors.CodeStateConflict)

	if _, err := f.svc.ClearOrder(ctx); err != nil {
		t.Fatalf("ClearOrder: %v", err)
	}

	updated := strings.Replace(productsFixture, "prodStock=10", "prodStock=99", 1)
	if err := os.WriteFile(f.productsPath, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewriting products file: %v", err)
	}
	report, err := f.svc.ReloadCatalog(ctx)
	if err != nil {
		t.Fatalf("ReloadCatalog: %v", err)
	}
	if report.Products != 2 || report.Addons != 2 {
		t.Fatalf("unexpected reload report: %+v", report)
	}
	if got := f.productStock(t, 1); got != 99 {
		t.Fatalf("reload must pick up file edits, got %d", got)
	}
}

func TestAdjustAndCommitStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	level, err := f.svc.AdjustStock(ctx, enums.ItemKindProduct, 1, -3)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if level != 7 {
		t.Fatalf("expected level 7, got %d", level)
	}

	_, err = f.svc.AdjustStock(ctx, enums.ItemKindProduct, 1, -8)
	assertState(t, err, pkgerrors.CodeInsufficientStock)

	if err := f.svc.CommitStock(ctx); err != nil {
		t.Fatalf("CommitStock: %v", err)
	}
	reloaded, _, err := f.loader.Load(ctx)
	if err != nil {
		t.Fatalf("reloading catalog: %v", err)
	}
	if got := reloaded.FindProduct(1).Stock; got != 7 {
		t.Fatalf("committed stock = %d, want 7", got)
	}

	// Back-office adjustments are allowed even while an order is out.
	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.SendToKitchen(ctx); err != nil {
		t.Fatalf("SendToKitchen: %v", err)
	}
	if _, err := f.svc.AdjustStock(ctx, enums.ItemKindAddon, 1, 5); err != nil {
		t.Fatalf("AdjustStock while sent: %v", err)
	}
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Receipt(ctx)
	assertState(t, err, pkgerrors.CodeValidation)

	if _, err := f.svc.AddProduct(ctx, 1, 2); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	receipt, err := f.svc.Receipt(ctx)
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	want := "Classic Burger x2 @ $5.00 = $10.00\n" +
		"Subtotal: $10.00\n" +
		"Tax: $0.70\n" +
		"Total: $10.70\n"
	if receipt != want {
		t.Fatalf("receipt mismatch:\n got: %q\nwant: %q", receipt, want)
	}
}

func TestAttachAddonSelectsGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	view, err := f.svc.AttachAddon(ctx, AttachToLastGroup, 1, 1)
	if err != nil {
		t.Fatalf("AttachAddon: %v", err)
	}
	if len(view.Groups[1].Addons) != 1 || len(view.Groups[0].Addons) != 0 {
		t.Fatalf("expected the add-on on the last group: %+v", view.Groups)
	}
	view, err = f.svc.AttachAddon(ctx, 0, 2, 1)
	if err != nil {
		t.Fatalf("AttachAddon: %v", err)
	}
	if len(view.Groups[0].Addons) != 1 || view.Groups[0].Addons[0].ID != 2 {
		t.Fatalf("expected bacon on the first group: %+v", view.Groups)
	}
}

func TestProductsFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all := f.svc.Products(ctx, "")
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
	burgers := f.svc.Products(ctx, "burger")
	if len(burgers) != 1 || burgers[0].Name != "Classic Burger" {
		t.Fatalf("filter mismatch: %+v", burgers)
	}
	if got := f.svc.Products(ctx, "pizza"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestNextOrderNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	next, err := f.svc.NextOrderNumber(ctx)
	if err != nil {
		t.Fatalf("NextOrderNumber: %v", err)
	}
	if next != 1 {
		t.Fatalf("fresh ledger should start at 1, got %d", next)
	}

	if _, err := f.svc.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := f.svc.SendToKitchen(ctx); err != nil {
		t.Fatalf("SendToKitchen: %v", err)
	}
	if _, err := f.svc.Checkout(ctx, 0); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	next, err = f.svc.NextOrderNumber(ctx)
	if err != nil {
		t.Fatalf("NextOrderNumber: %v", err)
	}
	if next != 2 {
		t.Fatalf("expected next number 2, got %d", next)
	}
}

func TestNewServiceValidation(t *testing.T) {
	f := newFixture(t)
	base := f.svc.(*service)

	params := Params{
		Loader:   base.loader,
		Catalog:  base.cat,
		Stock:    base.stock,
		Checkout: base.checkout,
		Ledger:   base.ledger,
		TaxRate:  base.taxRate,
		Logger:   base.logg,
	}

	missing := []struct {
		name   string
		mutate func(*Params)
	}{
		{"loader", func(p *Params) { p.Loader = nil }},
		{"catalog", func(p *Params) { p.Catalog = nil }},
		{"stock", func(p *Params) { p.Stock = nil }},
		{"checkout", func(p *Params) { p.Checkout = nil }},
		{"ledger", func(p *Params) { p.Ledger = nil }},
		{"logger", func(p *Params) { p.Logger = nil }},
	}
	for _, tc := range missing {
		t.Run(tc.name, func(t *testing.T) {
			p := params
			tc.mutate(&p)
			if _, err := NewService(p); err == nil {
				t.Fatalf("expected error for missing %s", tc.name)
			}
		})
	}

	p := params
	p.TaxRate = decimal.NewFromInt(2)
	if _, err := NewService(p); err == nil {
		t.Fatalf("expected error for tax rate above 1")
	}
}
