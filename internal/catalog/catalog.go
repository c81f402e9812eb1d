package catalog

import (
	"strconv"

	"github.com/tableserve/pos-backend/pkg/money"
)

// Product is one sellable menu entry mirrored from the product file.
// PresetAddons lists add-on identifiers attached automatically whenever
// the product is ordered.
type Product struct {
	ID           int
	Name         string
	PriceCents   int
	Stock        int
	PresetAddons []int
}

// Addon is one attachable extra mirrored from the add-on file. Add-on
// identifiers live in their own namespace, separate from products.
type Addon struct {
	ID         int
	Name       string
	PriceCents int
	Stock      int
}

// Catalog owns the product and add-on lists for the process lifetime.
// Load order is preserved and lookups are first-match linear scans, so
// duplicate identifiers resolve to the earliest record.
type Catalog struct {
	products []Product
	addons   []Addon
}

func New(products []Product, addons []Addon) *Catalog {
	return &Catalog{products: products, addons: addons}
}

// Products returns a copy of the product list for display.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Addons returns a copy of the add-on list for display.
func (c *Catalog) Addons() []Addon {
	out := make([]Addon, len(c.addons))
	copy(out, c.addons)
	return out
}

// FindProduct returns the first product with the given id, or nil. The
// pointer aliases catalog state; callers mutate only stock, and only for
// the duration of one register operation.
func (c *Catalog) FindProduct(id int) *Product {
	for i := range c.products {
		if c.products[i].ID == id {
			return &c.products[i]
		}
	}
	return nil
}

// FindAddon returns the first add-on with the given id, or nil.
func (c *Catalog) FindAddon(id int) *Addon {
	for i := range c.addons {
		if c.addons[i].ID == id {
			return &c.addons[i]
		}
	}
	return nil
}

// FindProductByField resolves a product by a named field value. Field
// names accept both the canonical form ("id", "name", "price", "stock")
// and the product-file key aliases.
func (c *Catalog) FindProductByField(field, value string) *Product {
	for i := range c.products {
		if productFieldMatches(&c.products[i], field, value) {
			return &c.products[i]
		}
	}
	return nil
}

// FindAddonByField resolves an add-on by a named field value.
func (c *Catalog) FindAddonByField(field, value string) *Addon {
	for i := range c.addons {
		if addonFieldMatches(&c.addons[i], field, value) {
			return &c.addons[i]
		}
	}
	return nil
}

func productFieldMatches(p *Product, field, value string) bool {
	switch field {
	case "id", KeyProductID:
		id, err := strconv.Atoi(value)
		return err == nil && p.ID == id
	case "name", KeyProductName:
		return p.Name == value
	case "price", KeyProductPrice:
		cents, err := money.ParsePrice(value)
		return err == nil && p.PriceCents == cents
	case "stock", KeyProductStock:
		stock, err := strconv.Atoi(value)
		return err == nil && p.Stock == stock
	}
	return false
}

func addonFieldMatches(a *Addon, field, value string) bool {
	switch field {
	case "id", KeyAddonID:
		id, err := strconv.Atoi(value)
		return err == nil && a.ID == id
	case "name", KeyAddonName:
		return a.Name == value
	case "price", KeyAddonPrice:
		cents, err := money.ParsePrice(value)
		return err == nil && a.PriceCents == cents
	case "stock", KeyAddonStock:
		stock, err := strconv.Atoi(value)
		return err == nil && a.Stock == stock
	}
	return false
}
