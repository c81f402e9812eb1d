package cart

import (
	"fmt"

	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/pkg/enums"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/money"
)

// Line is one order line item. Kind tags whether it references a product
// or an add-on; name and unit price are captured from the catalog entry
// at append time so later stock edits never reshape an open order.
type Line struct {
	Kind      enums.ItemKind `json:"kind"`
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	UnitCents int            `json:"unit_cents"`
	Qty       int            `json:"qty"`
}

// ExtendedCents is the line's unit price times quantity.
func (l Line) ExtendedCents() int {
	return money.ExtendCents(l.UnitCents, l.Qty)
}

// String renders the line the way receipts and the order ledger print it.
func (l Line) String() string {
	return fmt.Sprintf("%s x%d @ %s = %s",
		l.Name, l.Qty, money.FormatCents(l.UnitCents), money.FormatCents(l.ExtendedCents()))
}

// Group is one product line plus the add-on lines attached to it. Group
// membership is structural, there is no backward scanning over a flat
// list to find a parent product.
type Group struct {
	Product Line   `json:"product"`
	Addons  []Line `json:"addons,omitempty"`
}

func (g Group) lines() []Line {
	out := make([]Line, 0, 1+len(g.Addons))
	out = append(out, g.Product)
	out = append(out, g.Addons...)
	return out
}

// Cart is the active order: an ordered sequence of groups.
type Cart struct {
	groups []Group
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) Empty() bool {
	return len(c.groups) == 0
}

// Groups returns a deep copy of the cart's groups for display.
func (c *Cart) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Product: g.Product, Addons: append([]Line(nil), g.Addons...)}
	}
	return out
}

// Lines returns the flat line-item view in display order.
func (c *Cart) Lines() []Line {
	var out []Line
	for _, g := range c.groups {
		out = append(out, g.lines()...)
	}
	return out
}

// AddProduct appends the product to the order. A product without preset
// add-ons becomes one group holding a single line of the full quantity.
// A product with presets expands per unit: each unit gets its own group
// of (product, 1) plus one (add-on, 1) line per preset entry, so units
// stay individually removable. Stock for the product and for every
// preset add-on is validated for the full quantity up front; on any
// shortfall nothing is appended.
func (c *Cart) AddProduct(cat *catalog.Catalog, productID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"qty": qty})
	}
	if cat == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog not loaded")
	}
	product := cat.FindProduct(productID)
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
			WithDetails(map[string]any{"id": productID})
	}

	var shorts []map[string]any
	if product.Stock < qty {
		shorts = append(shorts, map[string]any{
			"kind":      enums.ItemKindProduct.String(),
			"id":        product.ID,
			"name":      product.Name,
			"available": product.Stock,
			"requested": qty,
		})
	}

	// A preset add-on listed twice on the product needs two per unit.
	presetNeed := map[int]int{}
	var presetOrder []int
	for _, addonID := range product.PresetAddons {
		if _, ok := presetNeed[addonID]; !ok {
			presetOrder = append(presetOrder, addonID)
		}
		presetNeed[addonID] += qty
	}
	presets := make(map[int]*catalog.Addon, len(presetOrder))
	for _, addonID := range presetOrder {
		addon := cat.FindAddon(addonID)
		if addon == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "preset add-on missing from catalog").
				WithDetails(map[string]any{"product_id": product.ID, "addon_id": addonID})
		}
		presets[addonID] = addon
		if addon.Stock < presetNeed[addonID] {
			shorts = append(shorts, map[string]any{
				"kind":      enums.ItemKindAddon.String(),
				"id":        addon.ID,
				"name":      addon.Name,
				"available": addon.Stock,
				"requested": presetNeed[addonID],
			})
		}
	}

	if len(shorts) > 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock to add product").
			WithDetails(map[string]any{"items": shorts})
	}

	if len(product.PresetAddons) == 0 {
		c.groups = append(c.groups, Group{Product: productLine(product, qty)})
		return nil
	}

	for unit := 0; unit < qty; unit++ {
		group := Group{Product: productLine(product, 1)}
		for _, addonID := range product.PresetAddons {
			group.Addons = append(group.Addons, addonLine(presets[addonID], 1))
		}
		c.groups = append(c.groups, group)
	}
	return nil
}

// AttachAddon appends one add-on line to the group at groupIndex. The
// cart must already hold a product group; add-on lines never float free.
func (c *Cart) AttachAddon(cat *catalog.Catalog, groupIndex, addonID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"qty": qty})
	}
	if cat == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog not loaded")
	}
	if len(c.groups) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no product group to attach the add-on to")
	}
	if groupIndex < 0 || groupIndex >= len(c.groups) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "group index out of range").
			WithDetails(map[string]any{"group_index": groupIndex, "groups": len(c.groups)})
	}

	addon := cat.FindAddon(addonID)
	if addon == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown add-on").
			WithDetails(map[string]any{"id": addonID})
	}
	if addon.Stock < qty {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock to attach add-on").
			WithDetails(map[string]any{
				"kind":      enums.ItemKindAddon.String(),
				"id":        addon.ID,
				"name":      addon.Name,
				"available": addon.Stock,
				"requested": qty,
			})
	}

	group := &c.groups[groupIndex]
	group.Addons = append(group.Addons, addonLine(addon, qty))
	return nil
}

// AttachAddonToLast attaches to the most recently added group.
func (c *Cart) AttachAddonToLast(cat *catalog.Catalog, addonID, qty int) error {
	return c.AttachAddon(cat, len(c.groups)-1, addonID, qty)
}

// RemoveLast pops the last line of the order: the final group's last
// add-on when it has any, otherwise the whole final group.
func (c *Cart) RemoveLast() (Line, error) {
	if len(c.groups) == 0 {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	last := &c.groups[len(c.groups)-1]
	if n := len(last.Addons); n > 0 {
		line := last.Addons[n-1]
		last.Addons = last.Addons[:n-1]
		return line, nil
	}
	line := last.Product
	c.groups = c.groups[:len(c.groups)-1]
	return line, nil
}

// RemoveGroup removes the product at groupIndex together with every
// add-on attached to it. Earlier groups keep their positions.
func (c *Cart) RemoveGroup(groupIndex int) (Group, error) {
	if groupIndex < 0 || groupIndex >= len(c.groups) {
		return Group{}, pkgerrors.New(pkgerrors.CodeNotFound, "group index out of range").
			WithDetails(map[string]any{"group_index": groupIndex, "groups": len(c.groups)})
	}
	removed := c.groups[groupIndex]
	c.groups = append(c.groups[:groupIndex], c.groups[groupIndex+1:]...)
	return removed, nil
}

// RemoveAddon removes exactly one add-on line from a group, leaving the
// group's product untouched.
func (c *Cart) RemoveAddon(groupIndex, addonIndex int) (Line, error) {
	if groupIndex < 0 || groupIndex >= len(c.groups) {
		return Line{}, pkgerrors.New(pkgerrors.CodeNotFound, "group index out of range").
			WithDetails(map[string]any{"group_index": groupIndex, "groups": len(c.groups)})
	}
	group := &c.groups[groupIndex]
	if addonIndex < 0 || addonIndex >= len(group.Addons) {
		return Line{}, pkgerrors.New(pkgerrors.CodeNotFound, "add-on index out of range").
			WithDetails(map[string]any{"group_index": groupIndex, "addon_index": addonIndex, "addons": len(group.Addons)})
	}
	removed := group.Addons[addonIndex]
	group.Addons = append(group.Addons[:addonIndex], group.Addons[addonIndex+1:]...)
	return removed, nil
}

// Reset empties the order.
func (c *Cart) Reset() {
	c.groups = nil
}

// TotalCents sums unit price times quantity over every line.
func (c *Cart) TotalCents() int {
	total := 0
	for _, g := range c.groups {
		for _, line := range g.lines() {
			total += line.ExtendedCents()
		}
	}
	return total
}

// Receipt renders the order summary: one line per line item followed by
// the subtotal.
func (c *Cart) Receipt() string {
	out := ""
	for _, line := range c.Lines() {
		out += line.String() + "\n"
	}
	out += fmt.Sprintf("Subtotal: %s\n", money.FormatCents(c.TotalCents()))
	return out
}

// Snapshot returns a frozen flat copy of the order's lines.
func (c *Cart) Snapshot() []Line {
	return append([]Line(nil), c.Lines()...)
}

// LoadSnapshot rebuilds groups from a flat snapshot: each product line
// opens a group, add-on lines attach to the open one. The cart must be
// empty and the snapshot must not begin with an add-on line.
func (c *Cart) LoadSnapshot(lines []Line) error {
	if len(c.groups) != 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart must be empty to load a snapshot")
	}
	var groups []Group
	for _, line := range lines {
		switch line.Kind {
		case enums.ItemKindProduct:
			groups = append(groups, Group{Product: line})
		case enums.ItemKindAddon:
			if len(groups) == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "snapshot begins with an add-on line")
			}
			last := &groups[len(groups)-1]
			last.Addons = append(last.Addons, line)
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "snapshot line has unknown kind").
				WithDetails(map[string]any{"kind": line.Kind.String()})
		}
	}
	c.groups = groups
	return nil
}

func productLine(p *catalog.Product, qty int) Line {
	return Line{
		Kind:      enums.ItemKindProduct,
		ID:        p.ID,
		Name:      p.Name,
		UnitCents: p.PriceCents,
		Qty:       qty,
	}
}

func addonLine(a *catalog.Addon, qty int) Line {
	return Line{
		Kind:      enums.ItemKindAddon,
		ID:        a.ID,
		Name:      a.Name,
		UnitCents: a.PriceCents,
		Qty:       qty,
	}
}
