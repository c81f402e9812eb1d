package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
	"github.com/tableserve/pos-backend/pkg/money"
	"github.com/tableserve/pos-backend/pkg/textrec"
)

// Product file keys.
const (
	KeyProductID      = "prodID"
	KeyProductName    = "prodName"
	KeyProductPrice   = "prodPrice"
	KeyProductStock   = "prodStock"
	KeyProductPresets = "prodPresetAddons"
)

// Add-on file keys.
const (
	KeyAddonID    = "addonID"
	KeyAddonName  = "addonName"
	KeyAddonPrice = "addonPrice"
	KeyAddonStock = "addonStock"
)

// presetNone is the file value meaning "no preset add-ons".
const presetNone = "None"

// Issue is one operator-facing diagnostic about a malformed record field.
// Malformed data never aborts a load; the record (or the single bad
// preset entry) is dropped and the issue reported.
type Issue struct {
	File   string `json:"file"`
	Record int    `json:"record"`
	ID     int    `json:"id,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	if i.ID != 0 {
		return fmt.Sprintf("%s record %d (id %d): field %s %s", i.File, i.Record, i.ID, i.Field, i.Reason)
	}
	return fmt.Sprintf("%s record %d: field %s %s", i.File, i.Record, i.Field, i.Reason)
}

// LoadReport summarizes one catalog load.
type LoadReport struct {
	Products int     `json:"products"`
	Addons   int     `json:"addons"`
	Issues   []Issue `json:"issues,omitempty"`
}

// Loader parses the two backing files into a fresh Catalog.
type Loader struct {
	productsPath string
	addonsPath   string
	logg         *logger.Logger
}

func NewLoader(productsPath, addonsPath string, logg *logger.Logger) (*Loader, error) {
	if strings.TrimSpace(productsPath) == "" {
		return nil, fmt.Errorf("products path required")
	}
	if strings.TrimSpace(addonsPath) == "" {
		return nil, fmt.Errorf("addons path required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Loader{productsPath: productsPath, addonsPath: addonsPath, logg: logg}, nil
}

// Load replaces nothing itself: it builds a new Catalog from the backing
// files and reports every malformed field it had to skip. Unreadable
// files are persistence errors; malformed records are diagnostics.
func (l *Loader) Load(ctx context.Context) (*Catalog, *LoadReport, error) {
	report := &LoadReport{}

	productFile, err := textrec.Load(l.productsPath)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reading product file").
			WithDetails(map[string]any{"path": l.productsPath})
	}
	addonFile, err := textrec.Load(l.addonsPath)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reading addon file").
			WithDetails(map[string]any{"path": l.addonsPath})
	}

	addons := l.parseAddons(addonFile, report)

	known := make(map[int]bool, len(addons))
	for _, a := range addons {
		known[a.ID] = true
	}
	products := l.parseProducts(productFile, known, report)

	report.Products = len(products)
	report.Addons = len(addons)

	for _, issue := range report.Issues {
		issueCtx := l.logg.WithFields(ctx, map[string]any{
			"file":   issue.File,
			"record": issue.Record,
			"field":  issue.Field,
			"reason": issue.Reason,
		})
		l.logg.Warn(issueCtx, "catalog record skipped or trimmed")
	}

	loadCtx := l.logg.WithFields(ctx, map[string]any{
		"products": report.Products,
		"addons":   report.Addons,
		"issues":   len(report.Issues),
	})
	l.logg.Info(loadCtx, "catalog loaded")

	return New(products, addons), report, nil
}

func (l *Loader) parseProducts(file *textrec.File, knownAddons map[int]bool, report *LoadReport) []Product {
	var products []Product
	seen := map[int]bool{}

	for ordinal, rec := range file.Records {
		issue := func(id int, field, reason string) {
			report.Issues = append(report.Issues, Issue{
				File:   l.productsPath,
				Record: ordinal + 1,
				ID:     id,
				Field:  field,
				Reason: reason,
			})
		}

		id, ok := requireInt(rec, KeyProductID, func(field, reason string) { issue(0, field, reason) })
		if !ok {
			continue
		}
		if seen[id] {
			issue(id, KeyProductID, "duplicate identifier, keeping first record")
			continue
		}

		name, ok := rec.Get(KeyProductName)
		if !ok || strings.TrimSpace(name) == "" {
			issue(id, KeyProductName, "missing")
			continue
		}

		priceValue, ok := rec.Get(KeyProductPrice)
		if !ok {
			issue(id, KeyProductPrice, "missing")
			continue
		}
		priceCents, err := money.ParsePrice(priceValue)
		if err != nil {
			issue(id, KeyProductPrice, err.Error())
			continue
		}

		stock, ok := requireNonNegativeInt(rec, KeyProductStock, func(field, reason string) { issue(id, field, reason) })
		if !ok {
			continue
		}

		presets := parsePresets(rec, func(field, reason string) { issue(id, field, reason) })

		// Presets referencing an unknown add-on are dropped so cart
		// operations never chase a dangling identifier.
		kept := presets[:0]
		for _, presetID := range presets {
			if knownAddons[presetID] {
				kept = append(kept, presetID)
				continue
			}
			issue(id, KeyProductPresets, fmt.Sprintf("references unknown add-on %d", presetID))
		}
		presets = kept

		products = append(products, Product{
			ID:           id,
			Name:         name,
			PriceCents:   priceCents,
			Stock:        stock,
			PresetAddons: presets,
		})
		seen[id] = true
	}
	return products
}

func (l *Loader) parseAddons(file *textrec.File, report *LoadReport) []Addon {
	var addons []Addon
	seen := map[int]bool{}

	for ordinal, rec := range file.Records {
		issue := func(id int, field, reason string) {
			report.Issues = append(report.Issues, Issue{
				File:   l.addonsPath,
				Record: ordinal + 1,
				ID:     id,
				Field:  field,
				Reason: reason,
			})
		}

		id, ok := requireInt(rec, KeyAddonID, func(field, reason string) { issue(0, field, reason) })
		if !ok {
			continue
		}
		if seen[id] {
			issue(id, KeyAddonID, "duplicate identifier, keeping first record")
			continue
		}

		name, ok := rec.Get(KeyAddonName)
		if !ok || strings.TrimSpace(name) == "" {
			issue(id, KeyAddonName, "missing")
			continue
		}

		priceValue, ok := rec.Get(KeyAddonPrice)
		if !ok {
			issue(id, KeyAddonPrice, "missing")
			continue
		}
		priceCents, err := money.ParsePrice(priceValue)
		if err != nil {
			issue(id, KeyAddonPrice, err.Error())
			continue
		}

		stock, ok := requireNonNegativeInt(rec, KeyAddonStock, func(field, reason string) { issue(id, field, reason) })
		if !ok {
			continue
		}

		addons = append(addons, Addon{
			ID:         id,
			Name:       name,
			PriceCents: priceCents,
			Stock:      stock,
		})
		seen[id] = true
	}
	return addons
}

func requireInt(rec textrec.Record, key string, issue func(field, reason string)) (int, bool) {
	value, ok := rec.Get(key)
	if !ok {
		issue(key, "missing")
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		issue(key, fmt.Sprintf("not an integer: %q", value))
		return 0, false
	}
	return n, true
}

func requireNonNegativeInt(rec textrec.Record, key string, issue func(field, reason string)) (int, bool) {
	n, ok := requireInt(rec, key, issue)
	if !ok {
		return 0, false
	}
	if n < 0 {
		issue(key, fmt.Sprintf("must not be negative, got %d", n))
		return 0, false
	}
	return n, true
}

func parsePresets(rec textrec.Record, issue func(field, reason string)) []int {
	raw, ok := rec.Get(KeyProductPresets)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, presetNone) {
		return nil
	}

	var presets []int
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, err := strconv.Atoi(entry)
		if err != nil {
			issue(KeyProductPresets, fmt.Sprintf("entry %q not an integer", entry))
			continue
		}
		presets = append(presets, id)
	}
	return presets
}
