package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/internal/ledger"
	"github.com/tableserve/pos-backend/internal/stock"
	"github.com/tableserve/pos-backend/pkg/config"
	"github.com/tableserve/pos-backend/pkg/enums"
	"github.com/tableserve/pos-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "posadmin"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "verify", "admin command: verify|stock|next-order")

	kind := flag.String("kind", "product", "catalog entry kind for -cmd=stock: product|addon")
	id := flag.Int("id", 0, "catalog entry id for -cmd=stock")
	delta := flag.Int("delta", 0, "stock delta for -cmd=stock")
	commit := flag.Bool("commit", false, "persist the adjusted level for -cmd=stock")

	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "posadmin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	switch *cmd {
	case "verify":
		_, report, err := loadCatalog(ctx, cfg, logg)
		requireResource(ctx, logg, "catalog", err)
		for _, issue := range report.Issues {
			fmt.Fprintln(os.Stderr, issue.String())
		}
		fmt.Printf("products: %d\naddons: %d\nissues: %d\n", report.Products, report.Addons, len(report.Issues))
		if len(report.Issues) > 0 {
			os.Exit(1)
		}

	case "stock":
		itemKind, err := enums.ParseItemKind(*kind)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid -kind value:", *kind)
			os.Exit(1)
		}
		if *id < 1 {
			fmt.Fprintln(os.Stderr, "missing -id for stock command")
			os.Exit(1)
		}

		cat, _, err := loadCatalog(ctx, cfg, logg)
		requireResource(ctx, logg, "catalog", err)

		stockSvc, err := stock.NewService(cfg.Data.ProductsPath(), cfg.Data.AddonsPath(), logg, nil)
		requireResource(ctx, logg, "stock service", err)

		if err := stockSvc.Adjust(ctx, cat, itemKind, *id, *delta); err != nil {
			fmt.Fprintf(os.Stderr, "stock adjustment failed: %v\n", err)
			os.Exit(1)
		}

		switch itemKind {
		case enums.ItemKindProduct:
			p := cat.FindProduct(*id)
			fmt.Printf("product %d %q stock: %d\n", p.ID, p.Name, p.Stock)
			if *commit {
				if err := stockSvc.CommitProducts(ctx, cat); err != nil {
					fmt.Fprintf(os.Stderr, "commit failed: %v\n", err)
					os.Exit(1)
				}
				fmt.Println("committed:", cfg.Data.ProductsPath())
			}
		case enums.ItemKindAddon:
			a := cat.FindAddon(*id)
			fmt.Printf("addon %d %q stock: %d\n", a.ID, a.Name, a.Stock)
			if *commit {
				if err := stockSvc.CommitAddons(ctx, cat); err != nil {
					fmt.Fprintf(os.Stderr, "commit failed: %v\n", err)
					os.Exit(1)
				}
				fmt.Println("committed:", cfg.Data.AddonsPath())
			}
		}

	case "next-order":
		ledgerSvc, err := ledger.NewService(cfg.Data.LedgerPath(), logg)
		requireResource(ctx, logg, "ledger service", err)
		next, err := ledgerSvc.NextNumber(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ledger scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("next order number:", next)

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*catalog.Catalog, *catalog.LoadReport, error) {
	loader, err := catalog.NewLoader(cfg.Data.ProductsPath(), cfg.Data.AddonsPath(), logg)
	if err != nil {
		return nil, nil, err
	}
	return loader.Load(ctx)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
