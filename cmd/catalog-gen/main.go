// Command catalog-gen writes a large, deterministic Fan RC catalog file for
// load-testing the storefront's filter and reveal paths.
//
// Run: go run ./cmd/catalog-gen
//
// Configuration comes from the environment: CATALOG_GEN_PRODUCTS,
// CATALOG_GEN_OUTPUT and CATALOG_GEN_SEED.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/helloivanco/fanrc/internal/catalog"
	"github.com/helloivanco/fanrc/internal/domain"
	pkgconfig "github.com/helloivanco/fanrc/pkg/config"
	"github.com/helloivanco/fanrc/pkg/logger"
	"github.com/helloivanco/fanrc/pkg/slug"
)

type genConfig struct {
	Products int    `env:"CATALOG_GEN_PRODUCTS" envDefault:"10000"`
	Output   string `env:"CATALOG_GEN_OUTPUT" envDefault:"data/products.generated.json"`
	Seed     uint64 `env:"CATALOG_GEN_SEED" envDefault:"42"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// ---------------------------------------------------------------------------
// Name generation data
// ---------------------------------------------------------------------------

var models = []string{"RC10", "RC10 B3", "B4", "T4", "RC10GT", "JRX2"}

var materials = []string{"Carbon Fiber", "Titanium", "Aluminum", "Delrin", "Graphite", "Steel"}

// partsPerType maps product types to part names. Every type belongs to a
// storefront category group except the last, which lands in "Other".
var partsPerType = map[string][]string{
	"Chassis Parts":      {"Chassis Plate", "Chassis Brace", "Battery Strap"},
	"bulkheads":          {"Front Bulkhead", "Rear Bulkhead"},
	"Shock Parts":        {"Shock Cap", "Shock Body", "Shock Shaft"},
	"Turnbuckles":        {"Turnbuckle Set", "Camber Link"},
	"Transmission Parts": {"Idler Gear", "Diff Ring", "Slipper Plate"},
	"Steering Parts":     {"Bellcrank Set", "Steering Rack"},
	"body parts":         {"Body Mount", "Wing Mount"},
	"Hardware":           {"Screw Kit", "Hinge Pin Set", "Ball Stud Set"},
	"tools":              {"Hex Driver", "Shock Pliers", "Ride Height Gauge"},
	"Decals":             {"Decal Sheet", "Window Mask"},
}

var lengths = []string{"Short", "Standard", "Long"}

var descriptionTemplates = []string{
	"%s machined for the %s. Direct replacement for the stock part.",
	"Race-proven %s for the %s, built to survive bashing and club racing alike.",
	"Lightweight %s designed for the %s. Sold individually.",
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// generate builds n valid products. The same seed always yields the same catalog.
func generate(n int, seed uint64) []domain.Product {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	types := make([]string, 0, len(partsPerType))
	for t := range partsPerType {
		types = append(types, t)
	}
	slices.Sort(types)

	products := make([]domain.Product, 0, n)
	for i := range n {
		productType := types[rng.IntN(len(types))]
		parts := partsPerType[productType]
		part := parts[rng.IntN(len(parts))]
		model := models[rng.IntN(len(models))]
		material := materials[rng.IntN(len(materials))]

		title := fmt.Sprintf("%s %s %s", model, material, part)
		id := int64(8_000_000 + i)
		handle := slug.Generate(fmt.Sprintf("%s-%d", title, i))
		desc := fmt.Sprintf(descriptionTemplates[rng.IntN(len(descriptionTemplates))], strings.ToLower(material+" "+part), model)

		products = append(products, domain.Product{
			ID:              id,
			Title:           title,
			Handle:          handle,
			URL:             "https://fanrc.com/products/" + handle,
			DescriptionHTML: "<p>" + desc + "</p>",
			DescriptionText: desc,
			Images:          []string{},
			Vendor:          "Fan RC",
			ProductType:     productType,
			Tags:            []string{model, strings.ToLower(material)},
			Options:         []domain.Option{},
			Variants:        generateVariants(rng, id, part),
		})
	}
	return products
}

// generateVariants returns a single default variant or, for a third of the
// products, one variant per length.
func generateVariants(rng *rand.Rand, productID int64, part string) []domain.Variant {
	base := int64(500 + rng.IntN(150)*100 + 99)
	sku := strings.ToUpper(slug.Generate(part))

	if rng.IntN(3) != 0 {
		return []domain.Variant{{
			ID:        productID * 10,
			Title:     domain.DefaultVariantTitle,
			SKU:       fmt.Sprintf("FRC-%s-%d", sku, productID),
			Price:     base,
			Available: rng.Float64() < 0.85,
		}}
	}

	variants := make([]domain.Variant, 0, len(lengths))
	for vi, length := range lengths {
		opt := length
		v := domain.Variant{
			ID:        productID*10 + int64(vi),
			Title:     length,
			SKU:       fmt.Sprintf("FRC-%s-%d-%s", sku, productID, strings.ToUpper(length[:1])),
			Price:     base + int64(vi)*300,
			Available: rng.Float64() < 0.85,
			Option1:   &opt,
		}
		if vi == 0 && rng.Float64() < 0.3 {
			compare := v.Price + 500
			v.CompareAtPrice = &compare
		}
		variants = append(variants, v)
	}
	return variants
}

func run(cfg genConfig, log *slog.Logger) error {
	if cfg.Products < 1 {
		return fmt.Errorf("CATALOG_GEN_PRODUCTS must be positive, got %d", cfg.Products)
	}

	products := generate(cfg.Products, cfg.Seed)

	// Refuse to write a catalog the storefront would reject.
	snap, err := catalog.NewSnapshot(products, cfg.Output)
	if err != nil {
		return fmt.Errorf("generated catalog is invalid: %w", err)
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	groups := catalog.GroupTypes(catalog.DefaultGroups, snap.Types())
	log.Info("catalog generated",
		slog.String("output", cfg.Output),
		slog.Int("products", snap.Len()),
		slog.Int("product_types", len(snap.Types())),
		slog.Int("category_groups", len(groups)),
	)
	return nil
}

func main() {
	var cfg genConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("fanrc-catalog-gen", cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("catalog generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
