package catalog

import "github.com/helloivanco/fanrc/internal/domain"

func testProducts() []domain.Product {
	return []domain.Product{
		{
			ID: 1, Title: "Carbon Fiber Chassis", Handle: "carbon-fiber-chassis",
			DescriptionText: "Lightweight 2.5mm plate for the RC10.",
			ProductType:     "Chassis Parts", Tags: []string{"rc10", "carbon"},
			Variants: []domain.Variant{{ID: 100, Title: "Default Title", SKU: "CFC-1", Price: 8999, Available: true}},
		},
		{
			ID: 2, Title: "Titanium Turnbuckle Set", Handle: "titanium-turnbuckle-set",
			DescriptionText: "Left/right threaded.",
			ProductType:     "Turnbuckles", Tags: []string{"B4", "titanium"},
			Variants: []domain.Variant{
				{ID: 200, Title: "Short", SKU: "TT-S", Price: 2499, Available: true},
				{ID: 201, Title: "Long", SKU: "TT-L", Price: 2799},
			},
		},
		{
			ID: 3, Title: "Hex Driver", Handle: "hex-driver",
			DescriptionText: "Hardened tip.",
			ProductType:     "tools", Tags: []string{"workshop"},
			Variants: []domain.Variant{{ID: 300, Title: "Default Title", SKU: "HD-1", Price: 1200, Available: true}},
		},
		{
			ID: 4, Title: "Front Bumper", Handle: "front-bumper",
			DescriptionText: "Fits carbon chassis conversions.",
			ProductType:     "bumpers", Tags: nil,
			Variants: []domain.Variant{{ID: 400, Title: "Default Title", SKU: "FB-1", Price: 999}},
		},
		{
			ID: 5, Title: "Decal Sheet", Handle: "decal-sheet",
			ProductType: "Stickers",
			Variants:    []domain.Variant{{ID: 500, Title: "Default Title", SKU: "DS-1", Price: 500}},
		},
	}
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, len(products))
	for i := range products {
		out[i] = products[i].ID
	}
	return out
}
