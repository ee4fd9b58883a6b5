package catalog

import (
	"slices"
	"strings"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/pkg/slug"
)

// OtherGroupName collects product types that belong to no configured group.
const OtherGroupName = "Other"

// Group is a named set of product types shown together in the filter panel.
// Membership is case-insensitive.
type Group struct {
	Name  string
	Types []string
}

// DefaultGroups is the storefront's product type grouping.
var DefaultGroups = []Group{
	{Name: "Chassis & Structure", Types: []string{
		"chassis", "Chassis Parts", "bulkheads", "front bulkhead", "bumpers",
		"block carriers", "battery mounts", "mounts",
	}},
	{Name: "Suspension", Types: []string{
		"Suspension Parts", "suspension parts", "Shock Parts", "shock parts",
		"Shock Tower", "front arms", "rear arms", "Turnbuckles", "hinge pins",
	}},
	{Name: "Transmission & Drivetrain", Types: []string{
		"Transmission Parts", "transmission", "transmission case", "gears",
		"hub smission", "Motor Plate",
	}},
	{Name: "Steering", Types: []string{
		"steering parts", "Steering Parts", "bellcranks", "steering blocks",
	}},
	{Name: "Body & Aero", Types: []string{
		"body parts", "body posts", "RC10 B3 body", "rc10 body", "nose tubes",
		"wing tubes", "Nose Plate",
	}},
	{Name: "Hardware & Components", Types: []string{
		"Hardware", "hardware", "RC10 Hardware", "Gear Cover",
	}},
	{Name: "Materials", Types: []string{
		"Carbon Fiber Parts", "Titanium Parts", "Plastic Parts",
	}},
	{Name: "Complete Sets & Kits", Types: []string{
		"Plastic Set", "Buggy Car Kits",
	}},
	{Name: "Model-Specific Parts", Types: []string{
		"B4 parts", "T4 parts", "RC10 Parts",
	}},
	{Name: "Tools", Types: []string{
		"tools",
	}},
}

// CategoryGroup is a group resolved against the product types actually
// present in a catalog.
type CategoryGroup struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// ProductTypes returns the distinct non-empty product types, sorted.
func ProductTypes(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range products {
		t := products[i].ProductType
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// GroupTypes resolves groups against the catalog's product types. Groups
// without a present type are omitted; types in no group land in a trailing
// "Other" group. The types passed in keep their catalog spelling.
func GroupTypes(groups []Group, types []string) []CategoryGroup {
	claimed := make(map[string]struct{})
	out := make([]CategoryGroup, 0, len(groups)+1)

	for _, g := range groups {
		members := make(map[string]struct{}, len(g.Types))
		for _, t := range g.Types {
			members[strings.ToLower(t)] = struct{}{}
		}

		var matched []string
		for _, t := range types {
			if _, ok := members[strings.ToLower(t)]; ok {
				matched = append(matched, t)
				claimed[t] = struct{}{}
			}
		}
		if len(matched) > 0 {
			out = append(out, CategoryGroup{ID: slug.Generate(g.Name), Name: g.Name, Types: matched})
		}
	}

	var other []string
	for _, t := range types {
		if _, ok := claimed[t]; !ok {
			other = append(other, t)
		}
	}
	if len(other) > 0 {
		out = append(out, CategoryGroup{ID: slug.Generate(OtherGroupName), Name: OtherGroupName, Types: other})
	}
	return out
}
