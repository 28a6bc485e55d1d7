// Package kinds holds the static per-kind presentation table: labels, icons
// and wording that change with the active collection's kind.
package kinds

import "github.com/vitrine-app/vitrine/internal/model"

// Config is the presentation bundle for one collection kind.
type Config struct {
	Kind       model.Kind `json:"kind"`
	Singular   string     `json:"singular"`
	Plural     string     `json:"plural"`
	Icon       string     `json:"icon"`
	BrandLabel string     `json:"brandLabel"`
	ModelLabel string     `json:"modelLabel"`
	// UsageVerb describes taking an item out, as in "Wear today".
	UsageVerb  string `json:"usageVerb"`
	EmptyState string `json:"emptyState"`
}

var table = map[model.Kind]Config{
	model.KindWatches: {
		Kind:       model.KindWatches,
		Singular:   "Watch",
		Plural:     "Watches",
		Icon:       "watch",
		BrandLabel: "Brand",
		ModelLabel: "Reference",
		UsageVerb:  "Wear",
		EmptyState: "No watches yet. Add your first piece.",
	},
	model.KindSneakers: {
		Kind:       model.KindSneakers,
		Singular:   "Sneaker",
		Plural:     "Sneakers",
		Icon:       "footprints",
		BrandLabel: "Brand",
		ModelLabel: "Colorway",
		UsageVerb:  "Rock",
		EmptyState: "No sneakers yet. Add your first pair.",
	},
	model.KindPurses: {
		Kind:       model.KindPurses,
		Singular:   "Purse",
		Plural:     "Purses",
		Icon:       "shopping-bag",
		BrandLabel: "Designer",
		ModelLabel: "Style",
		UsageVerb:  "Carry",
		EmptyState: "No purses yet. Add your first bag.",
	},
}

// For returns the bundle for k. Unknown kinds get the default kind's bundle.
func For(k model.Kind) Config {
	if c, ok := table[k]; ok {
		return c
	}
	return table[model.DefaultKind]
}

// All returns every bundle in a fixed order.
func All() []Config {
	return []Config{table[model.KindWatches], table[model.KindSneakers], table[model.KindPurses]}
}
