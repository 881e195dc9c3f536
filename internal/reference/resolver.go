package reference

import (
	"github.com/warroom/scoring-service/internal/model"
)

// defaultPaths binds each graded field name to an ordered key path into the
// reference tree.
var defaultPaths = map[string][]string{
	"founders":             {"leadership_and_ownership", "founders", "company"},
	"key_executives":       {"leadership_and_ownership", "key_executives"},
	"market_share":         {"market", "competitive_position", "market_share", "overall"},
	"geographic_footprint": {"market", "geographic_footprint"},
	"product_lines":        {"products", "lines"},
	"pricing":              {"products", "lines"},
	"social_presence":      {"social_presence", "platforms"},
	"influencers":          {"social_presence", "platforms"},
	"funding":              {"funding", "revenue", "h1_2024_usd_billion"},
	"investors":            {"funding", "investors"},
	"revenue":              {"funding", "revenue"},
	"citations":            {"social_presence", "platforms"},
	"b2c":                  {"customers", "b2c"},
	"b2b":                  {"customers", "b2b"},
	"reviews":              {"customers", "reviews"},
	"partners":             {"partnerships_and_supply_chain", "strategic_partners"},
	"suppliers":            {"partnerships_and_supply_chain", "key_suppliers"},
	"growth":               {"growth", "recent_growth"},
	"expansions":           {"growth", "expansions"},
}

// Resolver walks fixed key paths into a reference dataset.
type Resolver struct {
	data  Dataset
	paths map[string][]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPaths replaces the default field-to-path table.
func WithPaths(paths map[string][]string) Option {
	return func(r *Resolver) { r.paths = paths }
}

// NewResolver creates a Resolver over the given dataset.
func NewResolver(data Dataset, opts ...Option) *Resolver {
	r := &Resolver{data: data, paths: defaultPaths}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a field name to its reference value. A missing binding, an
// absent key, or a non-keyed intermediate node all report not-found; none
// of these are errors.
func (r *Resolver) Resolve(field string) (any, bool) {
	path, ok := r.paths[field]
	if !ok {
		return nil, false
	}
	var current any = map[string]any(r.data)
	for _, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Label renders a reference value as comparison text. Keyed records prefer a
// "name" attribute, then "title", before falling back to textual coercion.
func Label(v any) string {
	if record, ok := v.(map[string]any); ok {
		if name, ok := record["name"]; ok {
			return model.CoerceText(name)
		}
		if title, ok := record["title"]; ok {
			return model.CoerceText(title)
		}
	}
	return model.CoerceText(v)
}
