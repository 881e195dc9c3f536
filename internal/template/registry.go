package template

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/warroom/scoring-service/internal/similarity"
)

// ErrUnknownBattle is returned when a battle number has no template.
var ErrUnknownBattle = eris.New("template: unknown battle number")

// Registry holds the immutable battle template table, built once at startup.
type Registry struct {
	templates map[int]*BattleTemplate
}

// NewRegistry validates the built-in templates, binds matchers from the
// given thresholds, and returns the registry.
func NewRegistry(th similarity.Thresholds) (*Registry, error) {
	return newRegistry(builtinTemplates(), th)
}

// NewRegistryFromFile is NewRegistry with a YAML overlay: templates in the
// file replace or extend the built-in table by battle number.
func NewRegistryFromFile(path string, th similarity.Thresholds) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "template: read %s", path)
	}

	var overlay struct {
		Templates []*BattleTemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, eris.Wrapf(err, "template: parse %s", path)
	}

	templates := builtinTemplates()
	merged := make(map[int]*BattleTemplate, len(templates))
	for _, t := range templates {
		merged[t.BattleNumber] = t
	}
	for _, t := range overlay.Templates {
		merged[t.BattleNumber] = t
	}

	all := make([]*BattleTemplate, 0, len(merged))
	for _, t := range merged {
		all = append(all, t)
	}
	return newRegistry(all, th)
}

func newRegistry(templates []*BattleTemplate, th similarity.Thresholds) (*Registry, error) {
	r := &Registry{templates: make(map[int]*BattleTemplate, len(templates))}
	for _, t := range templates {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if err := t.bind(th); err != nil {
			return nil, err
		}
		if _, dup := r.templates[t.BattleNumber]; dup {
			return nil, eris.Errorf("template: duplicate battle number %d", t.BattleNumber)
		}
		r.templates[t.BattleNumber] = t
	}
	return r, nil
}

// Get returns the template for a battle number.
func (r *Registry) Get(battleNo int) (*BattleTemplate, error) {
	t, ok := r.templates[battleNo]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownBattle, "battle %d", battleNo)
	}
	return t, nil
}

// All returns every template ordered by battle number.
func (r *Registry) All() []*BattleTemplate {
	all := make([]*BattleTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BattleNumber < all[j].BattleNumber })
	return all
}

func builtinTemplates() []*BattleTemplate {
	return []*BattleTemplate{
		{
			BattleNumber: 1,
			Name:         "Leadership Recon",
			FieldOrder:   []string{"founders", "key_executives", "market_share", "geographic_footprint"},
			FieldWeights: map[string]float64{
				"founders":             12.0,
				"key_executives":       18.0,
				"market_share":         20.0,
				"geographic_footprint": 10.0,
			},
			RequiredFields: []string{"founders", "key_executives", "market_share"},
			FieldTypes: map[string]similarity.FieldType{
				"founders":             similarity.TypeName,
				"key_executives":       similarity.TypeName,
				"market_share":         similarity.TypePercentage,
				"geographic_footprint": similarity.TypeCategory,
			},
		},
		{
			BattleNumber: 2,
			Name:         "Product Arsenal",
			FieldOrder:   []string{"product_lines", "pricing", "social_presence", "influencers"},
			FieldWeights: map[string]float64{
				"product_lines":   30.0,
				"pricing":         15.0,
				"social_presence": 20.0,
				"influencers":     15.0,
			},
			RequiredFields: []string{"product_lines", "pricing", "social_presence"},
			FieldTypes: map[string]similarity.FieldType{
				"product_lines":   similarity.TypeCategory,
				"pricing":         similarity.TypeNumber,
				"social_presence": similarity.TypeCategory,
				"influencers":     similarity.TypeName,
			},
		},
		{
			BattleNumber: 3,
			Name:         "Funding Fortification",
			FieldOrder:   []string{"funding", "investors", "revenue", "citations"},
			FieldWeights: map[string]float64{
				"funding":   40.0,
				"investors": 20.0,
				"revenue":   25.0,
				"citations": 15.0,
			},
			RequiredFields: []string{"funding", "investors", "revenue"},
			FieldTypes: map[string]similarity.FieldType{
				"funding":   similarity.TypeNumber,
				"investors": similarity.TypeName,
				"revenue":   similarity.TypeNumber,
				"citations": similarity.TypeURL,
			},
		},
		{
			BattleNumber: 4,
			Name:         "Customer Frontlines",
			FieldOrder:   []string{"b2c", "b2b", "reviews", "citations"},
			FieldWeights: map[string]float64{
				"b2c":       25.0,
				"b2b":       25.0,
				"reviews":   25.0,
				"citations": 25.0,
			},
			RequiredFields: []string{"b2c", "b2b", "reviews"},
			FieldTypes: map[string]similarity.FieldType{
				"b2c":       similarity.TypeCategory,
				"b2b":       similarity.TypeCategory,
				"reviews":   similarity.TypeNumber,
				"citations": similarity.TypeURL,
			},
		},
		{
			BattleNumber: 5,
			Name:         "Alliance Forge",
			FieldOrder:   []string{"partners", "suppliers", "growth", "expansions", "citations"},
			FieldWeights: map[string]float64{
				"partners":   25.0,
				"suppliers":  20.0,
				"growth":     25.0,
				"expansions": 15.0,
				"citations":  15.0,
			},
			RequiredFields: []string{"partners", "suppliers", "growth"},
			FieldTypes: map[string]similarity.FieldType{
				"partners":   similarity.TypeName,
				"suppliers":  similarity.TypeName,
				"growth":     similarity.TypePercentage,
				"expansions": similarity.TypeCategory,
				"citations":  similarity.TypeURL,
			},
		},
	}
}
