package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warroom/scoring-service/internal/similarity"
)

func testThresholds() similarity.Thresholds {
	return similarity.Thresholds{
		NameFull:          0.90,
		NamePartial:       0.70,
		CategoryFull:      0.85,
		DateYears:         1,
		NumericFullPct:    5.0,
		NumericPartialPct: 10.0,
		PercentFullPts:    2.0,
		PercentPartialPts: 5.0,
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(testThresholds())
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 5)

	// Ordered by battle number.
	for i, tpl := range all {
		assert.Equal(t, i+1, tpl.BattleNumber)
	}

	// Weight sums are not uniform across battles.
	sums := make([]float64, 0, len(all))
	for _, tpl := range all {
		sums = append(sums, tpl.WeightSum())
	}
	assert.Equal(t, []float64{60, 80, 100, 100, 100}, sums)
}

func TestRegistryGet(t *testing.T) {
	reg, err := NewRegistry(testThresholds())
	require.NoError(t, err)

	tpl, err := reg.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Leadership Recon", tpl.Name)
	assert.NotNil(t, tpl.Matcher("founders"))

	_, err = reg.Get(99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownBattle)
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		tpl     BattleTemplate
		wantErr string
	}{
		{
			name: "valid",
			tpl: BattleTemplate{
				BattleNumber: 7,
				Name:         "Test",
				FieldOrder:   []string{"a"},
				FieldWeights: map[string]float64{"a": 10},
			},
		},
		{
			name: "zero battle number",
			tpl: BattleTemplate{
				FieldOrder:   []string{"a"},
				FieldWeights: map[string]float64{"a": 10},
			},
			wantErr: "battle_number must be positive",
		},
		{
			name: "negative weight",
			tpl: BattleTemplate{
				BattleNumber: 7,
				FieldOrder:   []string{"a"},
				FieldWeights: map[string]float64{"a": -1},
			},
			wantErr: "must be positive",
		},
		{
			name: "required field without weight",
			tpl: BattleTemplate{
				BattleNumber:   7,
				FieldOrder:     []string{"a"},
				FieldWeights:   map[string]float64{"a": 10},
				RequiredFields: []string{"b"},
			},
			wantErr: "required field b has no weight",
		},
		{
			name: "typed field without weight",
			tpl: BattleTemplate{
				BattleNumber: 7,
				FieldOrder:   []string{"a"},
				FieldWeights: map[string]float64{"a": 10},
				FieldTypes:   map[string]similarity.FieldType{"b": similarity.TypeName},
			},
			wantErr: "typed field b has no weight",
		},
		{
			name: "field order incomplete",
			tpl: BattleTemplate{
				BattleNumber: 7,
				FieldWeights: map[string]float64{"a": 10, "b": 10},
				FieldOrder:   []string{"a"},
			},
			wantErr: "every weighted field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tpl.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBindRejectsUnknownFieldType(t *testing.T) {
	tpl := &BattleTemplate{
		BattleNumber: 7,
		FieldOrder:   []string{"a"},
		FieldWeights: map[string]float64{"a": 10},
		FieldTypes:   map[string]similarity.FieldType{"a": "sentiment"},
	}
	_, err := newRegistry([]*BattleTemplate{tpl}, testThresholds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field type")
}

func TestBindDefaultsUntypedFieldsToName(t *testing.T) {
	tpl := &BattleTemplate{
		BattleNumber: 7,
		FieldOrder:   []string{"a"},
		FieldWeights: map[string]float64{"a": 10},
	}
	reg, err := newRegistry([]*BattleTemplate{tpl}, testThresholds())
	require.NoError(t, err)

	got, err := reg.Get(7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Matcher("a").Score("Acme", "ACME"))
}

func TestNewRegistryFromFile(t *testing.T) {
	overlay := `
templates:
  - battle_number: 1
    name: Custom Recon
    fields: [founders]
    field_weights:
      founders: 60
    required_fields: [founders]
    field_types:
      founders: name
  - battle_number: 6
    name: Extra Battle
    fields: [partners]
    field_weights:
      partners: 50
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o644))

	reg, err := NewRegistryFromFile(path, testThresholds())
	require.NoError(t, err)

	// Battle 1 replaced by the overlay.
	tpl, err := reg.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Custom Recon", tpl.Name)
	assert.Equal(t, 60.0, tpl.WeightSum())

	// Battle 6 added, built-ins 2..5 kept.
	assert.Len(t, reg.All(), 6)
	tpl2, err := reg.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Product Arsenal", tpl2.Name)
}

func TestNewRegistryFromFileMissing(t *testing.T) {
	_, err := NewRegistryFromFile(filepath.Join(t.TempDir(), "absent.yaml"), testThresholds())
	require.Error(t, err)
}

func TestDuplicateBattleNumber(t *testing.T) {
	mk := func() *BattleTemplate {
		return &BattleTemplate{
			BattleNumber: 7,
			FieldOrder:   []string{"a"},
			FieldWeights: map[string]float64{"a": 10},
		}
	}
	_, err := newRegistry([]*BattleTemplate{mk(), mk()}, testThresholds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate battle number")
}
