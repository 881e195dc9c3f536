// Package reference resolves graded field names to values inside the
// ground-truth dataset for the subject company.
package reference

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// Dataset is the nested ground-truth tree, loaded once at startup and never
// mutated afterwards.
type Dataset map[string]any

// LoadFile reads a JSON reference dataset from disk.
func LoadFile(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reference: read %s", path)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, eris.Wrapf(err, "reference: parse %s", path)
	}
	return ds, nil
}
