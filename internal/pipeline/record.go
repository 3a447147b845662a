package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/cardstream/ingest/internal/classify"
)

// Cell is one labeled value inside an upload record. Label and Kind are
// separate fields rather than a concatenated display key, so the collector
// can read the semantic role without parsing formatting out of the label.
type Cell struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Record is one source row after labeling, cells in column order.
type Record []Cell

// BatchEncoding names the serialization of a chunk's plaintext.
const BatchEncoding = "json"

// buildRecord labels every cell of a row. The export label is the custom
// title if one exists for the column, else the original header, else a
// placeholder derived from the column index. The resolved FieldKind rides
// along so the receiving system never re-infers roles.
func buildRecord(row []string, headers []string, mapping classify.ColumnMapping, titles classify.CustomTitles) Record {
	rec := make(Record, len(row))
	for i, value := range row {
		kind := classify.Unknown
		if k, ok := mapping[i]; ok {
			kind = k
		}
		rec[i] = Cell{
			Label: labelFor(i, headers, titles),
			Kind:  kind.String(),
			Value: value,
		}
	}
	return rec
}

// labelFor resolves the export label for a column index.
func labelFor(i int, headers []string, titles classify.CustomTitles) string {
	if t, ok := titles[i]; ok && t != "" {
		return t
	}
	if i < len(headers) && headers[i] != "" {
		return headers[i]
	}
	return fmt.Sprintf("column_%d", i)
}

// encodeBatch serializes a batch of labeled records into the deterministic
// byte form that gets encrypted. Cell order follows column order and struct
// field order is fixed, so identical input bytes encode identically.
func encodeBatch(records []Record) ([]byte, error) {
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return b, nil
}
