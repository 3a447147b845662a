package pipeline

import "github.com/cardstream/ingest/internal/classify"

// MaxPreviewRows bounds how many sample rows a preview renders.
const MaxPreviewRows = 20

// PreviewRows prepares sample rows for human confirmation before an upload.
// Every cell goes through the display masker, so anything that looks like a
// valid card number is redacted to its last four digits. Masking is a
// display concern only: the rows handed to Run are untouched.
func PreviewRows(rows [][]string) [][]string {
	if len(rows) > MaxPreviewRows {
		rows = rows[:MaxPreviewRows]
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		masked := make([]string, len(row))
		for j, v := range row {
			masked[j] = classify.MaskForDisplay(v)
		}
		out[i] = masked
	}
	return out
}
