// Package rowsource defines the ordered-row contract the pipeline consumes
// and provides a streaming CSV implementation. Parsing mechanics stay here;
// the classifier and pipeline only ever see headers and rows of strings.
package rowsource

// Source is an ordered stream of tabular rows.
//
// Headers is called once per logical pass; names are not required to be
// unique. TakeRows returns up to n rows, each an ordered slice of string
// cells (rows may be shorter than the header count when the underlying data
// is ragged); it returns fewer than n rows only near the end of the stream,
// and an empty result signals exhaustion.
//
// A Source must support Reopen for a second full pass: classification reads
// only a bounded sample, while the upload phase streams the whole file.
type Source interface {
	Headers() []string
	TakeRows(n int) ([][]string, error)
	Reopen() error
	Close() error
}
