package rowsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVSource streams rows from a CSV file on disk. The first record is
// treated as the header row. The reader stack skips a UTF-8 BOM, sanitizes
// invalid UTF-8, and counts bytes for progress reporting.
type CSVSource struct {
	path    string
	file    *os.File
	counter *countingReader
	reader  *csv.Reader
	headers []string
	size    int64
	drained bool
}

// OpenCSV opens path and reads its header row. The returned source holds an
// open file handle; callers own Close on both success and failure paths.
func OpenCSV(path string) (*CSVSource, error) {
	s := &CSVSource{path: path}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVSource) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}

	if fi, err := f.Stat(); err == nil {
		s.size = fi.Size()
	}

	counter := &countingReader{r: newUTF8SanitizingReader(newBOMSkippingReader(f))}
	r := csv.NewReader(counter)
	r.FieldsPerRecord = -1 // ragged rows are the caller's problem, not a parse error
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		header = nil
	} else if err != nil {
		f.Close()
		return fmt.Errorf("read csv header: %w", err)
	}

	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	s.file = f
	s.counter = counter
	s.reader = r
	s.headers = header
	s.drained = header == nil
	return nil
}

// Headers returns the column names from the header row. Names are trimmed
// but otherwise untouched; they are not required to be unique.
func (s *CSVSource) Headers() []string {
	return s.headers
}

// TakeRows reads up to n data rows. An empty result signals end of stream.
func (s *CSVSource) TakeRows(n int) ([][]string, error) {
	if s.drained || n <= 0 {
		return nil, nil
	}

	rows := make([][]string, 0, n)
	for len(rows) < n {
		rec, err := s.reader.Read()
		if err == io.EOF {
			s.drained = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// Reopen resets the source to the beginning of the data for a second full
// pass. The header row is re-read and re-verified against the first pass.
func (s *CSVSource) Reopen() error {
	prev := s.headers
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	if err := s.open(); err != nil {
		return err
	}
	if len(prev) != len(s.headers) {
		return fmt.Errorf("reopen csv: header changed from %d to %d columns", len(prev), len(s.headers))
	}
	return nil
}

// BytesRead returns how many bytes have been consumed from the file in the
// current pass.
func (s *CSVSource) BytesRead() int64 {
	if s.counter == nil {
		return 0
	}
	return s.counter.count
}

// Size returns the file size in bytes, or 0 if unknown.
func (s *CSVSource) Size() int64 {
	return s.size
}

// Close releases the underlying file handle. Safe to call more than once.
func (s *CSVSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
