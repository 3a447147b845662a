package rowsource

// streaming.go wraps raw file readers so CSV parsing never sees a UTF-8 BOM
// or invalid byte sequences, and so callers can observe read progress. All
// wrappers work in O(buffer) memory; the file is never loaded whole.

import (
	"io"
	"unicode/utf8"
)

// bomSkippingReader strips a leading UTF-8 BOM (0xEF 0xBB 0xBF), commonly
// added by Windows spreadsheet exports.
type bomSkippingReader struct {
	r       io.Reader
	checked bool
	held    []byte // bytes read during the BOM probe that were not a BOM
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{r: r}
}

func (b *bomSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		probe := make([]byte, 3)
		n, err := io.ReadFull(b.r, probe)
		if n == 3 && probe[0] == 0xEF && probe[1] == 0xBB && probe[2] == 0xBF {
			// BOM consumed; fall through to a normal read.
		} else {
			b.held = probe[:n]
		}
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(b.held) > 0 {
		n := copy(p, b.held)
		b.held = b.held[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8SanitizingReader replaces invalid UTF-8 bytes with '?' on the fly.
// A single replacement byte (rather than U+FFFD) keeps the output no longer
// than the input, so sanitizing can happen in place.
type utf8SanitizingReader struct {
	r       io.Reader
	pending []byte // possible start of a multi-byte rune split across reads
	eof     bool
}

func newUTF8SanitizingReader(r io.Reader) *utf8SanitizingReader {
	return &utf8SanitizingReader{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8SanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[off:])
	n += off
	if err == io.EOF {
		s.eof = true
	}
	if n == 0 {
		return 0, err
	}

	if allASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n]), err
}

// sanitize rewrites data in place, holding back an incomplete trailing rune
// for the next read unless the stream already hit EOF.
func (s *utf8SanitizingReader) sanitize(data []byte) int {
	w := 0
	for r := 0; r < len(data); {
		if !s.eof && incompleteTail(data[r:]) {
			s.pending = append(s.pending, data[r:]...)
			return w
		}
		ch, size := utf8.DecodeRune(data[r:])
		if ch == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			r++
			continue
		}
		copy(data[w:], data[r:r+size])
		w += size
		r += size
	}
	return w
}

// incompleteTail reports whether data is the truncated start of a valid
// multi-byte rune.
func incompleteTail(data []byte) bool {
	b := data[0]
	var want int
	switch {
	case b < 0xC0:
		return false
	case b < 0xE0:
		want = 2
	case b < 0xF0:
		want = 3
	default:
		want = 4
	}
	if len(data) >= want {
		return false
	}
	for _, c := range data[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// countingReader tracks bytes consumed from the underlying reader so the
// pipeline can report progress on sources whose row count is unknown.
type countingReader struct {
	r     io.Reader
	count int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}
