package rowsource

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "file with BOM",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("pan,expiry")...),
			want:  "pan,expiry",
		},
		{
			name:  "file without BOM",
			input: []byte("pan,expiry"),
			want:  "pan,expiry",
		},
		{
			name:  "empty file",
			input: []byte{},
			want:  "",
		},
		{
			name:  "only BOM",
			input: []byte{0xEF, 0xBB, 0xBF},
			want:  "",
		},
		{
			name:  "partial BOM preserved",
			input: []byte{0xEF, 0xBB, 'a'},
			want:  string([]byte{0xEF, 0xBB, 'a'}),
		},
		{
			name:  "short non-BOM file",
			input: []byte("ab"),
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUTF8SanitizingReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "valid ascii",
			input: []byte("hello,world"),
			want:  "hello,world",
		},
		{
			name:  "valid multibyte",
			input: []byte("café,münchen"),
			want:  "café,münchen",
		},
		{
			name:  "invalid byte replaced",
			input: []byte{'h', 'e', 0x80, 'l', 'o'},
			want:  "he?lo",
		},
		{
			name:  "truncated rune at eof replaced",
			input: []byte{'a', 0xC3},
			want:  "a?",
		},
		{
			name:  "empty",
			input: []byte{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newUTF8SanitizingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUTF8SanitizingReaderSplitRune(t *testing.T) {
	// A multi-byte rune split across two underlying reads must survive.
	input := "ab" + "é" + "cd"
	r := newUTF8SanitizingReader(iotest{reader: strings.NewReader(input), chunk: 3})
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

// iotest yields at most chunk bytes per Read to force split sequences.
type iotest struct {
	reader io.Reader
	chunk  int
}

func (i iotest) Read(p []byte) (int, error) {
	if len(p) > i.chunk {
		p = p[:i.chunk]
	}
	return i.reader.Read(p)
}

func TestCountingReader(t *testing.T) {
	c := &countingReader{r: strings.NewReader(strings.Repeat("x", 1000))}
	n, err := io.Copy(io.Discard, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1000 || c.count != 1000 {
		t.Errorf("copied %d, counted %d, want 1000", n, c.count)
	}
}
