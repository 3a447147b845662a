package rowsource

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestOpenCSV(t *testing.T) {
	path := writeTempCSV(t, "Card Number,First Name\n4111111111111111,Jane\n5555555555554444,Nick\n")

	src, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV() error: %v", err)
	}
	defer src.Close()

	headers := src.Headers()
	if len(headers) != 2 || headers[0] != "Card Number" || headers[1] != "First Name" {
		t.Fatalf("Headers() = %v", headers)
	}

	rows, err := src.TakeRows(10)
	if err != nil {
		t.Fatalf("TakeRows() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "4111111111111111" || rows[1][1] != "Nick" {
		t.Errorf("unexpected rows: %v", rows)
	}

	// Exhausted source keeps returning empty.
	rows, err = src.TakeRows(10)
	if err != nil {
		t.Fatalf("TakeRows() after EOF error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows after exhaustion, want 0", len(rows))
	}
}

func TestCSVTakeRowsBatching(t *testing.T) {
	content := "a\n"
	for i := 0; i < 5; i++ {
		content += "v\n"
	}
	src, err := OpenCSV(writeTempCSV(t, content))
	if err != nil {
		t.Fatalf("OpenCSV() error: %v", err)
	}
	defer src.Close()

	for _, want := range []int{2, 2, 1, 0} {
		rows, err := src.TakeRows(2)
		if err != nil {
			t.Fatalf("TakeRows() error: %v", err)
		}
		if len(rows) != want {
			t.Fatalf("batch size = %d, want %d", len(rows), want)
		}
	}
}

func TestCSVReopen(t *testing.T) {
	src, err := OpenCSV(writeTempCSV(t, "h1,h2\na,b\nc,d\n"))
	if err != nil {
		t.Fatalf("OpenCSV() error: %v", err)
	}
	defer src.Close()

	if _, err := src.TakeRows(100); err != nil {
		t.Fatalf("first pass error: %v", err)
	}

	if err := src.Reopen(); err != nil {
		t.Fatalf("Reopen() error: %v", err)
	}
	rows, err := src.TakeRows(100)
	if err != nil {
		t.Fatalf("second pass error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("second pass rows = %d, want 2", len(rows))
	}
}

func TestCSVBOMAndRaggedRows(t *testing.T) {
	content := string([]byte{0xEF, 0xBB, 0xBF}) + "a,b,c\n1,2\n3,4,5,6\n"
	src, err := OpenCSV(writeTempCSV(t, content))
	if err != nil {
		t.Fatalf("OpenCSV() error: %v", err)
	}
	defer src.Close()

	if h := src.Headers(); h[0] != "a" {
		t.Errorf("BOM not stripped from header: %q", h[0])
	}

	rows, err := src.TakeRows(10)
	if err != nil {
		t.Fatalf("TakeRows() error: %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 4 {
		t.Errorf("ragged rows not preserved: %v", rows)
	}
}

func TestCSVEmptyFile(t *testing.T) {
	src, err := OpenCSV(writeTempCSV(t, ""))
	if err != nil {
		t.Fatalf("OpenCSV() error: %v", err)
	}
	defer src.Close()

	if h := src.Headers(); len(h) != 0 {
		t.Errorf("Headers() = %v, want empty", h)
	}
	rows, err := src.TakeRows(5)
	if err != nil || len(rows) != 0 {
		t.Errorf("TakeRows() = %v, %v; want empty, nil", rows, err)
	}
}

func TestCSVCloseIsIdempotent(t *testing.T) {
	src, err := OpenCSV(writeTempCSV(t, "a\n1\n"))
	if err != nil {
		t.Fatalf("OpenCSV() error: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}
