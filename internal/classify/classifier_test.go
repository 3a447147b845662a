package classify

import (
	"fmt"
	"testing"
)

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestClassifyPan(t *testing.T) {
	samples := repeat("4111111111111111", 20)

	g := Classify("Card Number", samples)
	if g.Kind != Pan {
		t.Fatalf("kind = %v, want Pan", g.Kind)
	}
	if g.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", g.Score)
	}
	if len(g.Reasons) == 0 {
		t.Error("expected reasons to be populated")
	}
}

func TestClassifyPanWithoutHeader(t *testing.T) {
	// All values Luhn-valid: the value signal alone carries the guess.
	g := Classify("", repeat("5555555555554444", 10))
	if g.Kind != Pan {
		t.Fatalf("kind = %v, want Pan", g.Kind)
	}
	if g.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", g.Score)
	}
}

func TestClassifyCvv(t *testing.T) {
	g := Classify("CVV2", []string{"123", "4567"})
	if g.Kind != Cvv {
		t.Fatalf("kind = %v, want Cvv", g.Kind)
	}
	if g.Score <= 0.55 {
		t.Errorf("score = %v, want > 0.55", g.Score)
	}
}

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		samples []string
		want    FieldKind
	}{
		{
			name:    "expiry MM/YY",
			header:  "Expiration",
			samples: []string{"01/27", "12/2026", "06-29"},
			want:    ExpCombined,
		},
		{
			name:    "email",
			header:  "Email",
			samples: []string{"jane.doe@example.com", "orders@example.net"},
			want:    Email,
		},
		{
			name:    "phone",
			header:  "Phone",
			samples: []string{"+1 610 555 0199", "(215) 555-0100"},
			want:    Phone,
		},
		{
			name:    "postal code",
			header:  "Zip",
			samples: []string{"19406", "19103-2901"},
			want:    PostalCode,
		},
		{
			name:    "state codes",
			header:  "State",
			samples: []string{"PA", "nj", "DE", "MD"},
			want:    State,
		},
		{
			name:    "first name by header only",
			header:  "First Name",
			samples: []string{"Jane", "Nick"},
			want:    FirstName,
		},
		{
			name:    "last name by header only",
			header:  "Surname",
			samples: []string{"Doe", "Smith"},
			want:    LastName,
		},
		{
			name:    "free text resolves to unknown",
			header:  "Notes",
			samples: []string{"called about order", "follow up next week"},
			want:    Unknown,
		},
		{
			name:    "weak signal below threshold is unknown",
			header:  "",
			samples: []string{"123", "hello", "world", "again"},
			want:    Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Classify(tt.header, tt.samples)
			if g.Kind != tt.want {
				t.Errorf("kind = %v (score %v, reasons %v), want %v", g.Kind, g.Score, g.Reasons, tt.want)
			}
		})
	}
}

func TestClassifySampleCap(t *testing.T) {
	// Values past SampleCap are ignored: the tail of garbage must not drag
	// the score down.
	samples := repeat("4111111111111111", SampleCap)
	samples = append(samples, repeat("not a card", 500)...)

	g := Classify("", samples)
	if g.Kind != Pan || g.Score != 1.0 {
		t.Errorf("got kind %v score %v, want Pan 1.0", g.Kind, g.Score)
	}
}

func TestGuessColumns(t *testing.T) {
	headers := []string{"Card Number", "First Name", "Notes"}
	rows := [][]string{
		{"4111111111111111", "Jane", "x"},
		{"5555555555554444", "Nick", "y"},
	}

	guesses := GuessColumns(headers, rows)
	if len(guesses) != 3 {
		t.Fatalf("got %d guesses, want 3", len(guesses))
	}

	// Sorted by descending score: the PAN column wins.
	if guesses[0].Index != 0 || guesses[0].Kind != Pan {
		t.Errorf("top guess = column %d kind %v, want column 0 Pan", guesses[0].Index, guesses[0].Kind)
	}
	for i := 1; i < len(guesses); i++ {
		if guesses[i].Score > guesses[i-1].Score {
			t.Errorf("guesses not sorted by descending score at %d", i)
		}
	}

	byIndex := map[int]ColumnGuess{}
	for _, g := range guesses {
		byIndex[g.Index] = g
	}
	if byIndex[1].Kind != FirstName {
		t.Errorf("column 1 kind = %v, want FirstName", byIndex[1].Kind)
	}
	if byIndex[2].Kind != Unknown {
		t.Errorf("column 2 kind = %v, want Unknown", byIndex[2].Kind)
	}
}

func TestGuessColumnsRaggedRows(t *testing.T) {
	// Rows wider than the header row still produce a guess per column.
	headers := []string{"Card"}
	rows := [][]string{
		{"4111111111111111", "jane@example.com"},
	}

	guesses := GuessColumns(headers, rows)
	if len(guesses) != 2 {
		t.Fatalf("got %d guesses, want 2", len(guesses))
	}
}

func TestMapping(t *testing.T) {
	guesses := []ColumnGuess{
		{Index: 0, Kind: Pan, Score: 1.0},
		{Index: 1, Kind: Unknown, Score: 0.2},
		{Index: 2, Kind: Email, Score: 0.9},
	}

	m := Mapping(guesses)
	want := ColumnMapping{0: Pan, 2: Email}
	if len(m) != len(want) {
		t.Fatalf("mapping = %v, want %v", m, want)
	}
	for i, k := range want {
		if m[i] != k {
			t.Errorf("mapping[%d] = %v, want %v", i, m[i], k)
		}
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	for k := Unknown; k <= MerchantRef; k++ {
		if got := ParseKind(k.String()); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got := ParseKind("bogus"); got != Unknown {
		t.Errorf("ParseKind(bogus) = %v, want Unknown", got)
	}
}

func ExampleClassify() {
	g := Classify("Card Number", []string{"4111111111111111"})
	fmt.Println(g.Kind, g.Score)
	// Output: pan 1
}
