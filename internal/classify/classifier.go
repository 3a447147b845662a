package classify

// classifier.go scores columns against a fixed, ordered list of independent
// heuristics and picks the best-scoring kind per column.
//
// The scorer order, header boosts, and the win threshold are policy
// parameters: changing any of them changes inference for every caller, so
// they are named constants rather than knobs.

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// SampleCap bounds how many cell values a single column scorer inspects.
// Values past the cap are ignored; this caps cost on very tall samples and
// is not a correctness requirement.
const SampleCap = 200

// winThreshold is the minimum winning score for a guess to be trusted.
// At or below it the column resolves to Unknown (reasons are kept for
// diagnostics).
const winThreshold = 0.55

// Header boosts per scorer. Applied when the header text case-insensitively
// contains any of the scorer's keywords; the final score is capped at 1.0.
const (
	boostPan    = 0.6
	boostExp    = 0.4
	boostCvv    = 0.5
	boostEmail  = 0.6
	boostPhone  = 0.4
	boostPostal = 0.4
	boostState  = 0.3
	scoreName   = 0.8
)

var (
	expRe    = regexp.MustCompile(`^(0[1-9]|1[0-2])[/-](\d{2}|\d{4})$`)
	cvvRe    = regexp.MustCompile(`^\d{3,4}$`)
	emailRe  = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	phoneRe  = regexp.MustCompile(`^[+0-9][0-9 ().\-]{6,}$`)
	postalRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// uspsStates is the fixed set of USPS two-letter state codes.
var uspsStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

// ColumnGuess is the classifier's verdict for one column: the chosen kind,
// a confidence score in [0,1], and the reasons behind the score. Guesses are
// produced once per classification pass and never mutated; user overrides
// live in a separate ColumnMapping.
type ColumnGuess struct {
	Index   int
	Header  string
	Kind    FieldKind
	Score   float64
	Reasons []string
}

// scorer produces a candidate kind with a score and explanation for one
// column. Scorers are independent; order matters only for tie-breaking.
type scorer struct {
	kind  FieldKind
	score func(header string, samples []string) (float64, []string)
}

// scorers runs in declaration order; on a tied score the earlier scorer
// wins, so Pan outranks everything else.
var scorers = []scorer{
	{Pan, scorePan},
	{ExpCombined, ratioScorer(expRe, "MM/YY expiry shape", boostExp, "exp", "expiry", "expiration", "valid thru")},
	{Cvv, ratioScorer(cvvRe, "bare 3-4 digit value", boostCvv, "cvv", "cvc", "cid")},
	{Email, ratioScorer(emailRe, "email shape", boostEmail, "email")},
	{Phone, ratioScorer(phoneRe, "phone shape", boostPhone, "phone", "mobile", "tel")},
	{PostalCode, ratioScorer(postalRe, "ZIP shape", boostPostal, "zip", "postal")},
	{State, scoreState},
	{FirstName, headerScorer("first", "fname", "given")},
	{LastName, headerScorer("last", "lname", "surname", "family")},
}

// Classify scores a single column and returns the best guess. The header may
// be empty; samples beyond SampleCap are ignored. Classification never
// fails: the worst case is an Unknown verdict.
func Classify(header string, samples []string) ColumnGuess {
	if len(samples) > SampleCap {
		samples = samples[:SampleCap]
	}

	best := ColumnGuess{Header: header, Kind: Unknown}
	for _, sc := range scorers {
		score, reasons := sc.score(header, samples)
		if score > best.Score {
			best.Kind = sc.kind
			best.Score = score
			best.Reasons = reasons
		}
	}

	if best.Score <= winThreshold {
		// Not confident enough to act on; keep the reasons so a human can
		// see what almost matched.
		best.Kind = Unknown
	}
	return best
}

// GuessColumns classifies every column of a sample and returns one guess per
// column, sorted by descending score (ties by column index).
func GuessColumns(headers []string, sampleRows [][]string) []ColumnGuess {
	cols := len(headers)
	for _, row := range sampleRows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	guesses := make([]ColumnGuess, 0, cols)
	for i := 0; i < cols; i++ {
		header := ""
		if i < len(headers) {
			header = headers[i]
		}

		samples := make([]string, 0, min(len(sampleRows), SampleCap))
		for _, row := range sampleRows {
			if len(samples) == SampleCap {
				break
			}
			if i < len(row) {
				samples = append(samples, row[i])
			}
		}

		g := Classify(header, samples)
		g.Index = i
		guesses = append(guesses, g)
	}

	sort.SliceStable(guesses, func(a, b int) bool {
		return guesses[a].Score > guesses[b].Score
	})
	return guesses
}

// Mapping converts a guess list into a caller-owned ColumnMapping, dropping
// Unknown columns.
func Mapping(guesses []ColumnGuess) ColumnMapping {
	m := make(ColumnMapping)
	for _, g := range guesses {
		if g.Kind != Unknown {
			m[g.Index] = g.Kind
		}
	}
	return m
}

// scorePan scores a column as primary account numbers: strip non-digits,
// require 13-19 digits, then test the Luhn checksum.
func scorePan(header string, samples []string) (float64, []string) {
	eligible, pass := 0, 0
	for _, v := range samples {
		digits := extractDigits(v)
		if len(digits) < 13 || len(digits) > 19 {
			continue
		}
		eligible++
		if LuhnOK(digits) {
			pass++
		}
	}

	var score float64
	var reasons []string
	if eligible > 0 {
		score = float64(pass) / float64(eligible)
		reasons = append(reasons, fmt.Sprintf("%d/%d card-length values pass Luhn", pass, eligible))
	}
	if kw := headerKeyword(header, "pan", "card", "cc", "acct", "number"); kw != "" {
		score += boostPan
		reasons = append(reasons, "header mentions "+kw)
	}
	return clamp01(score), reasons
}

// scoreState scores membership in the USPS two-letter state code set.
func scoreState(header string, samples []string) (float64, []string) {
	tested, match := 0, 0
	for _, v := range samples {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		tested++
		if uspsStates[strings.ToUpper(v)] {
			match++
		}
	}

	var score float64
	var reasons []string
	if tested > 0 {
		score = float64(match) / float64(tested)
		reasons = append(reasons, fmt.Sprintf("%d/%d values are USPS state codes", match, tested))
	}
	if kw := headerKeyword(header, "state", "st"); kw != "" {
		score += boostState
		reasons = append(reasons, "header mentions "+kw)
	}
	return clamp01(score), reasons
}

// ratioScorer builds a scorer that matches non-empty values against re and
// boosts when the header contains one of the keywords.
func ratioScorer(re *regexp.Regexp, desc string, boost float64, keywords ...string) func(string, []string) (float64, []string) {
	return func(header string, samples []string) (float64, []string) {
		tested, match := 0, 0
		for _, v := range samples {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			tested++
			if re.MatchString(v) {
				match++
			}
		}

		var score float64
		var reasons []string
		if tested > 0 {
			score = float64(match) / float64(tested)
			reasons = append(reasons, fmt.Sprintf("%d/%d values match %s", match, tested, desc))
		}
		if kw := headerKeyword(header, keywords...); kw != "" {
			score += boost
			reasons = append(reasons, "header mentions "+kw)
		}
		return clamp01(score), reasons
	}
}

// headerScorer builds a header-only scorer: a keyword hit is worth scoreName,
// cell values carry no signal.
func headerScorer(keywords ...string) func(string, []string) (float64, []string) {
	return func(header string, _ []string) (float64, []string) {
		if kw := headerKeyword(header, keywords...); kw != "" {
			return scoreName, []string{"header mentions " + kw}
		}
		return 0, nil
	}
}

// headerKeyword returns the first keyword the header contains,
// case-insensitively, or "" if none match.
func headerKeyword(header string, keywords ...string) string {
	h := strings.ToLower(header)
	if h == "" {
		return ""
	}
	for _, kw := range keywords {
		if strings.Contains(h, kw) {
			return kw
		}
	}
	return ""
}

func clamp01(f float64) float64 {
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}
