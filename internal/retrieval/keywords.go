// Package retrieval gathers and scores grounding documents for a customer message.
package retrieval

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// automotiveTerms are always kept during keyword extraction even when short
// or common. Lowercase.
var automotiveTerms = map[string]bool{
	// makes
	"honda": true, "toyota": true, "ford": true, "chevrolet": true, "chevy": true,
	"nissan": true, "hyundai": true, "kia": true, "mazda": true, "subaru": true,
	"volkswagen": true, "vw": true, "bmw": true, "audi": true, "mercedes": true,
	"lexus": true, "acura": true, "jeep": true, "ram": true, "gmc": true,
	"dodge": true, "tesla": true, "volvo": true, "buick": true, "cadillac": true,
	// popular models
	"civic": true, "accord": true, "camry": true, "corolla": true, "rav4": true,
	"crv": true, "cr-v": true, "f-150": true, "f150": true, "silverado": true,
	"altima": true, "rogue": true, "tucson": true, "sorento": true, "outback": true,
	"tacoma": true, "highlander": true, "pilot": true, "odyssey": true,
	// body styles
	"suv": true, "sedan": true, "truck": true, "coupe": true, "van": true,
	"minivan": true, "hatchback": true, "convertible": true, "wagon": true,
	// fuel / drivetrain
	"ev": true, "electric": true, "hybrid": true, "diesel": true, "gas": true,
	"awd": true, "4wd": true, "fwd": true, "rwd": true, "4x4": true,
	// service
	"oil": true, "tires": true, "tire": true, "brakes": true, "brake": true,
	"battery": true, "alignment": true, "recall": true, "maintenance": true,
	"inspection": true, "repair": true, "service": true,
	// finance / sales
	"lease": true, "loan": true, "apr": true, "financing": true, "finance": true,
	"credit": true, "down": true, "payment": true, "trade": true, "msrp": true,
	"price": true, "used": true, "new": true, "cpo": true, "certified": true,
	"warranty": true, "deal": true, "offer": true,
}

// ExtractKeywords lowercases the text, strips punctuation, and keeps tokens
// longer than two characters. Known automotive terms and bare 4-digit model
// years survive regardless of length.
func ExtractKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '$'
	})

	seen := make(map[string]bool, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, tok := range fields {
		tok = strings.Trim(tok, "-")
		if tok == "" || seen[tok] {
			continue
		}
		if len(tok) > 2 || automotiveTerms[tok] || isModelYear(tok) {
			seen[tok] = true
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

// isModelYear reports whether tok is a bare 4-digit year in a plausible
// model-year window.
func isModelYear(tok string) bool {
	if len(tok) != 4 {
		return false
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return false
	}
	return n >= 1980 && n <= 2035
}

// ModelYears returns the model years present in a keyword list.
func ModelYears(keywords []string) []int {
	var years []int
	for _, k := range keywords {
		if isModelYear(k) {
			n, _ := strconv.Atoi(k)
			years = append(years, n)
		}
	}
	return years
}

// BudgetFromText extracts a dollar budget like "$28000" or "under 28000"
// from keywords. Returns 0 when none found.
func BudgetFromText(keywords []string) float64 {
	for i, k := range keywords {
		if amount, ok := parseDollars(k); ok {
			return amount
		}
		// "under 28000" / "below 30k"
		if (k == "under" || k == "below" || k == "max") && i+1 < len(keywords) {
			if amount, ok := parseDollars(keywords[i+1]); ok {
				return amount
			}
		}
	}
	return 0
}

func parseDollars(tok string) (float64, bool) {
	tok = strings.TrimPrefix(tok, "$")
	mult := 1.0
	if strings.HasSuffix(tok, "k") {
		mult = 1000
		tok = strings.TrimSuffix(tok, "k")
	}
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	n *= mult
	// Model years are not budgets; real budgets start well above them.
	if n < 3000 {
		return 0, false
	}
	if isModelYear(strconv.Itoa(int(n))) {
		return 0, false
	}
	return n, true
}

// TruncateUTF8 caps s at max bytes, backing the cut up so it never lands in
// the middle of a multi-byte rune.
func TruncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
