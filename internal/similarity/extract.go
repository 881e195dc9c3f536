package similarity

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// A bare 4-digit year also matches inside MM/DD/YYYY and YYYY-MM-DD
	// forms, so a single pattern covers all three; first match wins.
	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	currencyChars  = regexp.MustCompile(`[,$€£¥]`)
	nonNumericChar = regexp.MustCompile(`[^\d.\-]`)
	firstNumeral   = regexp.MustCompile(`-?\d+\.?\d*`)

	percentNumerals = []*regexp.Regexp{
		regexp.MustCompile(`(\d+\.?\d*)\s*%`),
		regexp.MustCompile(`(\d+\.?\d*)\s*percent`),
	}
)

// ExtractYear returns the first 4-digit year found in the text.
func ExtractYear(text string) (int, bool) {
	match := yearPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// ExtractNumber strips currency symbols and thousands separators and returns
// the first signed decimal numeral in the text.
func ExtractNumber(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	cleaned := currencyChars.ReplaceAllString(text, "")
	cleaned = nonNumericChar.ReplaceAllString(cleaned, " ")
	match := firstNumeral.FindString(cleaned)
	if match == "" || match == "-" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(match, "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractPercentage returns the first "N%" or "N percent" numeral in the text.
func ExtractPercentage(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	lowered := strings.ToLower(text)
	for _, re := range percentNumerals {
		if m := re.FindStringSubmatch(lowered); m != nil {
			n, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			return n, true
		}
	}
	return 0, false
}
