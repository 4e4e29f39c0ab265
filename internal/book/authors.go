package book

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	authorSeparators = regexp.MustCompile(`\s*(?:,|;|&|\band\b|\bwith\b)\s*`)
	whitespace       = regexp.MustCompile(`\s+`)
	priceJunk        = regexp.MustCompile(`[^\d.]`)
)

// NormalizeAuthors reduces an author credit string to a canonical form
// for matching: lowercase, single-spaced, split on common separators
// and sorted so author order doesn't matter. Retailer adapters must
// only accept a candidate whose normalized authors equal the query's;
// substring checks have produced false positives in the past.
func NormalizeAuthors(authors string) string {
	lowered := strings.ToLower(strings.TrimSpace(authors))
	parts := authorSeparators.Split(lowered, -1)

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := whitespace.ReplaceAllString(strings.TrimSpace(part), " ")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// ParsePrice converts retailer price strings like "$12.99" or
// "USD 12.99" to a float, returning 0 for anything unparseable.
func ParsePrice(price string) float64 {
	cleaned := priceJunk.ReplaceAllString(price, "")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}
