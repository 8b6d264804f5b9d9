package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SearchMatcher matches products whose name or description contains a query,
// ignoring case and diacritics ("cafe" finds "Café Serrano").
type SearchMatcher struct {
	query string
}

// NewSearchMatcher prepares a matcher for the given query
func NewSearchMatcher(query string) SearchMatcher {
	return SearchMatcher{query: foldText(strings.TrimSpace(query))}
}

// IsEmpty reports whether the matcher accepts everything
func (m SearchMatcher) IsEmpty() bool {
	return m.query == ""
}

// Match reports whether the product matches the query
func (m SearchMatcher) Match(p *Product) bool {
	if m.IsEmpty() {
		return true
	}
	return strings.Contains(foldText(p.Name), m.query) ||
		strings.Contains(foldText(p.Description), m.query)
}

// Filter returns the matching products in their original order
func (m SearchMatcher) Filter(products []Product) []Product {
	if m.IsEmpty() {
		return products
	}
	out := make([]Product, 0, len(products))
	for i := range products {
		if m.Match(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

// foldText strips combining marks and case-folds s.
// Casers and transformers keep state, so both are built per call.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
