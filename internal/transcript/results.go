package transcript

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	stylesSection   = regexp.MustCompile(`(?i)STYLES\s*:?\s*\[([^\]]*)\]`)
	productsKeyword = regexp.MustCompile(`(?i)PRODUCTS\s*:?\s*`)
)

// DecodeResults parses the semi-structured text following a RESULTS: marker,
// e.g. `STYLES: ['Bold', 'Casual']; PRODUCTS [['p1','p2'],['p3']]`.
// It is pure and total: malformed input never panics or errors, it degrades
// to a partial result that retains the raw products fragment for diagnostics.
// Parsed product lists are flattened in order with duplicates preserved.
func DecodeResults(text string) *Results {
	r := &Results{Styles: []string{}, Products: []string{}}

	stylesFound := false
	if m := stylesSection.FindStringSubmatch(text); m != nil {
		stylesFound = true
		for _, part := range strings.Split(m[1], ",") {
			s := strings.Trim(strings.TrimSpace(part), `'"`)
			if s != "" {
				r.Styles = append(r.Styles, s)
			}
		}
	}

	loc := productsKeyword.FindStringIndex(text)
	if loc == nil {
		if stylesFound {
			r.State = ResultsDecoded
		} else {
			r.State = ResultsEmpty
		}
		return r
	}

	rest := text[loc[1]:]
	expr, ok := bracketExpression(rest)
	if !ok {
		raw := strings.TrimSpace(rest)
		if raw == "" && !stylesFound {
			r.State = ResultsEmpty
			return r
		}
		if raw == "" {
			r.State = ResultsDecoded
			return r
		}
		r.State = ResultsPartial
		r.ProductsRaw = raw
		return r
	}

	var parsed any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(expr, "'", `"`)), &parsed); err != nil {
		r.State = ResultsPartial
		r.ProductsRaw = expr
		return r
	}

	flattenProducts(parsed, &r.Products)
	r.State = ResultsDecoded
	return r
}

// bracketExpression returns the balanced bracketed expression starting at the
// first '[' in s. Returns ok=false when no '[' exists or brackets never
// balance (a truncated fragment).
func bracketExpression(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// flattenProducts collects string identifiers from an arbitrarily nested
// array structure, preserving order and duplicates. Numeric identifiers are
// rendered as strings; anything else is skipped rather than invented.
func flattenProducts(v any, out *[]string) {
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			flattenProducts(e, out)
		}
	case string:
		if x != "" {
			*out = append(*out, x)
		}
	case float64:
		*out = append(*out, strconv.FormatFloat(x, 'f', -1, 64))
	}
}
