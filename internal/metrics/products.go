package metrics

import (
	"regexp"
	"sort"

	"github.com/MikeSquared-Agency/tally/internal/transcript"
)

func computeProducts(snap *Snapshot, sessions []transcript.Session) {
	pi := &snap.ProductInsights

	productCounts := map[string]int{}
	var productOrder []string
	styleCounts := map[string]int{}
	var styleOrder []string

	for i := range sessions {
		query := "unknown"
		if qs := sessionQueries(&sessions[i]); len(qs) > 0 {
			query = qs[0]
		}

		for _, m := range sessions[i].Messages {
			if m.Role != transcript.RoleBot || m.Results == nil {
				continue
			}

			for _, style := range m.Results.Styles {
				if _, seen := styleCounts[style]; !seen {
					styleOrder = append(styleOrder, style)
				}
				styleCounts[style]++
			}

			if len(m.Results.Products) == 0 {
				continue
			}
			pi.TotalProductsRecommended += len(m.Results.Products)
			for _, p := range m.Results.Products {
				if _, seen := productCounts[p]; !seen {
					productOrder = append(productOrder, p)
				}
				productCounts[p]++
			}
			pi.ProductsByQuery = append(pi.ProductsByQuery, QueryProducts{
				Query:    query,
				Products: append([]string(nil), m.Results.Products...),
			})
		}
	}

	pi.UniqueProductsRecommended = len(productCounts)

	sort.SliceStable(productOrder, func(a, b int) bool {
		return productCounts[productOrder[a]] > productCounts[productOrder[b]]
	})
	for _, p := range productOrder {
		if len(pi.TopProducts) >= topProductLimit {
			break
		}
		pi.TopProducts = append(pi.TopProducts, ProductCount{Product: p, Count: productCounts[p]})
	}

	// Styles are aggregated the same way but never capped.
	pi.StyleAnalysis.TotalStyles = len(styleCounts)
	sort.SliceStable(styleOrder, func(a, b int) bool {
		return styleCounts[styleOrder[a]] > styleCounts[styleOrder[b]]
	})
	for _, s := range styleOrder {
		pi.StyleAnalysis.Styles = append(pi.StyleAnalysis.Styles, StyleCount{Style: s, Count: styleCounts[s]})
	}
}

// clarifyingPatterns are evaluated in order against each bot message; the
// first match wins so a message is counted once.
var clarifyingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what (kind|type|size|color|colour|style|brand|budget)`),
	regexp.MustCompile(`(?i)(could|can) you (be more specific|clarify|tell me more|give me more)`),
	regexp.MustCompile(`(?i)do you (have a preference|prefer|mean)`),
	regexp.MustCompile(`(?i)(which|what) one`),
	regexp.MustCompile(`(?i)any (particular|specific)`),
	regexp.MustCompile(`(?i)(how much|what price range|what.s your budget)`),
}

func computeResponses(snap *Snapshot, sessions []transcript.Session) {
	ra := &snap.BotResponseAnalysis

	productsTotal := 0
	productEvents := 0

	for i := range sessions {
		hasResults := false
		for _, m := range sessions[i].Messages {
			if m.Role != transcript.RoleBot {
				continue
			}
			if m.Results != nil {
				hasResults = true
				if n := len(m.Results.Products); n > 0 {
					productsTotal += n
					productEvents++
				}
			}
			for _, pat := range clarifyingPatterns {
				if pat.MatchString(m.Content) {
					ra.ClarifyingQuestions.Total++
					if len(ra.ClarifyingQuestions.Examples) < clarifyingExampleLimit {
						ra.ClarifyingQuestions.Examples = append(ra.ClarifyingQuestions.Examples, m.Content)
					}
					break
				}
			}
		}
		if hasResults {
			ra.SessionsWithResults++
		} else {
			ra.SessionsWithoutResults++
		}
	}

	total := len(sessions)
	ra.WithResultsPct = round1(float64(ra.SessionsWithResults) * 100 / float64(total))
	ra.WithoutResultsPct = round1(float64(ra.SessionsWithoutResults) * 100 / float64(total))

	// Averaged only over results events that carried products, so sessions
	// without recommendations do not dilute the figure.
	if productEvents > 0 {
		ra.AvgProductsPerResult = round1(float64(productsTotal) / float64(productEvents))
	}
}
