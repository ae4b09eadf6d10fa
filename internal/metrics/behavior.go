package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/tally/internal/transcript"
)

var (
	// naturalLanguagePattern marks first-person, desire-phrased queries.
	naturalLanguagePattern = regexp.MustCompile(`(?i)\b(i'?m looking for|i am looking for|i need|i want|i would like|do you have|can you (find|show|recommend)|show me|help me find)\b`)

	locationPattern = regexp.MustCompile(`(?i)\b(near me|nearby|closest|close to|in stock|in store|downtown|open now|location)\b`)

	pricePattern = regexp.MustCompile(`(?i)(\$\s?\d|\bunder \d|\bless than \d|\bcheap(est)?\b|\bprice\b|\bcost\b|\baffordable\b|\bbudget\b|\bexpensive\b|\bdiscount\b|\bon sale\b)`)

	supportPattern = regexp.MustCompile(`(?i)\b(help|support|problem|issue|complaint|broken|return|refund|cancel|not working|doesn'?t work|wrong item)\b`)

	// specificItemPattern matches model numbers and SKU-like tokens.
	specificItemPattern = regexp.MustCompile(`(?i)\b([a-z]+[-_]?\d{2,}[a-z0-9]*|\d{5,}|model\s+\S+|sku\s*\S+)\b`)
)

// computeBehavior classifies every user query along two orthogonal axes: an
// exclusive complexity tier and an exclusive intent bucket, with price,
// location and specific-item matches tracked as separate non-exclusive
// signals. It also detects intra-session query repetition and emits the
// fixed-rule advisory insights.
func computeBehavior(snap *Snapshot, sessions []transcript.Session) {
	ub := &snap.UserBehavior

	totalQueries := 0
	for i := range sessions {
		queries := sessionQueries(&sessions[i])
		totalQueries += len(queries)

		for _, q := range queries {
			classifyComplexity(&ub.QueryComplexity, q)
			classifyIntent(&ub.IntentBreakdown, &ub.Signals, q)
		}

		detectRepeats(&ub.RepeatedQueries, queries)
	}

	ub.Insights = buildInsights(snap, totalQueries)
}

// classifyComplexity assigns exactly one tier, in priority order.
func classifyComplexity(c *ComplexityBreakdown, query string) {
	words := len(strings.Fields(query))

	var tier *TierStats
	switch {
	case words == 1:
		tier = &c.SingleWord
	case naturalLanguagePattern.MatchString(query):
		tier = &c.NaturalLanguage
	case words >= 5 || (locationPattern.MatchString(query) && pricePattern.MatchString(query)):
		tier = &c.AdvancedSearch
	default:
		tier = &c.SimplePhrase
	}

	tier.Count++
	if len(tier.Examples) < tierExampleLimit {
		tier.Examples = append(tier.Examples, query)
	}
}

// classifyIntent assigns exactly one bucket in priority order, and raises the
// overlapping signals independently of which bucket wins.
func classifyIntent(ib *IntentBreakdown, sig *Signals, query string) {
	price := pricePattern.MatchString(query)
	location := locationPattern.MatchString(query)
	specific := specificItemPattern.MatchString(query)
	if price {
		sig.PriceInquiries++
	}
	if location {
		sig.LocationMentions++
	}
	if specific {
		sig.SpecificItemMentions++
	}

	words := len(strings.Fields(query))
	switch {
	case supportPattern.MatchString(query):
		ib.SupportRequest++
	case location:
		ib.LocationQuery++
	case specific:
		ib.SpecificItem++
	case words <= 2:
		ib.CategoryBrowse++
	default:
		ib.ProductSearch++
	}
}

// detectRepeats flags a session when its raw lowercased query count exceeds
// its distinct count, sums the per-query excess into the total, and keeps the
// first few example pairs across the whole corpus.
func detectRepeats(rq *RepeatedQueries, queries []string) {
	if len(queries) < 2 {
		return
	}

	counts := map[string]int{}
	var order []string
	for _, q := range queries {
		key := strings.ToLower(q)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	if len(counts) == len(queries) {
		return
	}

	rq.SessionsWithRepeats++
	for _, key := range order {
		if n := counts[key]; n > 1 {
			rq.TotalRepeats += n - 1
			if len(rq.Examples) < repeatExampleLimit {
				rq.Examples = append(rq.Examples, RepeatExample{Query: key, Count: n})
			}
		}
	}
}

// buildInsights converts aggregate thresholds into fixed advisory messages.
// The rules are deterministic: identical input always yields the identical
// insight list, in this order.
func buildInsights(snap *Snapshot, totalQueries int) []string {
	insights := []string{}
	if totalQueries == 0 {
		return insights
	}

	ub := &snap.UserBehavior
	totalSessions := snap.SessionOverview.TotalSessions

	if pct(ub.QueryComplexity.SingleWord.Count, totalQueries) > 50 {
		insights = append(insights, fmt.Sprintf(
			"%d%% of queries are single words, indicating basic search behavior; guided filters or suggested refinements may help",
			int(pct(ub.QueryComplexity.SingleWord.Count, totalQueries))))
	}
	if totalSessions > 0 && pct(ub.RepeatedQueries.SessionsWithRepeats, totalSessions) > 10 {
		insights = append(insights, fmt.Sprintf(
			"%d%% of sessions contain repeated queries, suggesting users are not finding what they need on the first attempt",
			int(pct(ub.RepeatedQueries.SessionsWithRepeats, totalSessions))))
	}
	if pct(ub.QueryComplexity.NaturalLanguage.Count, totalQueries) > 30 {
		insights = append(insights, fmt.Sprintf(
			"%d%% of queries are phrased conversationally; users treat the bot as an assistant rather than a search box",
			int(pct(ub.QueryComplexity.NaturalLanguage.Count, totalQueries))))
	}
	if pct(ub.IntentBreakdown.SupportRequest, totalQueries) > 25 {
		insights = append(insights, fmt.Sprintf(
			"%d%% of queries are support requests; a larger share of traffic is service load than product discovery",
			int(pct(ub.IntentBreakdown.SupportRequest, totalQueries))))
	}
	return insights
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
