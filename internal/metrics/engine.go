package metrics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/tally/internal/transcript"
)

const (
	topQueryLimit          = 20
	topTermLimit           = 20
	topProductLimit        = 20
	clarifyingExampleLimit = 10
	tierExampleLimit       = 5
	repeatExampleLimit     = 5
)

// Compute derives a full snapshot from a session list. It never fails: an
// empty input produces a zero-valued snapshot with every field present. The
// input is treated as immutable; Compute performs no I/O and keeps no state
// between calls.
func Compute(sessions []transcript.Session) *Snapshot {
	snap := newSnapshot()
	snap.DataQuality.TranscriptsProcessed = len(sessions)
	if len(sessions) == 0 {
		return snap
	}

	computeOverview(snap, sessions)
	computeTurns(snap, sessions)
	computeQueries(snap, sessions)
	computeProducts(snap, sessions)
	computeResponses(snap, sessions)
	computeTimePatterns(snap, sessions)
	computeBehavior(snap, sessions)
	return snap
}

// sessionQueries returns the trimmed user-message contents of one session in
// order. Every non-empty user message is exactly one query occurrence.
func sessionQueries(s *transcript.Session) []string {
	var queries []string
	for _, m := range s.Messages {
		if m.Role != transcript.RoleUser {
			continue
		}
		if q := strings.TrimSpace(m.Content); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

func computeOverview(snap *Snapshot, sessions []transcript.Session) {
	snap.SessionOverview.TotalSessions = len(sessions)

	var start, end time.Time
	observe := func(t time.Time) {
		if t.IsZero() {
			return
		}
		if start.IsZero() || t.Before(start) {
			start = t
		}
		if end.IsZero() || t.After(end) {
			end = t
		}
	}
	for i := range sessions {
		observe(sessions[i].Meta.Start)
		observe(sessions[i].Meta.End)
		for _, m := range sessions[i].Messages {
			observe(m.Timestamp)
		}
	}

	if start.IsZero() {
		snap.SessionOverview.TotalDays = 1
		return
	}

	snap.SessionOverview.DateRange = DateRange{
		Start:   start.Format(time.RFC3339),
		End:     end.Format(time.RFC3339),
		Display: start.Format("Jan 2, 2006") + " to " + end.Format("Jan 2, 2006"),
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	days := int(endDay.Sub(startDay).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	snap.SessionOverview.TotalDays = days
}

func computeTurns(snap *Snapshot, sessions []transcript.Session) {
	total := 0
	for i := range sessions {
		turns := len(sessionQueries(&sessions[i]))
		total += turns
		switch {
		case turns == 1:
			snap.TurnAnalysis.SingleTurnSessions++
		case turns >= 2:
			snap.TurnAnalysis.MultiTurnSessions++
		}
		// Zero-turn sessions land in neither bucket but still dilute the
		// average, which is taken over all sessions.
		if turns > snap.TurnAnalysis.MaxUserTurns {
			snap.TurnAnalysis.MaxUserTurns = turns
		}
	}
	snap.TurnAnalysis.AvgUserTurns = round1(float64(total) / float64(len(sessions)))
}

func computeQueries(snap *Snapshot, sessions []transcript.Session) {
	qa := &snap.QueryAnalysis

	type uniqueQuery struct {
		display string
		count   int
	}
	var uniques []uniqueQuery
	index := map[string]int{}

	totalWords := 0
	termCounts := map[string]int{}
	var termOrder []string

	for i := range sessions {
		for _, q := range sessionQueries(&sessions[i]) {
			qa.TotalQueries++

			// Case-insensitive dedup; first-seen casing is the display form.
			key := strings.ToLower(q)
			if at, ok := index[key]; ok {
				uniques[at].count++
			} else {
				index[key] = len(uniques)
				uniques = append(uniques, uniqueQuery{display: q, count: 1})
			}

			words := strings.Fields(q)
			totalWords += len(words)
			if len(words) == 1 {
				qa.SingleWordQueries++
			} else {
				qa.MultiWordQueries++
			}

			for _, w := range words {
				term := normalizeTerm(w)
				if term == "" || stopWords[term] {
					continue
				}
				if _, seen := termCounts[term]; !seen {
					termOrder = append(termOrder, term)
				}
				termCounts[term]++
			}
		}
	}

	qa.UniqueQueries = len(uniques)
	if qa.TotalQueries > 0 {
		qa.AvgWordsPerQuery = round1(float64(totalWords) / float64(qa.TotalQueries))
	}

	// Stable sort keeps first-seen order among equal frequencies.
	sort.SliceStable(uniques, func(a, b int) bool { return uniques[a].count > uniques[b].count })
	for _, u := range uniques {
		if len(qa.TopQueries) >= topQueryLimit {
			break
		}
		qa.TopQueries = append(qa.TopQueries, QueryCount{Query: u.display, Frequency: u.count})
	}

	sort.SliceStable(termOrder, func(a, b int) bool {
		return termCounts[termOrder[a]] > termCounts[termOrder[b]]
	})
	for _, term := range termOrder {
		if len(qa.TopTerms) >= topTermLimit {
			break
		}
		qa.TopTerms = append(qa.TopTerms, TermCount{Term: term, Count: termCounts[term]})
	}
}

// normalizeTerm lowercases a word and trims surrounding punctuation. Terms
// shorter than two characters carry no signal and are discarded.
func normalizeTerm(w string) string {
	term := strings.ToLower(strings.Trim(w, `.,!?;:"'()[]{}`))
	if len(term) < 2 {
		return ""
	}
	return term
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "is": true, "are": true, "was": true, "be": true, "am": true,
	"i": true, "im": true, "i'm": true, "me": true, "my": true, "we": true,
	"you": true, "your": true, "it": true, "its": true, "this": true,
	"that": true, "do": true, "does": true, "can": true, "could": true,
	"have": true, "has": true, "some": true, "any": true, "there": true,
	"what": true, "where": true, "how": true, "not": true, "no": true,
	"yes": true, "please": true,
}
