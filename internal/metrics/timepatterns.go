package metrics

import (
	"time"

	"github.com/MikeSquared-Agency/tally/internal/transcript"
)

// computeTimePatterns buckets each session by the timestamp of its first
// timestamped message. Sessions without any timestamp are excluded from the
// distributions. Ties for the busiest bucket resolve deterministically: the
// lowest hour number, and the earliest day in Sunday-to-Saturday order.
func computeTimePatterns(snap *Snapshot, sessions []transcript.Session) {
	tp := &snap.TimePatterns

	for i := range sessions {
		ts := firstTimestamp(&sessions[i])
		if ts.IsZero() {
			continue
		}
		tp.SessionsWithTimestamps++
		tp.HourDistribution[ts.Hour()].Count++
		tp.DayDistribution[int(ts.Weekday())].Count++
	}

	if tp.SessionsWithTimestamps == 0 {
		return
	}

	best := 0
	for h, hc := range tp.HourDistribution {
		if hc.Count > tp.HourDistribution[best].Count {
			best = h
		}
	}
	tp.BusiestHour = best

	bestDay := 0
	for d, dc := range tp.DayDistribution {
		if dc.Count > tp.DayDistribution[bestDay].Count {
			bestDay = d
		}
	}
	tp.BusiestDay = dayNames[bestDay]
}

func firstTimestamp(s *transcript.Session) time.Time {
	for _, m := range s.Messages {
		if !m.Timestamp.IsZero() {
			return m.Timestamp
		}
	}
	return s.Meta.Start
}
