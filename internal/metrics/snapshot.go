// Package metrics derives quantitative statistics from normalized transcript
// sessions. Every figure is produced by direct counting over the parsed data;
// nothing is estimated or inferred. The engine is a pure function of its
// input: same sessions, same snapshot, and an empty input yields a fully
// populated zero-valued snapshot rather than an error.
package metrics

// Snapshot is the engine's output. Sub-reports are independent: each is
// re-derivable on its own from the same immutable session list. JSON key
// names are a stable external contract consumed by presentation and export
// collaborators.
type Snapshot struct {
	SessionOverview     SessionOverview      `json:"sessionOverview"`
	TurnAnalysis        TurnAnalysis         `json:"turnAnalysis"`
	QueryAnalysis       QueryAnalysis        `json:"queryAnalysis"`
	ProductInsights     ProductInsights      `json:"productInsights"`
	BotResponseAnalysis BotResponseAnalysis  `json:"botResponseAnalysis"`
	TimePatterns        TimePatterns         `json:"timePatterns"`
	UserBehavior        UserBehaviorAnalysis `json:"userBehaviorAnalysis"`
	DataQuality         DataQuality          `json:"dataQuality"`
}

// DateRange carries both raw ISO instants and a display form.
type DateRange struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Display string `json:"display"`
}

type SessionOverview struct {
	TotalSessions int       `json:"totalSessions"`
	DateRange     DateRange `json:"dateRange"`
	TotalDays     int       `json:"totalDays"`
}

type TurnAnalysis struct {
	SingleTurnSessions int     `json:"singleTurnSessions"`
	MultiTurnSessions  int     `json:"multiTurnSessions"`
	AvgUserTurns       float64 `json:"avgUserTurnsPerSession"`
	MaxUserTurns       int     `json:"maxUserTurns"`
}

type QueryCount struct {
	Query     string `json:"query"`
	Frequency int    `json:"frequency"`
}

type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type QueryAnalysis struct {
	TotalQueries      int          `json:"totalQueries"`
	UniqueQueries     int          `json:"uniqueQueries"`
	TopQueries        []QueryCount `json:"topQueries"`
	SingleWordQueries int          `json:"singleWordQueries"`
	MultiWordQueries  int          `json:"multiWordQueries"`
	AvgWordsPerQuery  float64      `json:"avgWordsPerQuery"`
	TopTerms          []TermCount  `json:"topTerms"`
}

type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type StyleCount struct {
	Style string `json:"style"`
	Count int    `json:"count"`
}

// QueryProducts associates one results event's flattened product list with
// the session's leading user query. Order and duplicates are preserved.
type QueryProducts struct {
	Query    string   `json:"query"`
	Products []string `json:"products"`
}

type StyleAnalysis struct {
	TotalStyles int          `json:"totalStyles"`
	Styles      []StyleCount `json:"styles"`
}

type ProductInsights struct {
	TotalProductsRecommended  int             `json:"totalProductsRecommended"`
	UniqueProductsRecommended int             `json:"uniqueProductsRecommended"`
	TopProducts               []ProductCount  `json:"topProducts"`
	ProductsByQuery           []QueryProducts `json:"productsByQuery"`
	StyleAnalysis             StyleAnalysis   `json:"styleAnalysis"`
}

type ClarifyingQuestions struct {
	Total    int      `json:"total"`
	Examples []string `json:"examples"`
}

type BotResponseAnalysis struct {
	SessionsWithResults    int                 `json:"sessionsWithResults"`
	SessionsWithoutResults int                 `json:"sessionsWithoutResults"`
	WithResultsPct         float64             `json:"withResultsPct"`
	WithoutResultsPct      float64             `json:"withoutResultsPct"`
	AvgProductsPerResult   float64             `json:"avgProductsPerResult"`
	ClarifyingQuestions    ClarifyingQuestions `json:"clarifyingQuestions"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type TimePatterns struct {
	SessionsWithTimestamps int         `json:"sessionsWithTimestamps"`
	BusiestHour            int         `json:"busiestHour"`
	BusiestDay             string      `json:"busiestDay"`
	HourDistribution       []HourCount `json:"hourDistribution"`
	DayDistribution        []DayCount  `json:"dayDistribution"`
}

// TierStats counts one complexity tier and keeps the first few literal
// example queries.
type TierStats struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

type ComplexityBreakdown struct {
	SingleWord      TierStats `json:"singleWord"`
	SimplePhrase    TierStats `json:"simplePhrase"`
	AdvancedSearch  TierStats `json:"advancedSearch"`
	NaturalLanguage TierStats `json:"naturalLanguage"`
}

// IntentBreakdown is the exclusive bucketing: every query lands in exactly
// one bucket.
type IntentBreakdown struct {
	ProductSearch  int `json:"productSearch"`
	CategoryBrowse int `json:"categoryBrowse"`
	LocationQuery  int `json:"locationQuery"`
	SupportRequest int `json:"supportRequest"`
	SpecificItem   int `json:"specificItem"`
}

// Signals are the orthogonal non-exclusive flags tracked alongside the
// intent buckets; a query can raise several at once.
type Signals struct {
	PriceInquiries       int `json:"priceInquiries"`
	LocationMentions     int `json:"locationMentions"`
	SpecificItemMentions int `json:"specificItemMentions"`
}

type RepeatExample struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type RepeatedQueries struct {
	SessionsWithRepeats int             `json:"sessionsWithRepeats"`
	TotalRepeats        int             `json:"totalRepeats"`
	Examples            []RepeatExample `json:"examples"`
}

type UserBehaviorAnalysis struct {
	QueryComplexity ComplexityBreakdown `json:"queryComplexity"`
	IntentBreakdown IntentBreakdown     `json:"intentBreakdown"`
	Signals         Signals             `json:"signals"`
	RepeatedQueries RepeatedQueries     `json:"repeatedQueries"`
	Insights        []string            `json:"insights"`
}

type DataQuality struct {
	TranscriptsProcessed int      `json:"transcriptsProcessed"`
	Limitations          []string `json:"limitations"`
}

// dataLimitations are structural disclaimers, not computed values. They ship
// with every snapshot so downstream consumers cannot mistake absence of a
// signal for a measured zero.
var dataLimitations = []string{
	"no engagement data: transcripts do not record clicks or views on recommendations",
	"no conversion data: purchases are not observable from conversation logs",
	"no satisfaction signal: transcripts carry no ratings or survey responses",
}

// newSnapshot returns a fully populated zero-valued snapshot. Every slice is
// non-nil so the JSON serialization contains [] rather than null.
func newSnapshot() *Snapshot {
	s := &Snapshot{}
	s.QueryAnalysis.TopQueries = []QueryCount{}
	s.QueryAnalysis.TopTerms = []TermCount{}
	s.ProductInsights.TopProducts = []ProductCount{}
	s.ProductInsights.ProductsByQuery = []QueryProducts{}
	s.ProductInsights.StyleAnalysis.Styles = []StyleCount{}
	s.BotResponseAnalysis.ClarifyingQuestions.Examples = []string{}
	s.TimePatterns.HourDistribution = make([]HourCount, 24)
	for h := range s.TimePatterns.HourDistribution {
		s.TimePatterns.HourDistribution[h] = HourCount{Hour: h}
	}
	s.TimePatterns.DayDistribution = make([]DayCount, 7)
	for d := range s.TimePatterns.DayDistribution {
		s.TimePatterns.DayDistribution[d] = DayCount{Day: dayNames[d]}
	}
	s.UserBehavior.QueryComplexity.SingleWord.Examples = []string{}
	s.UserBehavior.QueryComplexity.SimplePhrase.Examples = []string{}
	s.UserBehavior.QueryComplexity.AdvancedSearch.Examples = []string{}
	s.UserBehavior.QueryComplexity.NaturalLanguage.Examples = []string{}
	s.UserBehavior.RepeatedQueries.Examples = []RepeatExample{}
	s.UserBehavior.Insights = []string{}
	s.DataQuality.Limitations = dataLimitations
	return s
}

// dayNames follows time.Weekday order (Sunday first); busiest-day ties
// resolve to the earliest name in this order.
var dayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}
