// Package transcript parses chatbot conversation logs into normalized
// sessions. It accepts several loosely-specified text encodings (timestamped
// logs, role-prefixed loose text, JSON session exports) and never fails hard:
// content that matches no grammar degrades to a single unknown-role message.
package transcript

import "time"

// Role is the normalized speaker of a message.
type Role string

const (
	RoleUser    Role = "user"
	RoleBot     Role = "bot"
	RoleUnknown Role = "unknown"
)

// ResultsState discriminates the decode outcome of a RESULTS payload.
type ResultsState int

const (
	// ResultsEmpty means the fragment carried nothing recognizable.
	ResultsEmpty ResultsState = iota
	// ResultsDecoded means styles/products parsed cleanly.
	ResultsDecoded
	// ResultsPartial means the products expression could not be parsed;
	// ProductsRaw holds the original fragment for diagnostics.
	ResultsPartial
)

// Results is the decoded RESULTS annotation attached to a bot message.
// Products is the flattened, order- and duplicate-preserving list of product
// identifiers. ProductsRaw is populated only when State is ResultsPartial.
type Results struct {
	State       ResultsState `json:"state"`
	Styles      []string     `json:"styles"`
	Products    []string     `json:"products"`
	ProductsRaw string       `json:"productsRaw,omitempty"`
}

// Message is a single conversational turn. Content may be the space-joined
// concatenation of several physical lines (continuations).
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Results   *Results  `json:"results,omitempty"`
}

// Metadata holds per-session derived fields. Never user-supplied.
type Metadata struct {
	Start         time.Time `json:"start,omitzero"`
	End           time.Time `json:"end,omitzero"`
	MessageCount  int       `json:"messageCount"`
	UserTurns     int       `json:"userTurns"`
	BotTurns      int       `json:"botTurns"`
	HasEscalation bool      `json:"hasEscalation"`
	HasOrder      bool      `json:"hasOrder"`
}

// Session is one logical conversation in appearance order.
type Session struct {
	ID         string    `json:"id"`
	SourceFile string    `json:"sourceFile"`
	Messages   []Message `json:"messages"`
	Meta       Metadata  `json:"metadata"`
}

// Format identifies which parsing grammar applies to a file.
type Format int

const (
	FormatJSONArray Format = iota
	FormatJSONObject
	FormatTimestampedLog
	FormatLooseText
)

func (f Format) String() string {
	switch f {
	case FormatJSONArray:
		return "json-array"
	case FormatJSONObject:
		return "json-object"
	case FormatTimestampedLog:
		return "timestamped-log"
	default:
		return "loose-text"
	}
}
