package transcript

import (
	"strings"

	"github.com/google/uuid"
)

// roleAliases is the closed mapping from free-form role words to the
// three-value enum. Anything absent maps to unknown; free-form strings never
// travel past the normalizer.
var roleAliases = map[string]Role{
	"user":      RoleUser,
	"customer":  RoleUser,
	"human":     RoleUser,
	"visitor":   RoleUser,
	"bot":       RoleBot,
	"assistant": RoleBot,
	"agent":     RoleBot,
	"chatbot":   RoleBot,
	"ai":        RoleBot,
}

var escalationPhrases = []string{
	"speak to a human",
	"talk to a human",
	"speak to an agent",
	"transfer me",
	"escalate",
	"human agent",
	"real person",
	"customer service",
}

var orderPhrases = []string{
	"order number",
	"order status",
	"my order",
	"tracking",
	"payment",
	"refund",
	"delivery",
}

// Normalize maps role variants onto the enum, assigns missing ids, strips
// results payloads from non-bot messages, and recomputes derived metadata.
// It is idempotent: normalizing an already-normalized session returns an
// identical session. The input is not mutated.
func Normalize(s Session) Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)

	if out.ID == "" {
		out.ID = uuid.NewString()
	}

	meta := Metadata{Start: s.Meta.Start, End: s.Meta.End}
	meta.MessageCount = len(out.Messages)

	for i := range out.Messages {
		m := &out.Messages[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.Role = normalizeRole(m.Role)

		switch m.Role {
		case RoleUser:
			meta.UserTurns++
		case RoleBot:
			meta.BotTurns++
		}

		// Results only ever belong to bot messages.
		if m.Results != nil && m.Role != RoleBot {
			m.Results = nil
		}

		if !m.Timestamp.IsZero() {
			if meta.Start.IsZero() || m.Timestamp.Before(meta.Start) {
				meta.Start = m.Timestamp
			}
			if meta.End.IsZero() || m.Timestamp.After(meta.End) {
				meta.End = m.Timestamp
			}
		}

		lower := strings.ToLower(m.Content)
		if !meta.HasEscalation && containsAny(lower, escalationPhrases) {
			meta.HasEscalation = true
		}
		if !meta.HasOrder && containsAny(lower, orderPhrases) {
			meta.HasOrder = true
		}
	}

	out.Meta = meta
	return out
}

// NormalizeAll normalizes every session, preserving order.
func NormalizeAll(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		out[i] = Normalize(s)
	}
	return out
}

func normalizeRole(r Role) Role {
	if mapped, ok := roleAliases[strings.ToLower(strings.TrimSpace(string(r)))]; ok {
		return mapped
	}
	return RoleUnknown
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
