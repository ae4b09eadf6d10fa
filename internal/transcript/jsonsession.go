package transcript

import (
	"encoding/json"
	"strings"
)

// jsonSession is the accepted shape for JSON exports: an array of these, or a
// single object. Either session_id or id names the session.
type jsonSession struct {
	SessionID string            `json:"session_id"`
	ID        string            `json:"id"`
	Timestamp string            `json:"timestamp"`
	Messages  []json.RawMessage `json:"messages"`
}

// jsonMessage is one element of a session's messages array. Elements may also
// be plain strings; those become unknown-role messages.
type jsonMessage struct {
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	Text      string       `json:"text"`
	Timestamp string       `json:"timestamp"`
	Results   *jsonResults `json:"results"`
}

type jsonResults struct {
	Styles   []string `json:"styles"`
	Products []string `json:"products"`
}

// parseJSONSessions handles the json-array and json-object grammars. Content
// reaching here is valid JSON; elements that do not fit the session shape
// degrade to the whole-content fallback rather than being dropped.
func parseJSONSessions(content []byte, filename string) []Session {
	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "[") {
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &elements); err != nil {
			return []Session{fallbackSession(trimmed, filename)}
		}
		var sessions []Session
		for i, el := range elements {
			var js jsonSession
			if err := json.Unmarshal(el, &js); err != nil {
				sessions = append(sessions, fallbackSession(string(el), filename))
				continue
			}
			sessions = append(sessions, sessionFromJSON(js, filename, i))
		}
		return sessions
	}

	var js jsonSession
	if err := json.Unmarshal([]byte(trimmed), &js); err != nil {
		return []Session{fallbackSession(trimmed, filename)}
	}
	return []Session{sessionFromJSON(js, filename, 0)}
}

func sessionFromJSON(js jsonSession, filename string, idx int) Session {
	id := js.SessionID
	if id == "" {
		id = js.ID
	}
	if id == "" {
		id = numberedID(sessionIDFromFilename(filename), idx)
	}

	s := Session{ID: id, SourceFile: filename}

	for _, raw := range js.Messages {
		// Plain string elements carry no role information.
		var plain string
		if err := json.Unmarshal(raw, &plain); err == nil {
			s.Messages = append(s.Messages, Message{Role: RoleUnknown, Content: plain})
			continue
		}

		var jm jsonMessage
		if err := json.Unmarshal(raw, &jm); err != nil {
			continue
		}
		content := jm.Content
		if content == "" {
			content = jm.Text
		}
		msg := Message{
			// Raw role variants ("customer", "agent", …) are carried as-is;
			// the normalizer maps them onto the three-value enum.
			Role:    Role(strings.ToLower(strings.TrimSpace(jm.Role))),
			Content: strings.TrimSpace(content),
		}
		if ts, ok := parseTimestamp(jm.Timestamp); ok {
			msg.Timestamp = ts
			if s.Meta.Start.IsZero() || ts.Before(s.Meta.Start) {
				s.Meta.Start = ts
			}
			if s.Meta.End.IsZero() || ts.After(s.Meta.End) {
				s.Meta.End = ts
			}
		}
		if jm.Results != nil {
			r := &Results{State: ResultsDecoded, Styles: jm.Results.Styles, Products: jm.Results.Products}
			if r.Styles == nil {
				r.Styles = []string{}
			}
			if r.Products == nil {
				r.Products = []string{}
			}
			msg.Results = r
		}
		s.Messages = append(s.Messages, msg)
	}

	// A session-level timestamp extends the date range when messages carry
	// none of their own.
	if ts, ok := parseTimestamp(js.Timestamp); ok {
		if s.Meta.Start.IsZero() || ts.Before(s.Meta.Start) {
			s.Meta.Start = ts
		}
		if s.Meta.End.IsZero() || ts.After(s.Meta.End) {
			s.Meta.End = ts
		}
	}

	return s
}
