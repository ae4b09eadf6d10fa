package transcript

import (
	"regexp"
	"strings"
)

var (
	looseUserPrefix    = regexp.MustCompile(`(?i)^(?:user|customer|human|visitor)\s*[:\-]\s*(.*)$`)
	looseBotPrefix     = regexp.MustCompile(`(?i)^(?:bot|assistant|agent|chatbot|ai)\s*[:\-]\s*(.*)$`)
	looseSessionPrefix = regexp.MustCompile(`(?i)^(?:session|conversation)\s*:\s*(.*)$`)
)

// parseLooseText handles conversational logs that use bare role prefixes
// ("User: …", "Bot: …") without timestamps. A `Session:`/`Conversation:`
// line closes the current session and opens a new one named by the remainder.
// Unprefixed non-empty lines continue the previous message. When nothing is
// recognized at all, the whole content becomes one unknown-role message.
func parseLooseText(content, filename string) []Session {
	baseID := sessionIDFromFilename(filename)

	var sessions []Session
	state := &logState{}
	nextName := ""

	flush := func() {
		if len(state.messages) == 0 {
			state = &logState{}
			return
		}
		id := nextName
		if id == "" {
			id = numberedID(baseID, len(sessions))
		}
		sessions = append(sessions, Session{
			ID:         id,
			SourceFile: filename,
			Messages:   state.messages,
		})
		state = &logState{}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := looseSessionPrefix.FindStringSubmatch(line); m != nil {
			flush()
			nextName = strings.TrimSpace(m[1])
			continue
		}
		if m := looseUserPrefix.FindStringSubmatch(line); m != nil {
			state.emit(Message{Role: RoleUser, Content: strings.TrimSpace(m[1])})
			continue
		}
		if m := looseBotPrefix.FindStringSubmatch(line); m != nil {
			state.emit(Message{Role: RoleBot, Content: strings.TrimSpace(m[1])})
			continue
		}

		state.continuation(line)
	}
	flush()

	if len(sessions) == 0 {
		if strings.TrimSpace(content) == "" {
			return nil
		}
		return []Session{fallbackSession(content, filename)}
	}
	return sessions
}
