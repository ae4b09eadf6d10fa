package transcript

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// bracketPrefix captures the `[timestamp] rest` shape of a log line.
	bracketPrefix = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)
	// roleToken captures the role keyword and the text after it. The \b keeps
	// words that merely start with a role token (AIRLINE, USERNAME) from being
	// read as roles; such lines fall through to continuation handling.
	roleToken = regexp.MustCompile(`^(USER|AI|RESULTS)\b\s*:?\s*(.*)$`)
	// sessionFilename extracts an embedded session UUID from filenames like
	// session_3f2b…_transcript.txt.
	sessionFilename = regexp.MustCompile(`session_([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})_transcript`)
)

const conversationMarker = "CONVERSATION STARTED"

// timestampLayouts are tried in order when parsing the bracketed instant.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// logState models the current-message state of the line parser explicitly:
// either no message is open, or the last emitted message accepts continuation
// lines. Keeping this as a type (rather than a nullable pointer) makes the
// continuation and RESULTS-attachment rules independently testable.
type logState struct {
	messages []Message
	open     bool
}

// emit appends a new message and opens it for continuations.
func (s *logState) emit(m Message) {
	s.messages = append(s.messages, m)
	s.open = true
}

// continuation appends text to the open message, space-joined. Returns false
// when no message is open (the line cannot be attributed and is dropped).
func (s *logState) continuation(text string) bool {
	if !s.open || len(s.messages) == 0 {
		return false
	}
	last := &s.messages[len(s.messages)-1]
	if last.Content == "" {
		last.Content = text
	} else {
		last.Content += " " + text
	}
	return true
}

// attachResults attaches a decoded payload to the immediately preceding
// message, but only when that message is a bot message without a payload.
// Results never attach to user messages and are set at most once. Attachment
// closes the message: annotated content accepts no further continuations.
func (s *logState) attachResults(r *Results) bool {
	s.open = false
	if len(s.messages) == 0 {
		return false
	}
	last := &s.messages[len(s.messages)-1]
	if last.Role != RoleBot || last.Results != nil {
		return false
	}
	last.Results = r
	return true
}

// reset discards the open-message state without touching emitted messages.
func (s *logState) reset() {
	s.open = false
}

// parseTimestampedLog converts `[timestamp] ROLE: text` lines into sessions.
// A CONVERSATION STARTED marker closes the current session and opens a new
// one; a file without markers is a single session. Separator runs (10+ '=')
// and blank lines are skipped. Lines without a bracket prefix continue the
// open message or are dropped when nothing is open.
func parseTimestampedLog(content, filename string) []Session {
	baseID := sessionIDFromFilename(filename)

	var sessions []Session
	state := &logState{}
	var rangeStart, rangeEnd time.Time

	observe := func(t time.Time) {
		if rangeStart.IsZero() || t.Before(rangeStart) {
			rangeStart = t
		}
		if rangeEnd.IsZero() || t.After(rangeEnd) {
			rangeEnd = t
		}
	}

	flush := func() {
		if len(state.messages) == 0 {
			state = &logState{}
			rangeStart, rangeEnd = time.Time{}, time.Time{}
			return
		}
		sessions = append(sessions, Session{
			ID:         numberedID(baseID, len(sessions)),
			SourceFile: filename,
			Messages:   state.messages,
			Meta:       Metadata{Start: rangeStart, End: rangeEnd},
		})
		state = &logState{}
		rangeStart, rangeEnd = time.Time{}, time.Time{}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isSeparator(line) {
			continue
		}

		m := bracketPrefix.FindStringSubmatch(line)
		if m == nil {
			// Continuation of the open message, or unattributable.
			state.continuation(line)
			continue
		}

		ts, tsOK := parseTimestamp(m[1])
		rest := strings.TrimSpace(m[2])

		if strings.HasPrefix(strings.ToUpper(rest), conversationMarker) {
			// The marker's timestamp belongs to the session it opens.
			flush()
			if tsOK {
				observe(ts)
			}
			continue
		}

		if tsOK {
			observe(ts)
		}

		rm := roleToken.FindStringSubmatch(rest)
		if rm == nil {
			// Timestamped line with an unrecognized role keyword: the
			// timestamp still counts toward the range, the text is treated
			// as a continuation so no content is invented or lost silently
			// while a message is open.
			state.continuation(rest)
			continue
		}

		text := strings.TrimSpace(rm[2])
		switch rm[1] {
		case "USER":
			state.emit(Message{Role: RoleUser, Content: text, Timestamp: ts})
		case "AI":
			state.emit(Message{Role: RoleBot, Content: text, Timestamp: ts})
		case "RESULTS":
			state.attachResults(DecodeResults(text))
		}
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

// isSeparator reports whether the line is a run of 10 or more '=' characters.
func isSeparator(line string) bool {
	if len(line) < 10 {
		return false
	}
	for _, r := range line {
		if r != '=' {
			return false
		}
	}
	return true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sessionIDFromFilename prefers an embedded session UUID, falling back to the
// filename itself.
func sessionIDFromFilename(filename string) string {
	if m := sessionFilename.FindStringSubmatch(filename); m != nil {
		return strings.ToLower(m[1])
	}
	return filename
}

// numberedID distinguishes multiple sessions discovered in one file.
func numberedID(base string, idx int) string {
	if idx == 0 {
		return base
	}
	return base + "#" + strconv.Itoa(idx+1)
}
