package transcript

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// timestampLine matches the `[ISO-8601] ...` bracket prefix anywhere in the
// content. Detection is deliberately loose; the timestamped parser does the
// strict per-line work.
var timestampLine = regexp.MustCompile(`(?m)^\s*\[\d{4}-\d{2}-\d{2}[^\]]*\]`)

// Detect decides which parsing grammar applies to raw content. It never
// fails: content matching no grammar is classified as loose text, and the
// loose parser has its own whole-content fallback.
func Detect(content []byte) Format {
	trimmed := bytes.TrimSpace(content)
	if json.Valid(trimmed) {
		switch {
		case len(trimmed) > 0 && trimmed[0] == '[':
			return FormatJSONArray
		case len(trimmed) > 0 && trimmed[0] == '{':
			return FormatJSONObject
		}
		// Scalar JSON (a bare string or number) is not a session export;
		// fall through to the text grammars.
	}
	if timestampLine.Match(content) {
		return FormatTimestampedLog
	}
	return FormatLooseText
}

// Parse converts raw file content into sessions using whichever grammar
// Detect selects. It always returns at least one session for non-empty
// content and never returns an error: unparseable input degrades to a single
// unknown-role message holding the raw text.
func Parse(content []byte, filename string) []Session {
	switch Detect(content) {
	case FormatJSONArray, FormatJSONObject:
		return parseJSONSessions(content, filename)
	case FormatTimestampedLog:
		return parseTimestampedLog(string(content), filename)
	default:
		return parseLooseText(string(content), filename)
	}
}

// fallbackSession wraps the entire raw content in a single unknown-role
// message so that no file's content is ever dropped.
func fallbackSession(content, filename string) Session {
	return Session{
		ID:         filename,
		SourceFile: filename,
		Messages: []Message{
			{Role: RoleUnknown, Content: strings.TrimSpace(content)},
		},
	}
}
