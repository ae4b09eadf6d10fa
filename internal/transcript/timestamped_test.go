package transcript

import (
	"strings"
	"testing"
	"time"
)

func TestParseTimestampedLog_BasicConversation(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] USER: Find running shoes",
		"[2024-01-15T10:00:05] AI: Here are some options",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	msgs := sessions[0].Messages
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Find running shoes" {
		t.Errorf("msg[0] = %q %q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != RoleBot || msgs[1].Content != "Here are some options" {
		t.Errorf("msg[1] = %q %q", msgs[1].Role, msgs[1].Content)
	}
}

func TestParseTimestampedLog_ContinuationMerging(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] USER: I am looking",
		"for a winter jacket",
		"in size medium",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	msgs := sessions[0].Messages
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message after continuation merge, got %d", len(msgs))
	}
	want := "I am looking for a winter jacket in size medium"
	if msgs[0].Content != want {
		t.Errorf("content = %q, want %q", msgs[0].Content, want)
	}
}

func TestParseTimestampedLog_ContinuationWithoutOpenMessageDropped(t *testing.T) {
	content := strings.Join([]string{
		"orphan line before any message",
		"[2024-01-15T10:00:00] USER: hello",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	if len(sessions) != 1 || len(sessions[0].Messages) != 1 {
		t.Fatalf("expected 1 session with 1 message, got %+v", sessions)
	}
	if sessions[0].Messages[0].Content != "hello" {
		t.Errorf("orphan line leaked into content: %q", sessions[0].Messages[0].Content)
	}
}

func TestParseTimestampedLog_ResultsAttachToBot(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] USER: Find shoes",
		"[2024-01-15T10:00:05] AI: Here you go",
		"[2024-01-15T10:00:06] RESULTS: STYLES: ['Bold']; PRODUCTS [['p1','p2']]",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	msgs := sessions[0].Messages
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages (RESULTS is not a message), got %d", len(msgs))
	}
	bot := msgs[1]
	if bot.Results == nil {
		t.Fatal("expected results attached to bot message")
	}
	if len(bot.Results.Products) != 2 || bot.Results.Products[0] != "p1" || bot.Results.Products[1] != "p2" {
		t.Errorf("products = %v", bot.Results.Products)
	}
	if len(bot.Results.Styles) != 1 || bot.Results.Styles[0] != "Bold" {
		t.Errorf("styles = %v", bot.Results.Styles)
	}
}

func TestParseTimestampedLog_ResultsAfterUserDropped(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] USER: Find shoes",
		"[2024-01-15T10:00:01] RESULTS: PRODUCTS [['p1']]",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	for _, m := range sessions[0].Messages {
		if m.Results != nil {
			t.Errorf("results attached to %s message, want none anywhere", m.Role)
		}
	}
}

func TestParseTimestampedLog_ResultsSetAtMostOnce(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] AI: options below",
		"[2024-01-15T10:00:01] RESULTS: PRODUCTS [['first']]",
		"[2024-01-15T10:00:02] RESULTS: PRODUCTS [['second']]",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	bot := sessions[0].Messages[0]
	if bot.Results == nil {
		t.Fatal("expected first results payload attached")
	}
	if len(bot.Results.Products) != 1 || bot.Results.Products[0] != "first" {
		t.Errorf("products = %v, want [first]", bot.Results.Products)
	}
}

func TestParseTimestampedLog_RoleTokenBoundary(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] USER: hello",
		"[2024-01-15T10:00:05] AIRLINE: flight delayed",
		"[2024-01-15T10:00:10] USERNAME: alice",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	msgs := sessions[0].Messages
	if len(msgs) != 1 {
		t.Fatalf("words starting with a role token must not open messages, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0].Role != RoleUser {
		t.Errorf("role = %q", msgs[0].Role)
	}
	// Unrecognized-role lines continue the open message verbatim.
	want := "hello AIRLINE: flight delayed USERNAME: alice"
	if msgs[0].Content != want {
		t.Errorf("content = %q, want %q", msgs[0].Content, want)
	}
}

func TestParseTimestampedLog_RoleTokenWithoutColon(t *testing.T) {
	sessions := parseTimestampedLog("[2024-01-15T10:00:00] USER hi there", "chat.txt")
	msgs := sessions[0].Messages
	if len(msgs) != 1 || msgs[0].Role != RoleUser || msgs[0].Content != "hi there" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestParseTimestampedLog_ConversationMarkerSplitsSessions(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] CONVERSATION STARTED",
		"[2024-01-15T10:00:05] USER: first question",
		"==========================",
		"[2024-01-15T11:00:00] CONVERSATION STARTED",
		"[2024-01-15T11:00:05] USER: second question",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID == sessions[1].ID {
		t.Errorf("session ids must differ, both %q", sessions[0].ID)
	}
	if sessions[0].Messages[0].Content != "first question" {
		t.Errorf("session 0 content = %q", sessions[0].Messages[0].Content)
	}
	if sessions[1].Messages[0].Content != "second question" {
		t.Errorf("session 1 content = %q", sessions[1].Messages[0].Content)
	}
}

func TestParseTimestampedLog_MarkerTimestampCountsTowardRange(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T09:55:00] CONVERSATION STARTED",
		"[2024-01-15T10:00:00] USER: hi",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	wantStart := time.Date(2024, 1, 15, 9, 55, 0, 0, time.UTC)
	if !sessions[0].Meta.Start.Equal(wantStart) {
		t.Errorf("start = %v, want marker timestamp %v", sessions[0].Meta.Start, wantStart)
	}
}

func TestParseTimestampedLog_SeparatorAndBlankLinesSkipped(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] USER: question",
		"",
		"====================",
		"still the same question",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	msgs := sessions[0].Messages
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Content != "question still the same question" {
		t.Errorf("content = %q", msgs[0].Content)
	}
}

func TestParseTimestampedLog_SessionIDFromFilename(t *testing.T) {
	const id = "3f2b8a10-9c4d-4e21-b7aa-1f2e3d4c5b6a"
	sessions := parseTimestampedLog("[2024-01-15T10:00:00] USER: hi", "session_"+id+"_transcript.txt")
	if sessions[0].ID != id {
		t.Errorf("session id = %q, want embedded uuid", sessions[0].ID)
	}

	sessions = parseTimestampedLog("[2024-01-15T10:00:00] USER: hi", "export.txt")
	if sessions[0].ID != "export.txt" {
		t.Errorf("session id = %q, want filename fallback", sessions[0].ID)
	}
}

func TestParseTimestampedLog_DateRange(t *testing.T) {
	content := strings.Join([]string{
		"[2024-01-15T10:00:00] USER: hi",
		"[not-a-timestamp] USER: ignored for range",
		"[2024-01-17T18:30:00] AI: bye",
	}, "\n")

	sessions := parseTimestampedLog(content, "chat.txt")
	meta := sessions[0].Meta
	wantStart := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 17, 18, 30, 0, 0, time.UTC)
	if !meta.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", meta.Start, wantStart)
	}
	if !meta.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", meta.End, wantEnd)
	}
}

func TestParseTimestampedLog_UnparseableTimestampStillProcessed(t *testing.T) {
	sessions := parseTimestampedLog("[garbage] USER: still here", "chat.txt")
	if len(sessions) != 1 || len(sessions[0].Messages) != 1 {
		t.Fatalf("expected message despite bad timestamp, got %+v", sessions)
	}
	m := sessions[0].Messages[0]
	if m.Content != "still here" || !m.Timestamp.IsZero() {
		t.Errorf("message = %+v", m)
	}
}
