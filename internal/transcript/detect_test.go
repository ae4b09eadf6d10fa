package transcript

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    Format
	}{
		{"json array", `[{"session_id":"s1","messages":[]}]`, FormatJSONArray},
		{"json object", `{"session_id":"s1","messages":[]}`, FormatJSONObject},
		{"timestamped", "[2024-01-15T10:00:00] USER: hi", FormatTimestampedLog},
		{"timestamped mid file", "header line\n[2024-01-15T10:00:00] AI: hi", FormatTimestampedLog},
		{"loose", "User: hi\nBot: hello", FormatLooseText},
		{"plain prose", "nothing structured here", FormatLooseText},
		{"scalar json", `"just a string"`, FormatLooseText},
		{"bracket but not a date", "[note] USER: hi", FormatLooseText},
	}

	for _, tc := range cases {
		if got := Detect([]byte(tc.content)); got != tc.want {
			t.Errorf("%s: Detect = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParse_NeverDropsContent(t *testing.T) {
	sessions := Parse([]byte("completely unstructured blob"), "blob.txt")
	if len(sessions) != 1 {
		t.Fatalf("expected fallback session, got %d", len(sessions))
	}
	if sessions[0].Messages[0].Role != RoleUnknown {
		t.Errorf("role = %q, want unknown", sessions[0].Messages[0].Role)
	}
	if sessions[0].Messages[0].Content != "completely unstructured blob" {
		t.Errorf("content = %q", sessions[0].Messages[0].Content)
	}
}
