package processor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/MikeSquared-Agency/tally/internal/events"
	"github.com/MikeSquared-Agency/tally/internal/ingest"
)

func testProcessor() *Processor {
	return New(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAnalyze(t *testing.T) {
	files := []ingest.File{
		{Name: "a.txt", Content: []byte("User: find shoes\nBot: here you go")},
		{Name: "b.bin", Content: []byte("rejected")},
	}

	run, err := testProcessor().Analyze(context.Background(), files, "upload")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if run.ID.String() == "" {
		t.Error("run id not assigned")
	}
	if run.Source != "upload" {
		t.Errorf("source = %q", run.Source)
	}
	if run.FileCount != 2 || run.SessionCount != 1 {
		t.Errorf("counts = %d files / %d sessions", run.FileCount, run.SessionCount)
	}
	if len(run.Files) != 2 {
		t.Fatalf("file results = %+v", run.Files)
	}
	if run.Snapshot == nil || run.Snapshot.QueryAnalysis.TotalQueries != 1 {
		t.Errorf("snapshot = %+v", run.Snapshot)
	}
}

func TestAnalyze_EmptyBatch(t *testing.T) {
	run, err := testProcessor().Analyze(context.Background(), nil, "upload")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if run.SessionCount != 0 || run.Snapshot == nil {
		t.Errorf("run = %+v", run)
	}
}

func TestHandleTranscriptStored(t *testing.T) {
	// Without a store the handler runs the pipeline and discards the run;
	// the assertion is that malformed and well-formed events both return
	// without panicking and without leaking state.
	p := testProcessor()

	p.HandleTranscriptStored(events.SubjectTranscriptStored, []byte("not json"))

	evt, err := json.Marshal(events.TranscriptStoredEvent{
		SessionRef: "abc123",
		Content:    "User: hello\nBot: hi",
	})
	if err != nil {
		t.Fatal(err)
	}
	p.HandleTranscriptStored(events.SubjectTranscriptStored, evt)
}
