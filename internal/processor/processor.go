// Package processor glues the pipeline together: ingest, metrics, optional
// persistence and optional bus announcements. Both the HTTP API and the
// NATS handler funnel through Analyze so every run is recorded the same way.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/tally/internal/events"
	"github.com/MikeSquared-Agency/tally/internal/ingest"
	"github.com/MikeSquared-Agency/tally/internal/metrics"
	"github.com/MikeSquared-Agency/tally/internal/store"
	"github.com/MikeSquared-Agency/tally/internal/transcript"
)

type Processor struct {
	store  *store.Store   // nil when persistence is not configured
	events *events.Client // nil when the bus is not configured
	logger *slog.Logger
}

func New(s *store.Store, ev *events.Client, logger *slog.Logger) *Processor {
	return &Processor{store: s, events: ev, logger: logger}
}

// Analyze runs the full pipeline over a batch of files: parse and normalize
// each file in isolation, compute the metrics snapshot, persist the run when
// a store is present, and announce completion when the bus is present.
// Per-file parse problems are reported inside the run's file results; only
// persistence failure is an error.
func (p *Processor) Analyze(ctx context.Context, files []ingest.File, source string) (*store.AnalysisRun, error) {
	sessions, results := ingest.Process(files)
	return p.finishRun(ctx, source, sessions, results)
}

// AnalyzeDir runs the pipeline over every recognized file under dir. Used for
// operator-driven batch runs over historical transcript dumps.
func (p *Processor) AnalyzeDir(ctx context.Context, dir string) (*store.AnalysisRun, error) {
	sessions, results, err := ingest.ScanDir(dir, p.logger)
	if err != nil {
		return nil, err
	}
	return p.finishRun(ctx, "scan", sessions, results)
}

func (p *Processor) finishRun(ctx context.Context, source string, sessions []transcript.Session, results []ingest.FileResult) (*store.AnalysisRun, error) {
	snap := metrics.Compute(sessions)

	run := &store.AnalysisRun{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Source:       source,
		FileCount:    len(results),
		SessionCount: len(sessions),
		Files:        results,
		Snapshot:     snap,
	}

	if p.store != nil {
		if err := p.store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	if p.events != nil {
		evt := events.AnalysisCompletedEvent{
			RunID:        run.ID.String(),
			Source:       source,
			FileCount:    run.FileCount,
			SessionCount: run.SessionCount,
			TotalQueries: snap.QueryAnalysis.TotalQueries,
		}
		if err := p.events.Publish(events.SubjectAnalysisCompleted, evt); err != nil {
			p.logger.Warn("failed to publish completion event", "run_id", run.ID, "error", err)
		}
	}

	p.logger.Info("analysis completed",
		"run_id", run.ID,
		"source", source,
		"files", run.FileCount,
		"sessions", run.SessionCount,
	)
	return run, nil
}

// HandleTranscriptStored is the NATS handler for tally.transcript.stored.
func (p *Processor) HandleTranscriptStored(subject string, data []byte) {
	var evt events.TranscriptStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse transcript event", "error", err)
		return
	}

	name := evt.Filename
	if name == "" {
		// The ingest layer gates on extension; stored events without a
		// filename are treated as plain text.
		name = evt.SessionRef + ".txt"
	}

	p.logger.Info("processing stored transcript", "session_ref", evt.SessionRef, "filename", name)

	if _, err := p.Analyze(context.Background(), []ingest.File{{Name: name, Content: []byte(evt.Content)}}, "event"); err != nil {
		p.logger.Error("event analysis failed", "session_ref", evt.SessionRef, "error", err)
	}
}
