// Package events is Tally's NATS surface: it announces completed analysis
// runs and accepts transcript payloads for event-driven ingestion. The bus
// is optional; callers hold a nil *Client when NATS is not configured.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectTranscriptStored carries a single stored transcript to analyze.
	SubjectTranscriptStored = "tally.transcript.stored"
	// SubjectAnalysisCompleted announces a finished analysis run.
	SubjectAnalysisCompleted = "tally.analysis.completed"
	// SubjectRegistered announces service startup.
	SubjectRegistered = "tally.service.registered"
)

// TranscriptStoredEvent is the payload of SubjectTranscriptStored.
type TranscriptStoredEvent struct {
	SessionRef string `json:"sessionRef"`
	Filename   string `json:"filename"`
	Content    string `json:"content"`
}

// AnalysisCompletedEvent is the payload of SubjectAnalysisCompleted.
type AnalysisCompletedEvent struct {
	RunID        string `json:"runId"`
	Source       string `json:"source"`
	FileCount    int    `json:"fileCount"`
	SessionCount int    `json:"sessionCount"`
	TotalQueries int    `json:"totalQueries"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
