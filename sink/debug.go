package sink

import (
	"context"

	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
)

// DebugSink logs a one-line summary per envelope and drops it.
type DebugSink struct{}

func NewDebugSink() *DebugSink {
	return &DebugSink{}
}

func (s *DebugSink) Init(ctx context.Context, config map[string]any) error {
	log.Debug().Msg("DebugSink Init")
	return nil
}

// Close implements Sink.
func (s *DebugSink) Close() error {
	log.Debug().Msg("DebugSink Close")
	return nil
}

// Flush implements Sink.
func (s *DebugSink) Flush(ctx context.Context) error {
	log.Debug().Msg("DebugSink Flush")
	return nil
}

// Type implements Sink.
func (s *DebugSink) Type() string {
	return "debug"
}

// Write implements Sink.
func (s *DebugSink) Write(ctx context.Context, envelopes []*models.Envelope) error {
	for _, env := range envelopes {
		log.Debug().
			Str("batch", env.BatchID).
			Str("schema", env.SchemaVersion).
			Int("fixtures", len(env.Matches)).
			Bool("high_priority", env.HighPriority).
			Msg("DebugSink Write")
	}
	return nil
}

var _ Sink = (*DebugSink)(nil)
