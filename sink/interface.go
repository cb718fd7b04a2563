package sink

import (
	"context"

	"github.com/web3tea/fixture-sentinel/models"
)

// Sink receives every envelope that survives the processor chain. Writes
// are fan-out side channels: a failing sink is logged and never blocks the
// calendar sync.
type Sink interface {
	Init(ctx context.Context, config map[string]any) error
	Write(ctx context.Context, envelopes []*models.Envelope) error
	Flush(ctx context.Context) error
	Close() error
	Type() string
}
