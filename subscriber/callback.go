package subscriber

import (
	"context"

	"github.com/web3tea/fixture-sentinel/models"
)

// SyncCallback handles one classified fixture-update envelope. The return
// value reports whether downstream synchronization succeeded; the subscriber
// records it but keeps consuming either way.
type SyncCallback func(ctx context.Context, env *models.Envelope) bool

// LegacySyncCallback is the older convention that only receives the fixture
// list, without schema or change context.
type LegacySyncCallback func(ctx context.Context, fixtures []models.Fixture) bool

// WrapLegacy adapts a LegacySyncCallback to the envelope convention so the
// subscriber only ever dispatches one callback shape.
func WrapLegacy(cb LegacySyncCallback) SyncCallback {
	return func(ctx context.Context, env *models.Envelope) bool {
		return cb(ctx, env.Matches)
	}
}
