package filter

import (
	"github.com/samber/lo"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
	"github.com/web3tea/fixture-sentinel/processor"
)

// CancelledFilter drops fixtures the feed has withdrawn. Their calendar
// events are not touched here; the orphan sweep removes them once the
// fixture leaves the feed entirely.
type CancelledFilter struct{}

func NewCancelledFilter() *CancelledFilter {
	return &CancelledFilter{}
}

func (f *CancelledFilter) Process(env *models.Envelope) (*models.Envelope, error) {
	kept := lo.Filter(env.Matches, func(m models.Fixture, _ int) bool {
		return !m.Cancelled()
	})
	if dropped := len(env.Matches) - len(kept); dropped > 0 {
		log.Infof("Dropped %d cancelled fixtures from batch %s", dropped, env.BatchID)
		env.Matches = kept
	}
	return env, nil
}

var _ processor.EnvelopeProcessor = (*CancelledFilter)(nil)
