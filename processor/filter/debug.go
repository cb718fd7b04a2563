package filter

import (
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
	"github.com/web3tea/fixture-sentinel/processor"
)

type DebugFilter struct{}

func NewDebugFilter() *DebugFilter {
	return &DebugFilter{}
}

func (f *DebugFilter) Process(env *models.Envelope) (*models.Envelope, error) {
	log.Debugf("Filter envelope %s: schema %s, %d matches", env.BatchID, env.SchemaVersion, len(env.Matches))
	return env, nil
}

var _ processor.EnvelopeProcessor = (*DebugFilter)(nil)
