package transformer

import (
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
	"github.com/web3tea/fixture-sentinel/processor"
)

// DedupeTransformer collapses duplicate fixture ids within one envelope.
// The first occurrence keeps its position, the last occurrence wins on
// content, which is also the outcome the reconcile loop would produce by
// writing them in order.
type DedupeTransformer struct{}

func NewDedupeTransformer() *DedupeTransformer {
	return &DedupeTransformer{}
}

// Process implements processor.EnvelopeProcessor.
func (d *DedupeTransformer) Process(env *models.Envelope) (*models.Envelope, error) {
	if len(env.Matches) < 2 {
		return env, nil
	}

	out := make([]models.Fixture, 0, len(env.Matches))
	pos := make(map[string]int, len(env.Matches))
	for _, m := range env.Matches {
		if i, ok := pos[m.ID]; ok {
			out[i] = m
			continue
		}
		pos[m.ID] = len(out)
		out = append(out, m)
	}

	if len(out) != len(env.Matches) {
		log.Debugf("Collapsed %d duplicate fixtures in batch %s", len(env.Matches)-len(out), env.BatchID)
		env.Matches = out
	}
	return env, nil
}

var _ processor.EnvelopeProcessor = (*DedupeTransformer)(nil)
