package processor

import (
	"github.com/web3tea/fixture-sentinel/models"
)

type EnvelopeProcessor interface {
	Process(env *models.Envelope) (*models.Envelope, error)
}

type ProcessorComposite interface {
	AddFilter(processor EnvelopeProcessor)
	AddTransformer(processor EnvelopeProcessor)
}

type Processor interface {
	EnvelopeProcessor
	ProcessorComposite
}
