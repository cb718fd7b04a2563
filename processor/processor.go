package processor

import (
	"sync"

	"github.com/web3tea/fixture-sentinel/models"
)

// ProcessorChain runs filters then transformers over an envelope before it
// reaches the reconcile engine.
type ProcessorChain struct {
	filterProcessor      []EnvelopeProcessor
	transformerProcessor []EnvelopeProcessor
	lk                   sync.Mutex
}

func NewProcessorChain() Processor {
	return &ProcessorChain{
		filterProcessor:      make([]EnvelopeProcessor, 0),
		transformerProcessor: make([]EnvelopeProcessor, 0),
	}
}

func (pc *ProcessorChain) Process(env *models.Envelope) (*models.Envelope, error) {
	currentEnv := env
	for _, p := range append(pc.filterProcessor, pc.transformerProcessor...) {
		processed, err := p.Process(currentEnv)
		if err != nil {
			return currentEnv, err
		}
		currentEnv = processed
	}
	return currentEnv, nil
}

func (pc *ProcessorChain) AddFilter(processor EnvelopeProcessor) {
	pc.lk.Lock()
	defer pc.lk.Unlock()

	pc.filterProcessor = append(pc.filterProcessor, processor)
}

func (pc *ProcessorChain) AddTransformer(processor EnvelopeProcessor) {
	pc.lk.Lock()
	defer pc.lk.Unlock()

	pc.transformerProcessor = append(pc.transformerProcessor, processor)
}
