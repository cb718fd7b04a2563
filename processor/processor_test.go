package processor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/processor"
)

type recordingStage struct {
	name string
	seen *[]string
	err  error
}

func (r *recordingStage) Process(env *models.Envelope) (*models.Envelope, error) {
	*r.seen = append(*r.seen, r.name)
	return env, r.err
}

func TestChainRunsFiltersBeforeTransformers(t *testing.T) {
	var seen []string
	chain := processor.NewProcessorChain()
	chain.AddTransformer(&recordingStage{name: "transform", seen: &seen})
	chain.AddFilter(&recordingStage{name: "filter", seen: &seen})

	_, err := chain.Process(&models.Envelope{})
	require.NoError(t, err)
	require.Equal(t, []string{"filter", "transform"}, seen)
}

func TestChainStopsOnError(t *testing.T) {
	var seen []string
	boom := errors.New("stage failed")
	chain := processor.NewProcessorChain()
	chain.AddFilter(&recordingStage{name: "first", seen: &seen, err: boom})
	chain.AddFilter(&recordingStage{name: "second", seen: &seen})

	_, err := chain.Process(&models.Envelope{})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"first"}, seen)
}

func TestChainEmptyPassthrough(t *testing.T) {
	env := &models.Envelope{BatchID: "b1"}
	out, err := processor.NewProcessorChain().Process(env)
	require.NoError(t, err)
	require.Same(t, env, out)
}
