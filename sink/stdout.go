package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
)

// StdoutSink writes envelopes to standard out, either as indented blocks
// for humans or as JSON lines for piping into other tools.
type StdoutSink struct {
	prettyPrint bool
}

func NewStdoutSink() *StdoutSink {
	return &StdoutSink{
		prettyPrint: true,
	}
}

func (s *StdoutSink) Init(ctx context.Context, config map[string]any) error {
	log.Debug().Msg("StdoutSink Init")

	if prettyPrint, ok := config["pretty_print"].(bool); ok {
		s.prettyPrint = prettyPrint
	}

	return nil
}

func (s *StdoutSink) Close() error {
	log.Debug().Msg("StdoutSink Close")
	return nil
}

func (s *StdoutSink) Flush(ctx context.Context) error {
	log.Debug().Msg("StdoutSink Flush")
	return nil
}

func (s *StdoutSink) Type() string {
	return "stdout"
}

func (s *StdoutSink) Write(ctx context.Context, envelopes []*models.Envelope) error {
	log.Debug().Msgf("StdoutSink Write %d envelopes", len(envelopes))

	if len(envelopes) == 0 {
		return nil
	}

	if s.prettyPrint {
		fmt.Print(s.buildPrettyOutput(envelopes))
		return nil
	}

	var outputs []string
	for _, env := range envelopes {
		data, err := json.Marshal(env)
		if err != nil {
			log.Error().Err(err).Str("batch", env.BatchID).Msg("Failed to marshal envelope")
			continue
		}
		outputs = append(outputs, string(data))
	}
	fmt.Println(strings.Join(outputs, "\n"))

	return nil
}

func (s *StdoutSink) buildPrettyOutput(envelopes []*models.Envelope) string {
	var sb strings.Builder

	for i, env := range envelopes {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString("----------------------------------------\n")
		sb.WriteString(fmt.Sprintf("Batch: %s\n", env.BatchID))
		sb.WriteString(fmt.Sprintf("Channel: %s\n", env.Channel))
		sb.WriteString(fmt.Sprintf("Schema: %s (%s)\n", env.SchemaVersion, env.Class))
		sb.WriteString(fmt.Sprintf("Received: %s\n", env.ReceivedAt.Format(time.RFC3339)))
		if env.HighPriority {
			sb.WriteString("Priority: HIGH\n")
		}

		sb.WriteString("Fixtures:\n")
		matchBytes, _ := json.MarshalIndent(env.Matches, "  ", "  ")
		sb.WriteString("  ")
		sb.Write(matchBytes)
		sb.WriteString("\n")

		if len(env.DetailedChanges) > 0 {
			sb.WriteString("Changes:\n")
			changeBytes, _ := json.MarshalIndent(env.DetailedChanges, "  ", "  ")
			sb.WriteString("  ")
			sb.Write(changeBytes)
			sb.WriteString("\n")
		}

		sb.WriteString("----------------------------------------\n")
	}

	return sb.String()
}

var _ Sink = (*StdoutSink)(nil)
