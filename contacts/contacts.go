// Package contacts maintains an address book of match officials alongside
// the calendar. Providers are pluggable; the default one only records what
// it would have done.
package contacts

import (
	"context"

	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
)

// Processor receives every fixture whose event was created or updated and
// keeps the officials' contact entries current.
type Processor interface {
	ProcessOfficials(ctx context.Context, fixture *models.Fixture) error
}

// LogProcessor is the no-op provider: it logs the officials it would sync
// and succeeds. Useful as a stand-in until a directory backend is wired.
type LogProcessor struct{}

func NewLogProcessor() *LogProcessor {
	return &LogProcessor{}
}

func (p *LogProcessor) ProcessOfficials(ctx context.Context, fixture *models.Fixture) error {
	for _, official := range fixture.Officials {
		log.Debug().
			Str("fixture", fixture.ID).
			Str("role", official.Role).
			Str("name", official.Name).
			Msg("Contact entry up to date")
	}
	return nil
}

var _ Processor = (*LogProcessor)(nil)
