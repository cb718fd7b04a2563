package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/web3tea/fixture-sentinel/calendar"
	"github.com/web3tea/fixture-sentinel/config"
	"github.com/web3tea/fixture-sentinel/contacts"
	"github.com/web3tea/fixture-sentinel/di"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
	"github.com/web3tea/fixture-sentinel/sink"
	"github.com/web3tea/fixture-sentinel/store"
)

var syncCmd = &cli.Command{
	Name:  "sync",
	Usage: "Reconcile a fixture list from a file or stdin, then exit",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a TOML or JSON config file",
		},
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Value:   "-",
			Usage:   "fixture JSON file, - for stdin",
		},
		&cli.BoolFlag{
			Name:  "delete",
			Usage: "remove the listed fixtures' events instead of syncing them",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "ignore the local hash cache and hit the destination for every fixture",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "run against the in-memory destination regardless of the configured provider",
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		injector := di.SetupContainer(c.String("config"))

		cfg, err := do.Invoke[*config.Config](injector)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log.SetGlobalLevel(log.ParseLevel(cfg.LogLevel))

		if c.Bool("dry-run") {
			cfg.Calendar.Provider = "memory"
		}

		fixtures, err := readFixtures(c.String("input"))
		if err != nil {
			return err
		}
		if len(fixtures) == 0 {
			log.Infof("No fixtures in input, nothing to do")
			return nil
		}

		api, err := do.Invoke[calendar.API](injector)
		if err != nil {
			return fmt.Errorf("failed to build calendar provider: %w", err)
		}

		var contactsProc contacts.Processor
		if cfg.Contacts.Enabled {
			if contactsProc, err = do.Invoke[contacts.Processor](injector); err != nil {
				return err
			}
		}

		options := di.SyncerOptions(cfg, contactsProc)
		if !c.Bool("no-cache") && cfg.Store.Path != "" {
			st, err := store.OpenFileStore(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("failed to open hash cache: %w", err)
			}
			defer st.Close()
			options = append(options, calendar.WithHashCache(st))
		}
		syncer := calendar.NewSyncer(api, options...)

		// Show what arrived before touching the destination.
		console := sink.NewConsoleSink(sink.WithColorOutput(cfg.Sink.Color))
		env := &models.Envelope{
			BatchID:    uuid.NewString(),
			Class:      models.SchemaLegacy,
			Channel:    "cli",
			ReceivedAt: time.Now().UTC(),
			Matches:    fixtures,
		}
		if err := console.Write(ctx, []*models.Envelope{env}); err != nil {
			log.Warnf("Console output failed: %v", err)
		}

		var res *calendar.Result
		if c.Bool("delete") {
			res = syncer.Remove(ctx, fixtures)
		} else {
			res = syncer.Sync(ctx, fixtures)
		}

		log.Infof("Sync finished: created=%d updated=%d unchanged=%d deleted=%d skipped=%d failed=%d",
			res.Created, res.Updated, res.Unchanged, res.Deleted, res.Skipped, res.Failed)

		if !res.OK() {
			return fmt.Errorf("sync failed: %d of %d fixtures failed", res.Failed, len(fixtures))
		}
		return nil
	},
}

func readFixtures(path string) ([]models.Fixture, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fixtures []models.Fixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return fixtures, nil
}
