package di

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/web3tea/fixture-sentinel/calendar"
	"github.com/web3tea/fixture-sentinel/config"
	"github.com/web3tea/fixture-sentinel/contacts"
	"github.com/web3tea/fixture-sentinel/processor"
	"github.com/web3tea/fixture-sentinel/processor/filter"
	"github.com/web3tea/fixture-sentinel/processor/transformer"
	"github.com/web3tea/fixture-sentinel/service"
	"github.com/web3tea/fixture-sentinel/sink"
	"github.com/web3tea/fixture-sentinel/subscriber"
)

func SetupContainer(cfgPath string) do.Injector {

	injector := do.New()

	do.ProvideNamedValue(injector, "configPath", cfgPath)
	do.Provide(injector, NewConfig)
	do.Provide(injector, NewCalendarAPI)
	do.Provide(injector, NewContactsProcessor)
	do.Provide(injector, NewProcessorChain)
	do.Provide(injector, NewSinks)
	do.Provide(injector, NewSyncer)
	do.Provide(injector, NewService)

	return injector
}

func NewConfig(i do.Injector) (*config.Config, error) {
	path := do.MustInvokeNamed[string](i, "configPath")
	if path == "" {
		cfg := config.DefaultConfig
		return &cfg, nil
	}
	return config.LoadFromFile(path)
}

func NewCalendarAPI(i do.Injector) (calendar.API, error) {
	cfg := do.MustInvoke[*config.Config](i)

	switch cfg.Calendar.Provider {
	case "", "memory":
		return calendar.NewMemoryAPI(), nil
	default:
		return nil, fmt.Errorf("unknown calendar provider: %s", cfg.Calendar.Provider)
	}
}

func NewContactsProcessor(i do.Injector) (contacts.Processor, error) {
	return contacts.NewLogProcessor(), nil
}

func NewProcessorChain(i do.Injector) (processor.Processor, error) {
	cfg := do.MustInvoke[*config.Config](i)

	chain := processor.NewProcessorChain()
	if cfg.Processor.DropCancelled {
		chain.AddFilter(filter.NewCancelledFilter())
	}
	if cfg.Processor.Debug {
		chain.AddFilter(filter.NewDebugFilter())
	}
	if cfg.Processor.Dedupe {
		chain.AddTransformer(transformer.NewDedupeTransformer())
	}
	return chain, nil
}

func NewSinks(i do.Injector) ([]sink.Sink, error) {
	cfg := do.MustInvoke[*config.Config](i)

	var sinks []sink.Sink
	for _, typ := range cfg.Sink.Types {
		switch typ {
		case "console":
			sinks = append(sinks, sink.NewConsoleSink(sink.WithColorOutput(cfg.Sink.Color)))
		case "stdout":
			s := sink.NewStdoutSink()
			if err := s.Init(context.Background(), map[string]any{"pretty_print": cfg.Sink.PrettyPrint}); err != nil {
				return nil, fmt.Errorf("failed to init stdout sink: %w", err)
			}
			sinks = append(sinks, s)
		case "debug":
			sinks = append(sinks, sink.NewDebugSink())
		default:
			return nil, fmt.Errorf("unknown sink type: %s", typ)
		}
	}
	return sinks, nil
}

// SyncerOptions maps the calendar config section onto syncer options. The
// one-shot command reuses it and layers a hash cache on top.
func SyncerOptions(cfg *config.Config, contactsProc contacts.Processor) []calendar.Option {
	options := []calendar.Option{
		calendar.WithSyncTag(cfg.Calendar.SyncTag),
		calendar.WithRetentionDays(cfg.Calendar.RetentionDays),
		calendar.WithEventDuration(time.Duration(cfg.Calendar.EventDurationMinutes) * time.Minute),
		calendar.WithReminderMinutes(cfg.Calendar.ReminderMinutes),
		calendar.WithDetailsURL(cfg.Calendar.DetailsURL),
		calendar.WithPacing(time.Duration(cfg.Calendar.PacingMillis) * time.Millisecond),
		calendar.WithRetryPolicy(cfg.Calendar.RetryAttempts, time.Duration(cfg.Calendar.RetryBaseSecs)*time.Second),
	}
	if contactsProc != nil {
		options = append(options, calendar.WithContacts(contactsProc))
	}
	return options
}

func NewSyncer(i do.Injector) (*calendar.Syncer, error) {
	cfg := do.MustInvoke[*config.Config](i)

	api, err := do.Invoke[calendar.API](i)
	if err != nil {
		return nil, err
	}

	var contactsProc contacts.Processor
	if cfg.Contacts.Enabled {
		contactsProc, err = do.Invoke[contacts.Processor](i)
		if err != nil {
			return nil, err
		}
	}

	return calendar.NewSyncer(api, SyncerOptions(cfg, contactsProc)...), nil
}

func NewService(i do.Injector) (*service.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)

	chain, err := do.Invoke[processor.Processor](i)
	if err != nil {
		return nil, err
	}
	syncer, err := do.Invoke[*calendar.Syncer](i)
	if err != nil {
		return nil, err
	}
	sinks, err := do.Invoke[[]sink.Sink](i)
	if err != nil {
		return nil, err
	}

	subCfg := subscriber.Config{
		Enabled:           cfg.Subscriber.Enabled,
		URL:               cfg.Subscriber.URL,
		Channels:          cfg.Subscriber.Channels,
		ConnectTimeout:    time.Duration(cfg.Subscriber.ConnectTimeoutSecs) * time.Second,
		ReconnectDelay:    time.Duration(cfg.Subscriber.ReconnectDelaySecs) * time.Second,
		ReconnectMaxDelay: time.Duration(cfg.Subscriber.ReconnectMaxDelaySecs) * time.Second,
	}

	return service.New(subCfg, chain, syncer, service.WithSinks(sinks...)), nil
}
