package calendar

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/web3tea/fixture-sentinel/contacts"
	"github.com/web3tea/fixture-sentinel/metrics"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
	"github.com/web3tea/fixture-sentinel/store"
)

const (
	defaultSyncTag         = "fixture-sentinel"
	defaultRetentionDays   = 7
	defaultEventDuration   = 2 * time.Hour
	defaultReminderMinutes = 48 * 60
	defaultPacing          = time.Second
	defaultMaxRetries      = 5
	defaultRetryBase       = 60 * time.Second
)

// Syncer reconciles fixture batches against a destination calendar. It is
// idempotent: replaying a batch converges on the same destination state.
type Syncer struct {
	api      API
	contacts contacts.Processor
	cache    store.Store

	syncTag         string
	retentionDays   int
	eventDuration   time.Duration
	reminderMinutes int
	detailsURL      string

	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
}

type Option func(*Syncer)

// WithContacts attaches a contact processor invoked after each create or
// update. Its failures are logged, never counted against the fixture.
func WithContacts(p contacts.Processor) Option {
	return func(s *Syncer) {
		s.contacts = p
	}
}

// WithHashCache attaches a local cache of the hashes written on the
// previous run. Fixtures whose hash matches skip the destination entirely;
// useful for the one-shot command, wrong for the service where the
// destination-held hash is the source of truth.
func WithHashCache(cache store.Store) Option {
	return func(s *Syncer) {
		s.cache = cache
	}
}

// WithSyncTag sets the tag stamped on managed events. Only events carrying
// it are ever considered by the orphan sweep.
func WithSyncTag(tag string) Option {
	return func(s *Syncer) {
		if tag != "" {
			s.syncTag = tag
		}
	}
}

// WithRetentionDays bounds how far back lookups and the orphan sweep reach.
func WithRetentionDays(days int) Option {
	return func(s *Syncer) {
		if days >= 0 {
			s.retentionDays = days
		}
	}
}

func WithEventDuration(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.eventDuration = d
		}
	}
}

func WithReminderMinutes(minutes int) Option {
	return func(s *Syncer) {
		if minutes > 0 {
			s.reminderMinutes = minutes
		}
	}
}

// WithDetailsURL sets a printf template with one %s verb for the fixture
// id, appended to every event description. Empty disables the line.
func WithDetailsURL(tmpl string) Option {
	return func(s *Syncer) {
		s.detailsURL = tmpl
	}
}

// WithPacing sets the minimum interval between destination calls. Zero
// disables pacing.
func WithPacing(interval time.Duration) Option {
	return func(s *Syncer) {
		if interval <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithRetryPolicy tunes the rate-limit retry loop: total attempts and the
// base delay the exponential backoff grows from.
func WithRetryPolicy(attempts int, base time.Duration) Option {
	return func(s *Syncer) {
		if attempts > 0 {
			s.maxRetries = attempts
		}
		if base > 0 {
			s.retryBase = base
		}
	}
}

func NewSyncer(api API, options ...Option) *Syncer {
	s := &Syncer{
		api:             api,
		syncTag:         defaultSyncTag,
		retentionDays:   defaultRetentionDays,
		eventDuration:   defaultEventDuration,
		reminderMinutes: defaultReminderMinutes,
		limiter:         rate.NewLimiter(rate.Every(defaultPacing), 1),
		maxRetries:      defaultMaxRetries,
		retryBase:       defaultRetryBase,
	}

	for _, opt := range options {
		opt(s)
	}
	return s
}

// Sync reconciles the batch: sweeps orphaned events, then brings each
// fixture's event in line with the feed. Failures are per fixture; the
// batch always runs to the end.
func (s *Syncer) Sync(ctx context.Context, fixtures []models.Fixture) *Result {
	return s.run(ctx, fixtures, false)
}

// Remove deletes the events of the given fixtures and nothing else. Absent
// events are skipped quietly. The orphan sweep does not run: the list names
// what to remove, not what the feed currently holds.
func (s *Syncer) Remove(ctx context.Context, fixtures []models.Fixture) *Result {
	return s.run(ctx, fixtures, true)
}

func (s *Syncer) run(ctx context.Context, fixtures []models.Fixture, deleteOnly bool) *Result {
	start := time.Now()
	metrics.ActiveSyncs.Inc()
	defer metrics.ActiveSyncs.Dec()

	res := &Result{}
	timeMin := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	if !deleteOnly {
		s.sweepOrphans(ctx, fixtures, timeMin, res)
	}

	for i := range fixtures {
		if deleteOnly {
			s.removeOne(ctx, &fixtures[i], timeMin, res)
			continue
		}
		s.syncOne(ctx, &fixtures[i], timeMin, res)
	}

	res.SyncedAt = time.Now().UTC()
	s.recordRun(res, time.Since(start))

	log.Info().
		Int("fixtures", len(fixtures)).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("unchanged", res.Unchanged).
		Int("deleted", res.Deleted).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Bool("ok", res.OK()).
		Msg("Reconcile run finished")

	return res
}

// sweepOrphans deletes sync-tagged events whose fixture is no longer in the
// feed. Only events starting inside the retention window are considered;
// older ones age out untouched.
func (s *Syncer) sweepOrphans(ctx context.Context, fixtures []models.Fixture, timeMin time.Time, res *Result) {
	current := lo.SliceToMap(fixtures, func(f models.Fixture) (string, struct{}) {
		return f.ID, struct{}{}
	})

	events, err := s.listEvents(ctx, timeMin)
	if err != nil {
		log.Error().Err(err).Msg("Orphan sweep: listing tagged events failed")
		return
	}

	for _, ev := range events {
		fid := ev.FixtureID()
		if fid != "" {
			if _, ok := current[fid]; ok {
				continue
			}
		}
		// Tagged but unstamped events are orphans too.
		if err := s.deleteEvent(ctx, ev.ID); err != nil {
			res.Failed++
			log.Error().Err(err).Str("event", ev.ID).Str("fixture", fid).Msg("Orphan sweep: delete failed")
			continue
		}
		res.Deleted++
		log.Info().Str("event", ev.ID).Str("fixture", fid).Msg("Orphan sweep: deleted event")
	}
}

func (s *Syncer) syncOne(ctx context.Context, f *models.Fixture, timeMin time.Time, res *Result) {
	kickoff, err := f.Kickoff.Time()
	if err != nil {
		res.Skipped++
		log.Error().Err(err).Str("fixture", f.ID).Msg("Skipping fixture with undecodable kickoff")
		return
	}

	hash, err := ContentHash(f)
	if err != nil {
		res.Skipped++
		log.Error().Err(err).Str("fixture", f.ID).Msg("Skipping fixture that cannot be hashed")
		return
	}

	if s.cache != nil {
		if prev, cacheErr := s.cache.Get(ctx, f.ID); cacheErr == nil && string(prev) == hash {
			res.Unchanged++
			log.Debug().Str("fixture", f.ID).Msg("No changes since previous run, skipping")
			return
		}
	}

	existing, err := s.findEvent(ctx, f.ID, timeMin)
	if err != nil {
		res.Failed++
		log.Error().Err(err).Str("fixture", f.ID).Msg("Event lookup failed")
		return
	}

	ev := s.buildEvent(f, kickoff, hash)

	switch {
	case existing == nil:
		inserted, err := s.insertEvent(ctx, ev)
		if err != nil {
			res.Failed++
			log.Error().Err(err).Str("fixture", f.ID).Msg("Event insert failed")
			return
		}
		res.Created++
		log.Info().Str("fixture", f.ID).Str("event", inserted.ID).Msg("Created event")

	case existing.ContentHash() == hash:
		res.Unchanged++
		log.Info().Str("fixture", f.ID).Msg("No changes detected, skipping update")
		s.cacheHash(ctx, f.ID, hash)
		return

	default:
		ev.ID = existing.ID
		if _, err := s.updateEvent(ctx, ev); err != nil {
			res.Failed++
			log.Error().Err(err).Str("fixture", f.ID).Msg("Event update failed")
			return
		}
		res.Updated++
		log.Info().Str("fixture", f.ID).Str("event", ev.ID).Msg("Updated event")
	}

	s.cacheHash(ctx, f.ID, hash)
	s.processContacts(ctx, f)
}

func (s *Syncer) removeOne(ctx context.Context, f *models.Fixture, timeMin time.Time, res *Result) {
	existing, err := s.findEvent(ctx, f.ID, timeMin)
	if err != nil {
		res.Failed++
		log.Error().Err(err).Str("fixture", f.ID).Msg("Event lookup failed")
		return
	}
	if existing == nil {
		log.Debug().Str("fixture", f.ID).Msg("No event to remove")
		return
	}

	if err := s.deleteEvent(ctx, existing.ID); err != nil {
		res.Failed++
		log.Error().Err(err).Str("fixture", f.ID).Str("event", existing.ID).Msg("Event delete failed")
		return
	}
	res.Deleted++
	log.Info().Str("fixture", f.ID).Str("event", existing.ID).Msg("Deleted event")
	s.cacheDrop(ctx, f.ID)
}

func (s *Syncer) findEvent(ctx context.Context, fixtureID string, timeMin time.Time) (*Event, error) {
	var ev *Event
	err := s.call(ctx, "find", func(ctx context.Context) error {
		var callErr error
		ev, callErr = s.api.FindEvent(ctx, fixtureID, timeMin)
		return callErr
	})
	return ev, err
}

func (s *Syncer) listEvents(ctx context.Context, timeMin time.Time) ([]*Event, error) {
	var events []*Event
	err := s.call(ctx, "list", func(ctx context.Context) error {
		var callErr error
		events, callErr = s.api.ListEvents(ctx, s.syncTag, timeMin)
		return callErr
	})
	return events, err
}

func (s *Syncer) insertEvent(ctx context.Context, ev *Event) (*Event, error) {
	var inserted *Event
	err := s.call(ctx, "insert", func(ctx context.Context) error {
		var callErr error
		inserted, callErr = s.api.InsertEvent(ctx, ev)
		return callErr
	})
	return inserted, err
}

func (s *Syncer) updateEvent(ctx context.Context, ev *Event) (*Event, error) {
	var updated *Event
	err := s.call(ctx, "update", func(ctx context.Context) error {
		var callErr error
		updated, callErr = s.api.UpdateEvent(ctx, ev)
		return callErr
	})
	return updated, err
}

func (s *Syncer) deleteEvent(ctx context.Context, id string) error {
	return s.call(ctx, "delete", func(ctx context.Context) error {
		return s.api.DeleteEvent(ctx, id)
	})
}

// call paces one destination operation and retries it for as long as the
// provider reports rate limiting, with jittered exponential backoff. Any
// other error is returned as-is so the fixture fails fast without
// poisoning the rest of the batch.
func (s *Syncer) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	timer := prometheus.NewTimer(metrics.APIRequestDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := s.retryBase * time.Duration(1<<(attempt-1))
			delay += rand.N(delay/4 + 1)
			log.Warn().
				Str("operation", op).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Rate limited, backing off")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("pacing: %w", err)
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, ErrRateLimited) {
			return err
		}
	}
	return fmt.Errorf("%s: retries exhausted: %w", op, lastErr)
}

func (s *Syncer) processContacts(ctx context.Context, f *models.Fixture) {
	if s.contacts == nil {
		return
	}
	// Contact upkeep is best effort and never fails the fixture.
	if err := s.contacts.ProcessOfficials(ctx, f); err != nil {
		log.Warn().Err(err).Str("fixture", f.ID).Msg("Contact processing failed")
	}
}

func (s *Syncer) cacheHash(ctx context.Context, id, hash string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, id, []byte(hash)); err != nil {
		log.Warn().Err(err).Str("fixture", id).Msg("Hash cache write failed")
	}
}

func (s *Syncer) cacheDrop(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		log.Warn().Err(err).Str("fixture", id).Msg("Hash cache delete failed")
	}
}

func (s *Syncer) recordRun(res *Result, elapsed time.Duration) {
	metrics.SyncDuration.Observe(elapsed.Seconds())
	metrics.RecordSyncResult(res.OK())
	metrics.SyncOutcomes.WithLabelValues("created").Add(float64(res.Created))
	metrics.SyncOutcomes.WithLabelValues("updated").Add(float64(res.Updated))
	metrics.SyncOutcomes.WithLabelValues("unchanged").Add(float64(res.Unchanged))
	metrics.SyncOutcomes.WithLabelValues("deleted").Add(float64(res.Deleted))
	metrics.SyncOutcomes.WithLabelValues("skipped").Add(float64(res.Skipped))
	metrics.SyncOutcomes.WithLabelValues("failed").Add(float64(res.Failed))
}
