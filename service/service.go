package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/web3tea/fixture-sentinel/calendar"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/pkg/log"
	"github.com/web3tea/fixture-sentinel/processor"
	"github.com/web3tea/fixture-sentinel/sink"
	"github.com/web3tea/fixture-sentinel/subscriber"
)

// Status is the coarse lifecycle state of the service.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	// StatusDegraded means the feed subscription is down but manual syncs
	// still work. Restart recovers it.
	StatusDegraded Status = "degraded"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// StatusReporter receives every status transition.
type StatusReporter interface {
	ReportStatus(status Status, message string)
}

// Service ties the pipeline together: envelopes arrive from the
// subscriber, pass the processor chain, fan out to the sinks, and drive
// the calendar syncer.
type Service struct {
	Subscriber subscriber.Subscriber
	Processor  processor.Processor
	Syncer     *calendar.Syncer

	sinks []sink.Sink

	statusReporter StatusReporter

	status   Status
	statusMu sync.RWMutex

	mu sync.Mutex
}

func New(cfg subscriber.Config, proc processor.Processor, syncer *calendar.Syncer, options ...Option) *Service {
	s := &Service{
		Processor: proc,
		Syncer:    syncer,
		status:    StatusIdle,
	}

	for _, opt := range options {
		opt(s)
	}

	// The subscriber delivers straight into the pipeline; its callback
	// verdict feeds the publisher-visible processed/error counters.
	s.Subscriber = subscriber.NewRedisSubscriber(cfg, s.handleEnvelope, log.NewSubscriberLogger())

	return s
}

// Start brings the feed subscription up. A broker failure leaves the
// service degraded instead of failing it: the calendar stops following the
// feed but manual syncs and a later Restart still work.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start(ctx)
}

func (s *Service) start(ctx context.Context) error {
	s.setStatus(StatusStarting, "")

	if err := s.Subscriber.Start(ctx); err != nil {
		if errors.Is(err, subscriber.ErrDisabled) {
			log.Info().Msg("Subscriber disabled, running on manual triggers only")
			s.setStatus(StatusRunning, "subscriber disabled")
			return nil
		}
		log.Error().Err(err).Msg("Subscriber failed to start, running degraded")
		s.setStatus(StatusDegraded, err.Error())
		return nil
	}

	s.setStatus(StatusRunning, "")
	log.Info().Msg("Service started")
	return nil
}

// Stop tears the subscription down and closes the sinks.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setStatus(StatusStopping, "")

	var stopErr error
	if s.Subscriber.IsRunning() {
		if err := s.Subscriber.Stop(); err != nil {
			log.Error().Err(err).Msg("Subscriber stop failed")
			stopErr = err
		}
	}

	for _, sk := range s.sinks {
		if err := sk.Close(); err != nil {
			log.Warn().Err(err).Str("sink", sk.Type()).Msg("Sink close failed")
		}
	}

	if stopErr != nil {
		s.setStatus(StatusError, stopErr.Error())
		return stopErr
	}
	s.setStatus(StatusIdle, "")
	log.Info().Msg("Service stopped")
	return nil
}

// Restart bounces the feed subscription without touching the sinks. It is
// the recovery path out of StatusDegraded.
func (s *Service) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info().Msg("Restarting subscriber")
	if s.Subscriber.IsRunning() {
		if err := s.Subscriber.Stop(); err != nil {
			log.Warn().Err(err).Msg("Subscriber stop failed during restart")
		}
	}
	return s.start(ctx)
}

// Status returns the current lifecycle state.
func (s *Service) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// SyncFixtures pushes a fixture list through the full pipeline as if it
// had arrived on the feed. It is the manual trigger behind the one-shot
// command and ad-hoc resyncs.
func (s *Service) SyncFixtures(ctx context.Context, fixtures []models.Fixture) (*calendar.Result, error) {
	env := &models.Envelope{
		BatchID:    uuid.NewString(),
		Class:      models.SchemaLegacy,
		Channel:    "manual",
		ReceivedAt: time.Now().UTC(),
		Matches:    fixtures,
	}
	return s.process(ctx, env)
}

func (s *Service) handleEnvelope(ctx context.Context, env *models.Envelope) bool {
	res, err := s.process(ctx, env)
	if err != nil {
		log.Error().Err(err).Str("batch", env.BatchID).Msg("Envelope processing failed")
		return false
	}
	return res.OK()
}

func (s *Service) process(ctx context.Context, env *models.Envelope) (*calendar.Result, error) {
	processed, err := s.Processor.Process(env)
	if err != nil {
		return nil, fmt.Errorf("processor chain: %w", err)
	}

	s.writeSinks(ctx, processed)

	return s.Syncer.Sync(ctx, processed.Matches), nil
}

// writeSinks fans the envelope out to every sink. Sink failures are logged
// and never block the sync.
func (s *Service) writeSinks(ctx context.Context, env *models.Envelope) {
	for _, sk := range s.sinks {
		if err := sk.Write(ctx, []*models.Envelope{env}); err != nil {
			log.Error().Err(err).Str("sink", sk.Type()).Str("batch", env.BatchID).Msg("Sink write failed")
		}
	}
}

func (s *Service) setStatus(status Status, message string) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.status = status

	if s.statusReporter != nil {
		s.statusReporter.ReportStatus(status, message)
	}
}
