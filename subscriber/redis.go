package subscriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/web3tea/fixture-sentinel/metrics"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/processor"
)

const (
	defaultConnectTimeout    = 5 * time.Second
	defaultReconnectDelay    = time.Second
	defaultReconnectMaxDelay = 60 * time.Second
	keepAliveInterval        = 30 * time.Second
	stopTimeout              = 5 * time.Second
)

type RedisSubscriber struct {
	cfg      Config
	callback SyncCallback
	logger   Logger

	client *redis.Client
	pubsub *redis.PubSub

	running bool
	state   ConnectionState

	ctx      context.Context
	cancelFn context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	stateMu  sync.RWMutex

	// retryDelay is only touched by the read loop goroutine
	retryDelay time.Duration

	stats   stats
	statsMu sync.Mutex
}

type stats struct {
	received   uint64
	processed  uint64
	errors     uint64
	reconnects uint64
	enhanced   uint64
	legacy     uint64
	unknown    uint64
	startedAt  time.Time
}

func NewRedisSubscriber(cfg Config, callback SyncCallback, logger Logger) *RedisSubscriber {
	if logger == nil {
		logger = &noopLogger{}
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = defaultReconnectMaxDelay
	}

	return &RedisSubscriber{
		cfg:        cfg,
		callback:   callback,
		logger:     logger,
		state:      StateDisconnected,
		retryDelay: cfg.ReconnectDelay,
	}
}

// Start implements Subscriber. A connection failure here does not schedule
// retries: the caller decides whether to run degraded and restart later.
func (s *RedisSubscriber) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		return ErrDisabled
	}
	if s.IsRunning() {
		return ErrAlreadyRunning
	}
	if len(s.cfg.Channels) == 0 {
		return fmt.Errorf("no channels configured")
	}

	s.ctx, s.cancelFn = context.WithCancel(ctx)

	if err := s.connect(s.ctx); err != nil {
		s.setState(StateDegraded)
		return fmt.Errorf("failed to connect: %w", err)
	}

	s.statsMu.Lock()
	s.stats = stats{startedAt: time.Now()}
	s.statsMu.Unlock()
	s.retryDelay = s.cfg.ReconnectDelay

	s.wg.Add(1)
	go s.readLoop()

	s.setRunning(true)
	s.logger.Infof("subscribed to %s", strings.Join(s.cfg.Channels, ", "))
	return nil
}

// Stop implements Subscriber.
func (s *RedisSubscriber) Stop() error {
	if !s.IsRunning() {
		return fmt.Errorf("subscriber not running")
	}

	s.cancelFn()
	s.closeConn()

	// The read loop finishes the message in flight before exiting, so give
	// it a bounded grace period rather than waiting forever.
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		s.logger.Warnf("timed out waiting for read loop to exit")
	}

	s.setRunning(false)
	s.setState(StateDisconnected)
	s.logger.Infof("subscriber stopped")
	return nil
}

func (s *RedisSubscriber) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RedisSubscriber) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

// State returns the current connection lifecycle state.
func (s *RedisSubscriber) State() ConnectionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *RedisSubscriber) setState(state ConnectionState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
	metrics.SubscriberConnected.Set(boolToGauge(state == StateSubscribed))
}

// Status implements Subscriber.
func (s *RedisSubscriber) Status() Status {
	s.mu.Lock()
	connected := s.client != nil
	s.mu.Unlock()

	state := s.State()
	return Status{
		Enabled:    s.cfg.Enabled,
		Running:    s.IsRunning(),
		Connected:  connected,
		Subscribed: state == StateSubscribed,
		State:      state,
		Channels:   s.cfg.Channels,
	}
}

// Statistics implements Subscriber.
func (s *RedisSubscriber) Statistics() Statistics {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	var uptime time.Duration
	if !s.stats.startedAt.IsZero() {
		uptime = time.Since(s.stats.startedAt)
	}
	return Statistics{
		MessagesReceived:  s.stats.received,
		MessagesProcessed: s.stats.processed,
		Errors:            s.stats.errors,
		ReconnectCount:    s.stats.reconnects,
		Uptime:            uptime,
		Channels:          s.cfg.Channels,
		Schema: SchemaStats{
			Enhanced: s.stats.enhanced,
			Legacy:   s.stats.legacy,
			Unknown:  s.stats.unknown,
		},
	}
}

func (s *RedisSubscriber) connect(ctx context.Context) error {
	s.setState(StateConnecting)

	opt, err := redis.ParseURL(s.cfg.URL)
	if err != nil {
		s.setState(StateDisconnected)
		return fmt.Errorf("parse broker url: %w", err)
	}
	opt.DialTimeout = s.cfg.ConnectTimeout
	// Reads block until a message arrives; an idle channel is not an error.
	// Only connection establishment is bounded.
	opt.ReadTimeout = -1
	opt.Dialer = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := net.Dialer{Timeout: s.cfg.ConnectTimeout, KeepAlive: keepAliveInterval}
		return d.DialContext(ctx, network, addr)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		s.setState(StateDisconnected)
		return fmt.Errorf("ping broker: %w", err)
	}

	pubsub := client.Subscribe(ctx, s.cfg.Channels...)
	// The first read carries the subscription confirmation; consuming it
	// here means success is only reported once the server accepted the
	// channels, not merely once the socket opened.
	if _, err := pubsub.Receive(pingCtx); err != nil {
		_ = pubsub.Close()
		_ = client.Close()
		s.setState(StateDisconnected)
		return fmt.Errorf("subscribe: %w", err)
	}

	s.mu.Lock()
	s.client = client
	s.pubsub = pubsub
	s.mu.Unlock()

	s.setState(StateSubscribed)
	return nil
}

func (s *RedisSubscriber) reconnect() bool {
	s.closeConn()

	if err := s.connect(s.ctx); err != nil {
		s.logger.Errorf("reconnect failed: %v", err)
		return false
	}
	s.logger.Infof("reconnected, resubscribed to %s", strings.Join(s.cfg.Channels, ", "))
	return true
}

func (s *RedisSubscriber) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Best effort: the sockets are usually already broken at this point.
	if s.pubsub != nil {
		_ = s.pubsub.Close()
		s.pubsub = nil
	}
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
}

func (s *RedisSubscriber) pubsubConn() *redis.PubSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pubsub
}

func (s *RedisSubscriber) readLoop() {
	defer s.wg.Done()

	for {
		if s.ctx.Err() != nil {
			s.logger.Infof("subscriber read loop exiting: %v", s.ctx.Err())
			return
		}

		ps := s.pubsubConn()
		if ps == nil {
			// Previous reconnect attempt failed, keep backing off.
			s.recordReconnect()
			s.waitRetry()
			if s.ctx.Err() != nil {
				return
			}
			s.reconnect()
			continue
		}

		msg, err := ps.ReceiveMessage(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				s.logger.Infof("subscriber read loop exiting: %v", s.ctx.Err())
				return
			}
			if isConnError(err) {
				s.recordReconnect()
				s.setState(StateDisconnected)
				s.logger.Errorf("connection lost: %v", err)
				s.waitRetry()
				if s.ctx.Err() != nil {
					return
				}
				s.reconnect()
				continue
			}
			s.recordError()
			s.logger.Errorf("unexpected read error: %v", err)
			s.waitRetry()
			continue
		}

		// Shutdown must not abort a message that already arrived; the loop
		// re-checks the context once handling is done.
		s.handleMessage(context.WithoutCancel(s.ctx), msg)
	}
}

func (s *RedisSubscriber) handleMessage(ctx context.Context, msg *redis.Message) {
	// A delivered message proves the connection is healthy again.
	s.retryDelay = s.cfg.ReconnectDelay

	s.recordReceived()

	c, err := processor.Classify(msg.Channel, []byte(msg.Payload))
	if err != nil {
		s.recordError()
		s.logger.Errorf("dropping undecodable message on %s: %v", msg.Channel, err)
		return
	}

	if !c.FixtureUpdate() {
		s.logger.Infof("ignoring %q message on %s", c.Type, msg.Channel)
		s.recordProcessed()
		return
	}

	s.recordSchema(c.Class)
	env := c.Envelope

	if len(env.Matches) == 0 {
		s.logger.Infof("no changes in batch %s (schema %s), skipping sync", env.BatchID, env.SchemaVersion)
		s.recordProcessed()
		return
	}

	if s.callback == nil {
		s.logger.Warnf("no sync callback configured, dropping batch %s", env.BatchID)
		s.recordProcessed()
		return
	}

	if env.HighPriority {
		s.logger.Infof("batch %s carries high priority changes", env.BatchID)
	}

	if ok := s.callback(ctx, env); ok {
		s.logger.Infof("sync completed for batch %s (%d matches)", env.BatchID, len(env.Matches))
	} else {
		s.logger.Errorf("sync failed for batch %s", env.BatchID)
	}
	s.recordProcessed()
}

// waitRetry sleeps for the current backoff delay, then doubles it up to the
// configured ceiling. Cancellation cuts the sleep short.
func (s *RedisSubscriber) waitRetry() {
	s.logger.Infof("retrying in %s", s.retryDelay)

	t := time.NewTimer(s.retryDelay)
	defer t.Stop()
	select {
	case <-s.ctx.Done():
	case <-t.C:
	}

	s.retryDelay = nextRetryDelay(s.retryDelay, s.cfg.ReconnectMaxDelay)
}

func nextRetryDelay(current, ceiling time.Duration) time.Duration {
	next := current * 2
	if next > ceiling {
		return ceiling
	}
	return next
}

func (s *RedisSubscriber) recordReceived() {
	s.statsMu.Lock()
	s.stats.received++
	s.statsMu.Unlock()
	metrics.MessagesReceived.Inc()
}

func (s *RedisSubscriber) recordProcessed() {
	s.statsMu.Lock()
	s.stats.processed++
	s.statsMu.Unlock()
	metrics.MessagesProcessed.Inc()
}

func (s *RedisSubscriber) recordError() {
	s.statsMu.Lock()
	s.stats.errors++
	s.statsMu.Unlock()
	metrics.SubscriberErrors.Inc()
}

func (s *RedisSubscriber) recordReconnect() {
	s.statsMu.Lock()
	s.stats.reconnects++
	s.statsMu.Unlock()
	metrics.Reconnects.Inc()
}

func (s *RedisSubscriber) recordSchema(class models.SchemaClass) {
	s.statsMu.Lock()
	switch class {
	case models.SchemaEnhanced:
		s.stats.enhanced++
	case models.SchemaLegacy:
		s.stats.legacy++
	default:
		s.stats.unknown++
	}
	s.statsMu.Unlock()
	metrics.SchemaMessages.WithLabelValues(string(class)).Inc()
}

func isConnError(err error) bool {
	if errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func boolToGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ Subscriber = (*RedisSubscriber)(nil)
