package service

import "github.com/web3tea/fixture-sentinel/sink"

// Option configures a Service.
type Option func(*Service)

// WithSinks attaches side-channel sinks that receive every processed
// envelope.
func WithSinks(sinks ...sink.Sink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithStatusReporter attaches a listener for lifecycle transitions.
func WithStatusReporter(r StatusReporter) Option {
	return func(s *Service) {
		s.statusReporter = r
	}
}
