package log

import (
	"github.com/rs/zerolog"
	"github.com/web3tea/fixture-sentinel/subscriber"
)

type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerologAdapter(logger zerolog.Logger) subscriber.Logger {
	return &ZerologAdapter{
		logger: logger,
	}
}

// NewSubscriberLogger adapts the package default logger for the subscriber.
func NewSubscriberLogger() subscriber.Logger {
	return &ZerologAdapter{
		logger: defaultLogger.logger,
	}
}

func (z *ZerologAdapter) Debugf(format string, args ...any) {
	z.logger.Debug().Msgf(format, args...)
}

func (z *ZerologAdapter) Infof(format string, args ...any) {
	z.logger.Info().Msgf(format, args...)
}

func (z *ZerologAdapter) Warnf(format string, args ...any) {
	z.logger.Warn().Msgf(format, args...)
}

func (z *ZerologAdapter) Errorf(format string, args ...any) {
	z.logger.Error().Msgf(format, args...)
}
