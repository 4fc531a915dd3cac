package whatsapp

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// zeroLogger routes whatsmeow's logging into the global zerolog logger.
type zeroLogger struct {
	l zerolog.Logger
}

func newLogger(module string) waLog.Logger {
	return zeroLogger{l: log.With().Str("module", module).Logger()}
}

func (z zeroLogger) Warnf(msg string, args ...interface{})  { z.l.Warn().Msgf(msg, args...) }
func (z zeroLogger) Errorf(msg string, args ...interface{}) { z.l.Error().Msgf(msg, args...) }
func (z zeroLogger) Infof(msg string, args ...interface{})  { z.l.Info().Msgf(msg, args...) }
func (z zeroLogger) Debugf(msg string, args ...interface{}) { z.l.Debug().Msgf(msg, args...) }

func (z zeroLogger) Sub(module string) waLog.Logger {
	return zeroLogger{l: z.l.With().Str("module", module).Logger()}
}
