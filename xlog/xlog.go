// Package xlog wraps zerolog with the small structured-logging surface used
// throughout this service, modeled directly on
// poaiw-blockchain-paw/explorer/indexer/pkg/logger: a Logger built with
// NewLogger(component), exposing Info/Warn/Error over flat key/value pairs.
package xlog

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a component-scoped zerolog.Logger.
type Logger struct {
	z zerolog.Logger
}

// NewLogger builds a Logger writing to stderr, tagged with component.
func NewLogger(component string) *Logger {
	z := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Level(zerolog.InfoLevel)
	return &Logger{z: z}
}

func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.z.Info().Fields(kvToMap(keyvals)).Msg(msg)
}

func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.z.Warn().Fields(kvToMap(keyvals)).Msg(msg)
}

func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.z.Error().Fields(kvToMap(keyvals)).Msg(msg)
}

// kvToMap converts a flat ...(key, value) variadic list to a map zerolog
// can attach as fields; a trailing unmatched key is recorded under "extra".
func kvToMap(keyvals []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		m[key] = keyvals[i+1]
	}
	if len(keyvals)%2 == 1 {
		m["extra"] = keyvals[len(keyvals)-1]
	}
	return m
}
