package fsm

import "go.uber.org/zap"

// Option applies configuration to a Machine via the functional options
// pattern.
type Option func(*Machine)

// WithLogger attaches a structured logger for diagnostics: registrations,
// rejected mutations, and fired transitions. Logging never affects control
// flow. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}
