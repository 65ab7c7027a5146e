package manager

import (
	"time"

	"github.com/rs/zerolog"
)

// Observer receives operation outcomes, typically to record metrics
type Observer interface {
	ObserveOperation(entity, op, status string, elapsed time.Duration)
	ObserveSkip(entity, kind string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, string, time.Duration) {}
func (nopObserver) ObserveSkip(string, string)                             {}

// Option is a function that modifies Manager configuration
type Option func(*Manager)

// WithHooks sets the entity hooks
func WithHooks(h Hooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// WithLogger sets the manager logger
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithObserver sets the metrics observer
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// WithTimeFunc sets a custom time function for testing
func WithTimeFunc(fn func() time.Time) Option {
	return func(m *Manager) {
		m.timeFunc = fn
	}
}

// WithIDFunc sets a custom id generator for testing
func WithIDFunc(fn func() string) Option {
	return func(m *Manager) {
		m.idFunc = fn
	}
}
