package postfx

import "log/slog"

// Option configures a Pipeline during creation.
//
// Example:
//
//	p, err := postfx.New(
//	    postfx.WithWorkers(4),
//	    postfx.WithConfig(cfg),
//	)
type Option func(*options)

type options struct {
	config  *Config
	workers int
	logger  *slog.Logger
}

// WithConfig replaces the default configuration. Start from DefaultConfig
// and change what you need; the Pipeline validates it.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = &c
	}
}

// WithWorkers sets the number of dispatcher workers, overriding
// Config.Workers. Zero keeps the configured value.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger for this Pipeline's frame summaries. The
// package logger (SetLogger) is used when not set.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
