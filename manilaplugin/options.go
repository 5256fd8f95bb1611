package manilaplugin

import "log/slog"

type endpointOptions struct {
	log *slog.Logger
}

// Option customizes an endpoint.
type Option func(*endpointOptions)

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *endpointOptions) {
		if l != nil {
			o.log = l
		}
	}
}

func applyOptions(opts []Option) endpointOptions {
	o := endpointOptions{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
