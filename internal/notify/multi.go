package notify

import (
	"context"
	"errors"
)

// Multi fans out notices to several sinks. A failing sink does not stop
// delivery to the remaining sinks.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a Multi that fans out to the given sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Publish delivers the notice to every wrapped sink, collecting errors.
func (m *Multi) Publish(ctx context.Context, n Notice) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
