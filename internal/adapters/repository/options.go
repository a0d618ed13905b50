package repository

import "time"

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how row ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *SQLStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}
