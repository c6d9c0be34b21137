package domain

import "time"

// Policy switches the documented legacy behaviors of the admission engine.
// The zero value keeps every legacy behavior.
type Policy struct {
	// StrictIntervals rejects any interval whose exit precedes its entry.
	// When false only the day-of-year is compared.
	StrictIntervals bool

	// RestoreLastExitOnReject puts back the previous last exit of a vehicle
	// whose admission failed for capacity. When false the failed admission
	// still overwrites it.
	RestoreLastExitOnReject bool

	// UniqueNames rejects a lot or area whose name already exists in its
	// parent. When false duplicates are appended and only the first one is
	// reachable by name.
	UniqueNames bool
}

// Clock returns the current time.
type Clock func() time.Time

type settings struct {
	clock  Clock
	policy Policy
}

func defaultSettings() settings {
	return settings{clock: time.Now}
}

// Option configures a ParkingChain.
type Option func(*settings)

// WithClock replaces the wall clock used for occupancy.
func WithClock(clock Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPolicy sets the behavior flags.
func WithPolicy(p Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}
