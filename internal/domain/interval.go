package domain

import "time"

const (
	// TimestampLayout is the layout of every timestamp in records and prompts.
	TimestampLayout = "2006-01-02 15:04"

	// DateLayout is the layout of calendar days (interval grouping, gain reports).
	DateLayout = "2006-01-02"
)

// DayKey returns the calendar day of t in DateLayout.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParkingInterval is one stay of a vehicle: an entry and an exit timestamp.
type ParkingInterval struct {
	entry time.Time
	exit  time.Time

	// HasDiscount marks an interval billed at the loyalty rate.
	HasDiscount bool
}

// NewParkingInterval validates and creates an interval.
//
// In the default mode only the day-of-year of entry and exit are compared, so
// a same-day interval whose exit time precedes its entry time is accepted.
// With strict set, any exit before entry is rejected.
func NewParkingInterval(entry, exit time.Time, strict bool) (*ParkingInterval, error) {
	const op = "interval.new"

	if strict {
		if exit.Before(entry) {
			return nil, Errorf(EINVALIDINTERVAL, op, "The parking interval is not a valid one.")
		}
	} else if exit.YearDay()-entry.YearDay() < 0 {
		return nil, Errorf(EINVALIDINTERVAL, op, "The parking interval is not a valid one.")
	}

	return &ParkingInterval{entry: entry, exit: exit}, nil
}

// Entry returns the entry timestamp.
func (p *ParkingInterval) Entry() time.Time {
	return p.entry
}

// Exit returns the exit timestamp.
func (p *ParkingInterval) Exit() time.Time {
	return p.exit
}

// Duration returns exit minus entry. It is negative for same-day intervals
// that slipped past the day-of-year check.
func (p *ParkingInterval) Duration() time.Duration {
	return p.exit.Sub(p.entry)
}

// BillableHours returns the number of started hours: whole hours plus one if
// any minutes are left over.
func (p *ParkingInterval) BillableHours() int64 {
	d := p.Duration()
	hours := int64(d / time.Hour)
	if (d%time.Hour)/time.Minute > 0 {
		hours++
	}
	return hours
}
