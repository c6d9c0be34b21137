package domain

import (
	"math"
	"time"
)

// ParkingLot is a parking facility made of named areas.
type ParkingLot struct {
	Name       string
	EntryGates int // informational, never checked against occupancy

	areas    []*Area
	settings settings
}

// NewParkingLot creates an empty lot.
func NewParkingLot(name string, entryGates int, opts ...Option) *ParkingLot {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &ParkingLot{Name: name, EntryGates: entryGates, settings: s}
}

// Areas returns the areas in insertion order.
func (l *ParkingLot) Areas() []*Area {
	out := make([]*Area, len(l.areas))
	copy(out, l.areas)
	return out
}

// AddArea appends a new area with the given capacity limits.
func (l *ParkingLot) AddArea(name string, capacity ClassCounts) (*Area, error) {
	const op = "lot.add_area"

	if l.settings.policy.UniqueNames {
		if _, err := l.Area(name); err == nil {
			return nil, Conflict(op, "Area '"+name+"' already exists in parking lot '"+l.Name+"'!")
		}
	}

	area := newArea(name, capacity, l.settings)
	l.areas = append(l.areas, area)
	return area, nil
}

// Area returns the first area with the given name.
func (l *ParkingLot) Area(name string) (*Area, error) {
	for _, a := range l.areas {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, NotFound("lot.area", "Area", name)
}

// ClassOccupancy is the occupancy of one vehicle class across a lot.
type ClassOccupancy struct {
	Class    VehicleClass
	Occupied int
	Capacity int
	Percent  float64 // NaN when Capacity is zero
}

// HasCapacity reports whether the class has any places, i.e. whether Percent is defined.
func (c ClassOccupancy) HasCapacity() bool {
	return c.Capacity > 0
}

// OccupancyRate recomputes every area's occupancy and returns, per class in
// canonical order, the occupied places against the total capacity.
func (l *ParkingLot) OccupancyRate() []ClassOccupancy {
	occupied := NewClassCounts()
	total := NewClassCounts()
	for _, a := range l.areas {
		current := a.RecomputeOccupancy()
		for _, c := range VehicleClasses() {
			occupied[c] += current[c]
			total[c] += a.capacity[c]
		}
	}

	rates := make([]ClassOccupancy, 0, len(VehicleClasses()))
	for _, c := range VehicleClasses() {
		rate := ClassOccupancy{
			Class:    c,
			Occupied: occupied[c],
			Capacity: total[c],
			Percent:  math.NaN(),
		}
		if rate.Capacity > 0 {
			rate.Percent = 100 * float64(rate.Occupied) / float64(rate.Capacity)
		}
		rates = append(rates, rate)
	}
	return rates
}

// GainForDay sums what every vehicle of every area owes for day.
func (l *ParkingLot) GainForDay(day time.Time) float64 {
	var total float64
	for _, a := range l.areas {
		total += a.GainForDay(day)
	}
	return total
}
