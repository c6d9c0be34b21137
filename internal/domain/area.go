package domain

import "time"

// Admission is one vehicle stay to record against an area.
type Admission struct {
	Class                   VehicleClass
	Plate                   string
	SubscriptionPurchasedAt *time.Time // nil when the vehicle has no subscription
	Entry                   time.Time
	Exit                    time.Time
}

// Area is a capacity-limited zone of a parking lot.
type Area struct {
	Name string

	capacity  ClassCounts
	occupancy ClassCounts

	vehicles map[string]*Vehicle
	plates   []string // first-seen order

	settings settings
}

// NewArea creates an empty area with the given per-class capacity limits.
func NewArea(name string, capacity ClassCounts, opts ...Option) *Area {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return newArea(name, capacity, s)
}

func newArea(name string, capacity ClassCounts, s settings) *Area {
	limits := NewClassCounts()
	for c, v := range capacity {
		limits[c] = v
	}
	return &Area{
		Name:      name,
		capacity:  limits,
		occupancy: NewClassCounts(),
		vehicles:  make(map[string]*Vehicle),
		settings:  s,
	}
}

// Capacity returns a copy of the capacity limits.
func (a *Area) Capacity() ClassCounts {
	return a.capacity.Clone()
}

// Occupancy returns a copy of the occupancy computed by the last recompute.
func (a *Area) Occupancy() ClassCounts {
	return a.occupancy.Clone()
}

// Vehicle returns the vehicle registered under plate, or nil.
func (a *Area) Vehicle(plate string) *Vehicle {
	return a.vehicles[plate]
}

// Vehicles returns every vehicle in the order its plate was first admitted.
func (a *Area) Vehicles() []*Vehicle {
	out := make([]*Vehicle, 0, len(a.plates))
	for _, plate := range a.plates {
		out = append(out, a.vehicles[plate])
	}
	return out
}

// Admit records a stay.
//
// An unseen plate becomes a new vehicle of the requested class with the
// requested subscription; a known plate reuses its vehicle and ignores both.
// The vehicle's last exit is updated before the capacity check, and
// occupancy is recomputed from the clock before and after recording.
func (a *Area) Admit(req Admission) error {
	const op = "area.admit"

	interval, err := NewParkingInterval(req.Entry, req.Exit, a.settings.policy.StrictIntervals)
	if err != nil {
		return err
	}

	vehicle, known := a.vehicles[req.Plate]
	if !known {
		if !req.Class.IsValid() {
			return Errorf(EINVALIDVEHICLETYPE, op, "Unexpected value: '%s'.", req.Class)
		}
		var sub *Subscription
		if req.SubscriptionPurchasedAt != nil {
			sub = NewSubscription(*req.SubscriptionPurchasedAt)
		}
		vehicle = NewVehicle(req.Plate, req.Class, sub)
	}

	previousExit := vehicle.LastExit
	vehicle.LastExit = req.Exit

	a.RecomputeOccupancy()
	if a.occupancy[vehicle.Class] >= a.capacity[vehicle.Class] {
		if a.settings.policy.RestoreLastExitOnReject {
			vehicle.LastExit = previousExit
		}
		return CapacityReached(op, vehicle.Class, a.capacity[vehicle.Class])
	}

	if !known {
		a.vehicles[req.Plate] = vehicle
		a.plates = append(a.plates, req.Plate)
	}
	vehicle.addInterval(interval)

	a.RecomputeOccupancy()
	return nil
}

// RecomputeOccupancy refreshes the live occupancy from the area clock.
func (a *Area) RecomputeOccupancy() ClassCounts {
	a.occupancy = a.OccupancyAt(a.settings.clock())
	return a.Occupancy()
}

// OccupancyAt counts, per class, the vehicles whose last exit is after now.
func (a *Area) OccupancyAt(now time.Time) ClassCounts {
	counts := NewClassCounts()
	for _, v := range a.vehicles {
		if v.IsParkedAt(now) {
			counts[v.Class]++
		}
	}
	return counts
}

// GainForDay sums what every vehicle of the area owes for day.
func (a *Area) GainForDay(day time.Time) float64 {
	var total float64
	for _, v := range a.Vehicles() {
		total += v.CostForDay(day)
	}
	return total
}
