package domain

import (
	"sort"
	"time"
)

// LoyaltyEvery is the entrance count period that earns a discounted interval.
const LoyaltyEvery = 10

// Vehicle is a plate seen in an area together with its parking history.
// The same plate in another area is a different Vehicle.
type Vehicle struct {
	Plate        string
	Class        VehicleClass
	Subscription *Subscription // nil when the vehicle has no subscription

	// LastExit is the most recent exit recorded for the vehicle. A vehicle
	// counts as parked while LastExit is in the future.
	LastExit time.Time

	// EntranceCount is the number of successful admissions.
	EntranceCount int

	intervals map[string][]*ParkingInterval
	history   []*ParkingInterval // admission order
}

// NewVehicle creates a vehicle with no history.
func NewVehicle(plate string, class VehicleClass, sub *Subscription) *Vehicle {
	return &Vehicle{
		Plate:        plate,
		Class:        class,
		Subscription: sub,
		intervals:    make(map[string][]*ParkingInterval),
	}
}

// IsParkedAt reports whether the vehicle is considered parked at now.
func (v *Vehicle) IsParkedAt(now time.Time) bool {
	return v.LastExit.After(now)
}

// addInterval appends the interval to the list of its entry day, counts the
// entrance and applies the loyalty discount on every tenth entrance.
func (v *Vehicle) addInterval(p *ParkingInterval) {
	day := DayKey(p.Entry())
	v.intervals[day] = append(v.intervals[day], p)
	v.history = append(v.history, p)

	v.EntranceCount++
	if v.EntranceCount%LoyaltyEvery == 0 {
		p.HasDiscount = true
	}
}

// Days returns the calendar days with at least one interval, ascending.
func (v *Vehicle) Days() []string {
	days := make([]string, 0, len(v.intervals))
	for day := range v.intervals {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// Intervals returns the intervals that started on day, in admission order.
func (v *Vehicle) Intervals(day time.Time) []*ParkingInterval {
	return v.intervals[DayKey(day)]
}

// History returns every interval in admission order. Replaying it through
// Area.Admit rebuilds the same last exit and entrance count.
func (v *Vehicle) History() []*ParkingInterval {
	return v.history
}

// CostForDay returns what the vehicle owes for day: the subscription price
// if it was bought that day, plus every interval of the day that is not
// covered by a subscription valid at the interval's entry.
func (v *Vehicle) CostForDay(day time.Time) float64 {
	var amount float64

	if v.Subscription.PurchasedOn(day) {
		amount += v.Subscription.Price
	}

	tariff := v.Class.Tariff()
	for _, p := range v.intervals[DayKey(day)] {
		if v.Subscription.IsValid(p.Entry()) {
			continue
		}
		rate := tariff.HourlyRate
		if p.HasDiscount {
			rate -= tariff.LoyaltyDiscount
		}
		amount += rate * float64(p.BillableHours())
	}

	return amount
}
