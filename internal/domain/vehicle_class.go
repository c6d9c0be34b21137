// Package domain contains the parking chain model: vehicle classes,
// subscriptions, parking intervals, vehicles, areas, lots and the chain.
//
// This file defines the fixed vehicle class catalog and its tariffs.
package domain

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// Vehicle Class
// =============================================================================

// VehicleClass identifies the kind of vehicle. Capacity limits, occupancy and
// tariffs are all partitioned by class.
type VehicleClass string

const (
	VehicleClassMotorcycle VehicleClass = "motorcycle"
	VehicleClassCar        VehicleClass = "car"
	VehicleClassVan        VehicleClass = "van"
	VehicleClassBus        VehicleClass = "bus"
	VehicleClassTruck      VehicleClass = "truck"
)

// VehicleClasses returns every class in canonical order. This is also the
// order of the capacity columns in an area record.
func VehicleClasses() []VehicleClass {
	return []VehicleClass{
		VehicleClassMotorcycle,
		VehicleClassCar,
		VehicleClassVan,
		VehicleClassBus,
		VehicleClassTruck,
	}
}

// ParseVehicleClass converts a lowercase token into a VehicleClass.
func ParseVehicleClass(s string) (VehicleClass, error) {
	c := VehicleClass(s)
	if !c.IsValid() {
		return "", Errorf(EINVALIDVEHICLETYPE, "vehicle_class.parse", "Unexpected value: '%s'.", s)
	}
	return c, nil
}

// String returns the string representation of the class.
func (c VehicleClass) String() string {
	return string(c)
}

// IsValid returns true if the class is a recognized value.
func (c VehicleClass) IsValid() bool {
	switch c {
	case VehicleClassMotorcycle, VehicleClassCar, VehicleClassVan,
		VehicleClassBus, VehicleClassTruck:
		return true
	}
	return false
}

var titleCaser = cases.Title(language.English)

// DisplayName returns the class name for reports, e.g. "Motorcycle".
func (c VehicleClass) DisplayName() string {
	return titleCaser.String(string(c))
}

// =============================================================================
// Tariffs
// =============================================================================

// Tariff is the price list of a vehicle class.
type Tariff struct {
	HourlyRate      float64 // Charged per started hour
	LoyaltyDiscount float64 // Subtracted from the hourly rate on discounted intervals
}

// Tariffs maps each class to its fixed tariff.
var Tariffs = map[VehicleClass]Tariff{
	VehicleClassMotorcycle: {HourlyRate: 1.5, LoyaltyDiscount: 0.5},
	VehicleClassCar:        {HourlyRate: 2, LoyaltyDiscount: 1},
	VehicleClassVan:        {HourlyRate: 3, LoyaltyDiscount: 1},
	VehicleClassBus:        {HourlyRate: 5, LoyaltyDiscount: 2},
	VehicleClassTruck:      {HourlyRate: 6, LoyaltyDiscount: 2},
}

// Tariff returns the tariff for the class. Unknown classes get a zero tariff.
func (c VehicleClass) Tariff() Tariff {
	return Tariffs[c]
}

// =============================================================================
// Per-class counters
// =============================================================================

// ClassCounts holds one integer per vehicle class (capacity limits or
// occupancy). Missing classes read as zero.
type ClassCounts map[VehicleClass]int

// NewClassCounts returns counts with every class present and set to zero.
func NewClassCounts() ClassCounts {
	counts := make(ClassCounts, len(VehicleClasses()))
	for _, c := range VehicleClasses() {
		counts[c] = 0
	}
	return counts
}

// CapacityOf builds capacity limits from values in canonical class order.
// Missing trailing values are treated as zero.
func CapacityOf(values ...int) ClassCounts {
	counts := NewClassCounts()
	for i, c := range VehicleClasses() {
		if i < len(values) {
			counts[c] = values[i]
		}
	}
	return counts
}

// Values returns the counts in canonical class order.
func (cc ClassCounts) Values() []int {
	classes := VehicleClasses()
	values := make([]int, len(classes))
	for i, c := range classes {
		values[i] = cc[c]
	}
	return values
}

// Clone returns an independent copy.
func (cc ClassCounts) Clone() ClassCounts {
	out := make(ClassCounts, len(cc))
	for k, v := range cc {
		out[k] = v
	}
	return out
}
