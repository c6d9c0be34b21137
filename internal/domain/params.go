package domain

import "time"

// Limits accepted from interactive input. The validate tags below repeat
// these values; keep them in sync.
const (
	MinEntryGates = 1
	MaxEntryGates = 50
	MinCapacity   = 0
	MaxCapacity   = 50
)

// Names and plates are stored as comma-separated fields, so they may not
// contain a comma.

// AddLotParams contains the parameters for creating a parking lot.
type AddLotParams struct {
	Name       string `validate:"required,excludesall=0x2C"`
	EntryGates int    `validate:"min=1,max=50"`
}

// AddAreaParams contains the parameters for adding an area to a lot.
type AddAreaParams struct {
	LotName  string      `validate:"required,excludesall=0x2C"`
	Name     string      `validate:"required,excludesall=0x2C"`
	Capacity ClassCounts `validate:"dive,min=0,max=50"`
}

// AdmitVehicleParams contains the parameters for admitting a vehicle.
type AdmitVehicleParams struct {
	LotName                 string       `validate:"required,excludesall=0x2C"`
	AreaName                string       `validate:"required,excludesall=0x2C"`
	Plate                   string       `validate:"required,excludesall=0x2C"`
	Class                   VehicleClass `validate:"required"`
	SubscriptionPurchasedAt *time.Time
	Entry                   time.Time `validate:"required"`
	Exit                    time.Time `validate:"required"`
}

// Admission returns the admission described by the parameters.
func (p AdmitVehicleParams) Admission() Admission {
	return Admission{
		Class:                   p.Class,
		Plate:                   p.Plate,
		SubscriptionPurchasedAt: p.SubscriptionPurchasedAt,
		Entry:                   p.Entry,
		Exit:                    p.Exit,
	}
}
