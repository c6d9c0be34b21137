package records

import (
	"time"

	"github.com/DukeRupert/parkchain/internal/domain"
)

// Builder replays records into a chain, top-down.
type Builder struct {
	chain *domain.ParkingChain
	lot   *domain.ParkingLot
	area  *domain.Area

	// OnApply is called after each record is applied successfully.
	OnApply func(Record)
}

// NewBuilder creates a builder that fills chain.
func NewBuilder(chain *domain.ParkingChain) *Builder {
	return &Builder{chain: chain}
}

// Area returns the area that vehicle records are admitted into, or nil.
func (b *Builder) Area() *domain.Area {
	return b.area
}

// Chain returns the chain being built.
func (b *Builder) Chain() *domain.ParkingChain {
	return b.chain
}

// Apply adds one record to the chain. A vehicle record is an admission into
// the latest area, so repeated lines for a plate accumulate intervals.
func (b *Builder) Apply(r Record) error {
	const op = "records.apply"

	switch rec := r.(type) {
	case LotRecord:
		lot, err := b.chain.AddLot(rec.Name, rec.EntryGates)
		if err != nil {
			return err
		}
		b.lot, b.area = lot, nil

	case AreaRecord:
		if b.lot == nil {
			return domain.Errorf(domain.EINVALIDFIELD, op, "Area '%s' appears before any parking lot.", rec.Name)
		}
		area, err := b.lot.AddArea(rec.Name, rec.Capacity)
		if err != nil {
			return err
		}
		b.area = area

	case VehicleRecord:
		if b.area == nil {
			return domain.Errorf(domain.EINVALIDFIELD, op, "Vehicle '%s' appears before any area.", rec.Plate)
		}
		if err := b.area.Admit(rec.Admission()); err != nil {
			return err
		}

	default:
		return domain.Errorf(domain.EINVALIDFIELD, op, "The introduced field is not a valid one")
	}

	if b.OnApply != nil {
		b.OnApply(r)
	}
	return nil
}

// Flatten lists the chain as records in file order: each lot, then its
// areas, each area followed by one vehicle record per interval. Vehicles
// appear in first-admission order and intervals in admission order, so
// loading the output replays the same admissions.
func Flatten(chain *domain.ParkingChain) []Record {
	var out []Record
	for _, lot := range chain.Lots() {
		out = append(out, LotRecord{Name: lot.Name, EntryGates: lot.EntryGates})
		for _, area := range lot.Areas() {
			out = append(out, AreaRecord{Name: area.Name, Capacity: area.Capacity()})
			for _, v := range area.Vehicles() {
				var purchased *time.Time
				if v.Subscription != nil {
					t := v.Subscription.PurchasedAt
					purchased = &t
				}
				for _, p := range v.History() {
					out = append(out, VehicleRecord{
						Class:                   v.Class,
						Plate:                   v.Plate,
						SubscriptionPurchasedAt: purchased,
						Entry:                   p.Entry(),
						Exit:                    p.Exit(),
					})
				}
			}
		}
	}
	return out
}
