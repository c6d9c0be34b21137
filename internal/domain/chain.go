package domain

// ParkingChain is the top-level collection of parking lots.
type ParkingChain struct {
	lots     []*ParkingLot
	settings settings
}

// NewParkingChain creates an empty chain. Lots and areas created through the
// chain inherit its clock and policy.
func NewParkingChain(opts ...Option) *ParkingChain {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &ParkingChain{settings: s}
}

// Policy returns the behavior flags of the chain.
func (c *ParkingChain) Policy() Policy {
	return c.settings.policy
}

// Lots returns the lots in insertion order.
func (c *ParkingChain) Lots() []*ParkingLot {
	out := make([]*ParkingLot, len(c.lots))
	copy(out, c.lots)
	return out
}

// AddLot appends a new lot.
func (c *ParkingChain) AddLot(name string, entryGates int) (*ParkingLot, error) {
	const op = "chain.add_lot"

	if c.settings.policy.UniqueNames {
		if _, err := c.Lot(name); err == nil {
			return nil, Conflict(op, "Parking lot '"+name+"' already exists!")
		}
	}

	lot := &ParkingLot{Name: name, EntryGates: entryGates, settings: c.settings}
	c.lots = append(c.lots, lot)
	return lot, nil
}

// Lot returns the first lot with the given name.
func (c *ParkingChain) Lot(name string) (*ParkingLot, error) {
	for _, l := range c.lots {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, NotFound("chain.lot", "Parking lot", name)
}

// Area resolves an area by lot name and area name.
func (c *ParkingChain) Area(lotName, areaName string) (*Area, error) {
	lot, err := c.Lot(lotName)
	if err != nil {
		return nil, err
	}
	return lot.Area(areaName)
}

// AddArea appends a new area to the named lot.
func (c *ParkingChain) AddArea(lotName, areaName string, capacity ClassCounts) (*Area, error) {
	lot, err := c.Lot(lotName)
	if err != nil {
		return nil, err
	}
	return lot.AddArea(areaName, capacity)
}

// Admit routes an admission to the named lot and area.
func (c *ParkingChain) Admit(lotName, areaName string, req Admission) error {
	area, err := c.Area(lotName, areaName)
	if err != nil {
		return err
	}
	return area.Admit(req)
}
