package domain

import "time"

// LotOccupancy is the occupancy rate of one lot.
type LotOccupancy struct {
	Lot     string
	Classes []ClassOccupancy
}

// LotGain is the amount billed by one lot for a day.
type LotGain struct {
	Lot  string
	Day  time.Time
	Gain float64
}

// Summary is a point-in-time view of the whole chain.
type Summary struct {
	Day       time.Time
	Occupancy []LotOccupancy
	Gains     []LotGain
}

// TotalGain sums the gain of every lot.
func (s *Summary) TotalGain() float64 {
	var total float64
	for _, g := range s.Gains {
		total += g.Gain
	}
	return total
}
