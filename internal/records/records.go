// Package records reads and writes the line-oriented parking chain file.
//
// Each line holds one entity:
//
//	parkingLot,<name>,<entryGates>
//	area,<name>,<motorcycle>,<car>,<van>,<bus>,<truck>
//	vehicle,<class>,<plate>,<subscriptionPurchasedAt|null>,<entry>,<exit>
//
// Order matters: an area belongs to the latest parkingLot line and a vehicle
// line is one admission into the latest area.
package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/DukeRupert/parkchain/internal/domain"
)

// Record kinds as they appear in the first field of a line.
const (
	KindLot     = "parkingLot"
	KindArea    = "area"
	KindVehicle = "vehicle"
)

// NullSubscription marks a vehicle line without a subscription.
const NullSubscription = "null"

const (
	lotFields     = 3
	areaFields    = 7
	vehicleFields = 6
)

// Record is one decoded line.
type Record interface {
	Kind() string
}

// LotRecord describes a parking lot.
type LotRecord struct {
	Name       string
	EntryGates int
}

// AreaRecord describes an area of the latest lot.
type AreaRecord struct {
	Name     string
	Capacity domain.ClassCounts
}

// VehicleRecord is one stay of a vehicle in the latest area.
type VehicleRecord struct {
	Class                   domain.VehicleClass
	Plate                   string
	SubscriptionPurchasedAt *time.Time
	Entry                   time.Time
	Exit                    time.Time
}

func (LotRecord) Kind() string     { return KindLot }
func (AreaRecord) Kind() string    { return KindArea }
func (VehicleRecord) Kind() string { return KindVehicle }

// Admission converts the record into a domain admission.
func (r VehicleRecord) Admission() domain.Admission {
	return domain.Admission{
		Class:                   r.Class,
		Plate:                   r.Plate,
		SubscriptionPurchasedAt: r.SubscriptionPurchasedAt,
		Entry:                   r.Entry,
		Exit:                    r.Exit,
	}
}

// Decoder turns lines into records. Timestamps are read in Location.
type Decoder struct {
	Location *time.Location
}

// Decode parses one line.
func (d Decoder) Decode(line string) (Record, error) {
	const op = "records.decode"

	fields := strings.Split(line, ",")
	switch fields[0] {
	case KindLot:
		if err := checkLength(op, fields, lotFields); err != nil {
			return nil, err
		}
		gates, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, domain.Wrap(err, domain.EINVALIDFIELD, op, "Invalid number of entries '"+fields[2]+"'.")
		}
		return LotRecord{Name: fields[1], EntryGates: gates}, nil

	case KindArea:
		if err := checkLength(op, fields, areaFields); err != nil {
			return nil, err
		}
		values := make([]int, 0, len(fields)-2)
		for _, f := range fields[2:] {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, domain.Wrap(err, domain.EINVALIDFIELD, op, "Invalid capacity '"+f+"'.")
			}
			values = append(values, v)
		}
		return AreaRecord{Name: fields[1], Capacity: domain.CapacityOf(values...)}, nil

	case KindVehicle:
		if err := checkLength(op, fields, vehicleFields); err != nil {
			return nil, err
		}
		return d.decodeVehicle(fields)
	}

	return nil, domain.Errorf(domain.EINVALIDFIELD, op, "The introduced field is not a valid one")
}

func (d Decoder) decodeVehicle(fields []string) (Record, error) {
	const op = "records.decode_vehicle"

	class, err := domain.ParseVehicleClass(fields[1])
	if err != nil {
		return nil, domain.Wrap(err, domain.EINVALIDFIELD, op, domain.ErrorMessage(err))
	}

	rec := VehicleRecord{Class: class, Plate: fields[2]}

	if fields[3] != NullSubscription {
		purchased, err := d.parseTime(fields[3])
		if err != nil {
			return nil, domain.Wrap(err, domain.EINVALIDFIELD, op, "Invalid subscription time '"+fields[3]+"'.")
		}
		rec.SubscriptionPurchasedAt = &purchased
	}

	if rec.Entry, err = d.parseTime(fields[4]); err != nil {
		return nil, domain.Wrap(err, domain.EINVALIDFIELD, op, "Invalid entry time '"+fields[4]+"'.")
	}
	if rec.Exit, err = d.parseTime(fields[5]); err != nil {
		return nil, domain.Wrap(err, domain.EINVALIDFIELD, op, "Invalid exit time '"+fields[5]+"'.")
	}

	return rec, nil
}

func (d Decoder) parseTime(s string) (time.Time, error) {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(domain.TimestampLayout, s, loc)
}

func checkLength(op string, fields []string, want int) error {
	if len(fields) != want {
		return domain.Errorf(domain.EINVALIDLINELENGTH, op,
			"Invalid number of fields (%d instead of %d) for type %s.", len(fields), want, fields[0])
	}
	return nil
}

// Encode renders a record as one line without the trailing newline.
func Encode(r Record) string {
	switch rec := r.(type) {
	case LotRecord:
		return KindLot + "," + rec.Name + "," + strconv.Itoa(rec.EntryGates)
	case AreaRecord:
		parts := []string{KindArea, rec.Name}
		for _, v := range rec.Capacity.Values() {
			parts = append(parts, strconv.Itoa(v))
		}
		return strings.Join(parts, ",")
	case VehicleRecord:
		sub := NullSubscription
		if rec.SubscriptionPurchasedAt != nil {
			sub = rec.SubscriptionPurchasedAt.Format(domain.TimestampLayout)
		}
		return strings.Join([]string{
			KindVehicle,
			rec.Class.String(),
			rec.Plate,
			sub,
			rec.Entry.Format(domain.TimestampLayout),
			rec.Exit.Format(domain.TimestampLayout),
		}, ",")
	}
	return ""
}
