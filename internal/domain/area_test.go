package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(s string) Clock {
	now := at(s)
	return func() time.Time { return now }
}

func admission(class VehicleClass, plate, entry, exit string) Admission {
	return Admission{Class: class, Plate: plate, Entry: at(entry), Exit: at(exit)}
}

func assertWithinCapacity(t *testing.T, a *Area) {
	t.Helper()
	occ := a.Occupancy()
	caps := a.Capacity()
	for _, c := range VehicleClasses() {
		assert.LessOrEqual(t, occ[c], caps[c], "class %s", c)
	}
}

func TestArea_AdmitNewVehicle(t *testing.T) {
	a := NewArea("A1", CapacityOf(2, 2, 2, 2, 2), WithClock(fixedClock("2024-01-01 12:00")))

	purchased := at("2024-01-01 08:00")
	err := a.Admit(Admission{
		Class:                   VehicleClassCar,
		Plate:                   "TM01ABC",
		SubscriptionPurchasedAt: &purchased,
		Entry:                   at("2024-01-01 09:00"),
		Exit:                    at("2024-01-01 14:00"),
	})
	require.NoError(t, err)

	v := a.Vehicle("TM01ABC")
	require.NotNil(t, v)
	assert.Equal(t, VehicleClassCar, v.Class)
	require.NotNil(t, v.Subscription)
	assert.Equal(t, purchased, v.Subscription.PurchasedAt)
	assert.Equal(t, at("2024-01-01 14:00"), v.LastExit)
	assert.Equal(t, 1, v.EntranceCount)
	assert.Len(t, v.Intervals(day("2024-01-01")), 1)
	assert.Equal(t, 1, a.Occupancy()[VehicleClassCar], "exit is after now")
	assertWithinCapacity(t, a)
}

func TestArea_AdmitKnownPlateIgnoresClassAndSubscription(t *testing.T) {
	a := NewArea("A1", CapacityOf(5, 5, 5, 5, 5), WithClock(fixedClock("2024-06-01 00:00")))

	require.NoError(t, a.Admit(admission(VehicleClassCar, "TM01ABC", "2024-01-01 09:00", "2024-01-01 10:00")))

	purchased := at("2024-01-02 08:00")
	req := admission(VehicleClassTruck, "TM01ABC", "2024-01-02 09:00", "2024-01-02 10:00")
	req.SubscriptionPurchasedAt = &purchased
	require.NoError(t, a.Admit(req))

	v := a.Vehicle("TM01ABC")
	assert.Equal(t, VehicleClassCar, v.Class)
	assert.Nil(t, v.Subscription)
	assert.Equal(t, 2, v.EntranceCount)
	assert.Len(t, a.Vehicles(), 1)
}

func TestArea_MotorcycleCapacityReached(t *testing.T) {
	a := NewArea("A1", CapacityOf(10, 0, 0, 0, 0), WithClock(fixedClock("2024-01-01 12:00")))

	for i := 0; i < 10; i++ {
		err := a.Admit(admission(VehicleClassMotorcycle, fmt.Sprintf("MC%02d", i), "2024-01-01 11:00", "2024-01-01 18:00"))
		require.NoError(t, err)
		assertWithinCapacity(t, a)
	}
	assert.Equal(t, 10, a.Occupancy()[VehicleClassMotorcycle])

	err := a.Admit(admission(VehicleClassMotorcycle, "MC10", "2024-01-01 11:30", "2024-01-01 18:00"))
	require.Error(t, err)
	assert.Equal(t, ECAPACITY, ErrorCode(err))
	assert.Nil(t, a.Vehicle("MC10"), "rejected new plate is not registered")
	assert.Len(t, a.Vehicles(), 10)
	assertWithinCapacity(t, a)
}

func TestArea_RejectedAdmissionLeavesHistoryUnchanged(t *testing.T) {
	a := NewArea("A1", CapacityOf(0, 1, 0, 0, 0), WithClock(fixedClock("2024-01-01 12:00")))

	require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR2", "2024-01-01 08:00", "2024-01-01 09:00")))
	require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR1", "2024-01-01 11:00", "2024-01-01 13:00")))

	before := a.Vehicle("CAR2")
	err := a.Admit(admission(VehicleClassCar, "CAR2", "2024-01-01 11:30", "2024-01-01 15:00"))
	require.Error(t, err)
	assert.Equal(t, ECAPACITY, ErrorCode(err))

	assert.Equal(t, 1, before.EntranceCount)
	assert.Len(t, before.History(), 1)
}

func TestArea_LastExitOnRejectedAdmission(t *testing.T) {
	setup := func(p Policy) *Area {
		a := NewArea("A1", CapacityOf(0, 1, 0, 0, 0),
			WithClock(fixedClock("2024-01-01 12:00")), WithPolicy(p))
		require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR2", "2024-01-01 08:00", "2024-01-01 09:00")))
		require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR1", "2024-01-01 11:00", "2024-01-01 13:00")))
		return a
	}

	t.Run("legacy keeps the overwritten last exit", func(t *testing.T) {
		a := setup(Policy{})
		err := a.Admit(admission(VehicleClassCar, "CAR2", "2024-01-01 11:30", "2024-01-01 15:00"))
		require.Error(t, err)
		assert.Equal(t, at("2024-01-01 15:00"), a.Vehicle("CAR2").LastExit)
		// Both cars now look parked although only one admission succeeded.
		assert.Equal(t, 2, a.OccupancyAt(at("2024-01-01 12:00"))[VehicleClassCar])
	})

	t.Run("restore policy puts the previous last exit back", func(t *testing.T) {
		a := setup(Policy{RestoreLastExitOnReject: true})
		err := a.Admit(admission(VehicleClassCar, "CAR2", "2024-01-01 11:30", "2024-01-01 15:00"))
		require.Error(t, err)
		assert.Equal(t, at("2024-01-01 09:00"), a.Vehicle("CAR2").LastExit)
		assert.Equal(t, 1, a.OccupancyAt(at("2024-01-01 12:00"))[VehicleClassCar])
	})
}

func TestArea_ParkedVehicleReadmissionCountsItself(t *testing.T) {
	a := NewArea("A1", CapacityOf(0, 1, 0, 0, 0), WithClock(fixedClock("2024-01-01 12:00")))
	require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR1", "2024-01-01 11:00", "2024-01-01 13:00")))

	err := a.Admit(admission(VehicleClassCar, "CAR1", "2024-01-01 11:30", "2024-01-01 14:00"))
	assert.Equal(t, ECAPACITY, ErrorCode(err))
}

func TestArea_ExpiredStaysFreeCapacity(t *testing.T) {
	a := NewArea("A1", CapacityOf(0, 1, 0, 0, 0), WithClock(fixedClock("2024-01-02 00:00")))

	require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR1", "2024-01-01 09:00", "2024-01-01 10:00")))
	require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR2", "2024-01-01 11:00", "2024-01-01 12:00")))
	assert.Equal(t, 0, a.Occupancy()[VehicleClassCar])
}

func TestArea_ZeroCapacityRejects(t *testing.T) {
	a := NewArea("A1", CapacityOf(0, 0, 0, 0, 0), WithClock(fixedClock("2024-01-01 00:00")))
	err := a.Admit(admission(VehicleClassBus, "BUS1", "2023-12-01 09:00", "2023-12-01 10:00"))
	assert.Equal(t, ECAPACITY, ErrorCode(err))
}

func TestArea_InvalidIntervalDoesNotMutate(t *testing.T) {
	a := NewArea("A1", CapacityOf(1, 1, 1, 1, 1), WithClock(fixedClock("2024-01-01 00:00")))

	err := a.Admit(admission(VehicleClassCar, "CAR1", "2024-01-05 09:00", "2024-01-04 10:00"))
	require.Error(t, err)
	assert.Equal(t, EINVALIDINTERVAL, ErrorCode(err))
	assert.Nil(t, a.Vehicle("CAR1"))
}

func TestArea_InvalidClassForNewPlate(t *testing.T) {
	a := NewArea("A1", CapacityOf(1, 1, 1, 1, 1))
	err := a.Admit(admission(VehicleClass("tractor"), "X1", "2024-01-01 09:00", "2024-01-01 10:00"))
	assert.Equal(t, EINVALIDVEHICLETYPE, ErrorCode(err))
}

func TestArea_TenthAdmissionIsDiscounted(t *testing.T) {
	a := NewArea("A1", CapacityOf(1, 1, 1, 1, 1), WithClock(fixedClock("2025-01-01 00:00")))

	for i := 0; i < 11; i++ {
		entry := time.Date(2024, 3, 1+i, 8, 0, 0, 0, time.UTC)
		require.NoError(t, a.Admit(Admission{
			Class: VehicleClassCar,
			Plate: "LOYAL1",
			Entry: entry,
			Exit:  entry.Add(time.Hour),
		}))
	}

	v := a.Vehicle("LOYAL1")
	assert.Equal(t, 11, v.EntranceCount)
	for i, p := range v.History() {
		assert.Equal(t, i == 9, p.HasDiscount, "interval %d", i+1)
	}

	// Tenth stay (2024-03-10) is billed at the loyalty rate.
	assert.Equal(t, 1.0, v.CostForDay(day("2024-03-10")))
	assert.Equal(t, 2.0, v.CostForDay(day("2024-03-11")))
}

func TestArea_GainForDay(t *testing.T) {
	a := NewArea("A1", CapacityOf(5, 5, 5, 5, 5), WithClock(fixedClock("2025-01-01 00:00")))
	require.NoError(t, a.Admit(admission(VehicleClassCar, "CAR1", "2024-01-01 09:00", "2024-01-01 11:30")))
	require.NoError(t, a.Admit(admission(VehicleClassBus, "BUS1", "2024-01-01 10:00", "2024-01-01 11:00")))

	assert.Equal(t, 6.0+5.0, a.GainForDay(day("2024-01-01")))
}
