package service

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/metrics"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (ParkingService, *domain.ParkingChain) {
	t.Helper()
	chain := domain.NewParkingChain(domain.WithClock(func() time.Time { return now }))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewParkingService(chain, logger), chain
}

func TestParkingService_AddLotValidation(t *testing.T) {
	svc, chain := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		params  domain.AddLotParams
		wantErr bool
		field   string
	}{
		{"valid", domain.AddLotParams{Name: "Central", EntryGates: 3}, false, ""},
		{"upper bound", domain.AddLotParams{Name: "Big", EntryGates: 50}, false, ""},
		{"no entries", domain.AddLotParams{Name: "Closed", EntryGates: 0}, true, "EntryGates"},
		{"too many entries", domain.AddLotParams{Name: "Huge", EntryGates: 51}, true, "EntryGates"},
		{"missing name", domain.AddLotParams{EntryGates: 1}, true, "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot, err := svc.AddLot(ctx, tt.params)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.params.Name, lot.Name)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	assert.Len(t, chain.Lots(), 2)
}

func TestParkingService_RejectsCommas(t *testing.T) {
	svc, chain := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddLot(ctx, domain.AddLotParams{Name: "Central", EntryGates: 1})
	require.NoError(t, err)
	_, err = svc.AddArea(ctx, domain.AddAreaParams{LotName: "Central", Name: "A1", Capacity: domain.CapacityOf(1, 1, 1, 1, 1)})
	require.NoError(t, err)

	admit := func(lot, area, plate string) error {
		return svc.AdmitVehicle(ctx, domain.AdmitVehicleParams{
			LotName:  lot,
			AreaName: area,
			Plate:    plate,
			Class:    domain.VehicleClassCar,
			Entry:    now,
			Exit:     now.Add(time.Hour),
		})
	}

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{"lot name", func() error {
			_, err := svc.AddLot(ctx, domain.AddLotParams{Name: "North, Gate", EntryGates: 2})
			return err
		}, "Name"},
		{"area name", func() error {
			_, err := svc.AddArea(ctx, domain.AddAreaParams{LotName: "Central", Name: "A,2", Capacity: domain.CapacityOf(1)})
			return err
		}, "Name"},
		{"area lot name", func() error {
			_, err := svc.AddArea(ctx, domain.AddAreaParams{LotName: "Cen,tral", Name: "A2", Capacity: domain.CapacityOf(1)})
			return err
		}, "LotName"},
		{"plate", func() error { return admit("Central", "A1", "AB,123") }, "Plate"},
		{"admit lot name", func() error { return admit("Central,", "A1", "AB123") }, "LotName"},
		{"admit area name", func() error { return admit("Central", ",A1", "AB123") }, "AreaName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field+" must not contain a comma", ve.Fields[tt.field])
		})
	}

	assert.Len(t, chain.Lots(), 1)
	area, err := chain.Area("Central", "A1")
	require.NoError(t, err)
	assert.Empty(t, area.Vehicles())
}

func TestParkingService_LimitsMatchConstants(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	gates := []struct {
		value int
		ok    bool
	}{
		{domain.MinEntryGates - 1, false},
		{domain.MinEntryGates, true},
		{domain.MaxEntryGates, true},
		{domain.MaxEntryGates + 1, false},
	}
	for _, g := range gates {
		_, err := svc.AddLot(ctx, domain.AddLotParams{Name: "Lot", EntryGates: g.value})
		assert.Equal(t, g.ok, err == nil, "entry gates %d", g.value)
	}

	capacities := []struct {
		value int
		ok    bool
	}{
		{domain.MinCapacity - 1, false},
		{domain.MinCapacity, true},
		{domain.MaxCapacity, true},
		{domain.MaxCapacity + 1, false},
	}
	for _, c := range capacities {
		_, err := svc.AddArea(ctx, domain.AddAreaParams{LotName: "Lot", Name: "Area", Capacity: domain.CapacityOf(c.value)})
		assert.Equal(t, c.ok, err == nil, "capacity %d", c.value)
	}
}

func TestParkingService_AddArea(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddLot(ctx, domain.AddLotParams{Name: "Central", EntryGates: 1})
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		area, err := svc.AddArea(ctx, domain.AddAreaParams{
			LotName: "Central", Name: "A1", Capacity: domain.CapacityOf(1, 2, 3, 4, 5),
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, area.Capacity().Values())
	})

	t.Run("capacity out of range", func(t *testing.T) {
		_, err := svc.AddArea(ctx, domain.AddAreaParams{
			LotName: "Central", Name: "A2", Capacity: domain.CapacityOf(1, 51),
		})
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("unknown lot", func(t *testing.T) {
		_, err := svc.AddArea(ctx, domain.AddAreaParams{
			LotName: "North", Name: "N1", Capacity: domain.CapacityOf(1),
		})
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
		assert.Equal(t, "Parking lot 'North' does not exist!", domain.ErrorMessage(err))
	})
}

func TestParkingService_AdmitVehicle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.AddLot(ctx, domain.AddLotParams{Name: "Central", EntryGates: 1})
	_, err := svc.AddArea(ctx, domain.AddAreaParams{LotName: "Central", Name: "A1", Capacity: domain.CapacityOf(0, 0, 0, 0, 1)})
	require.NoError(t, err)

	params := func(plate string) domain.AdmitVehicleParams {
		return domain.AdmitVehicleParams{
			LotName:  "Central",
			AreaName: "A1",
			Plate:    plate,
			Class:    domain.VehicleClassTruck,
			Entry:    now,
			Exit:     now.Add(2 * time.Hour),
		}
	}

	admitted := testutil.ToFloat64(metrics.AdmissionsTotal.WithLabelValues("truck", metrics.ResultAdmitted))
	rejected := testutil.ToFloat64(metrics.AdmissionsTotal.WithLabelValues("truck", metrics.ResultRejected))
	invalid := testutil.ToFloat64(metrics.AdmissionsTotal.WithLabelValues("truck", metrics.ResultInvalid))

	require.NoError(t, svc.AdmitVehicle(ctx, params("TRK1")))

	err = svc.AdmitVehicle(ctx, params("TRK2"))
	assert.Equal(t, domain.ECAPACITY, domain.ErrorCode(err))
	assert.Equal(t, "Maximum capacity for truck is 1", domain.ErrorMessage(err))

	err = svc.AdmitVehicle(ctx, params(""))
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	missing := params("TRK3")
	missing.AreaName = "A9"
	err = svc.AdmitVehicle(ctx, missing)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	assert.Equal(t, admitted+1, testutil.ToFloat64(metrics.AdmissionsTotal.WithLabelValues("truck", metrics.ResultAdmitted)))
	assert.Equal(t, rejected+1, testutil.ToFloat64(metrics.AdmissionsTotal.WithLabelValues("truck", metrics.ResultRejected)))
	assert.Equal(t, invalid+2, testutil.ToFloat64(metrics.AdmissionsTotal.WithLabelValues("truck", metrics.ResultInvalid)))
}

func TestParkingService_OccupancyAndGain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.AddLot(ctx, domain.AddLotParams{Name: "Central", EntryGates: 1})
	_, _ = svc.AddLot(ctx, domain.AddLotParams{Name: "North", EntryGates: 1})
	_, err := svc.AddArea(ctx, domain.AddAreaParams{LotName: "Central", Name: "A1", Capacity: domain.CapacityOf(0, 4)})
	require.NoError(t, err)

	require.NoError(t, svc.AdmitVehicle(ctx, domain.AdmitVehicleParams{
		LotName: "Central", AreaName: "A1", Plate: "CAR1", Class: domain.VehicleClassCar,
		Entry: now, Exit: now.Add(90 * time.Minute),
	}))

	t.Run("single lot", func(t *testing.T) {
		occ, err := svc.Occupancy(ctx, "Central")
		require.NoError(t, err)
		require.Len(t, occ, 1)
		car := occ[0].Classes[1]
		assert.Equal(t, domain.VehicleClassCar, car.Class)
		assert.Equal(t, 1, car.Occupied)
		assert.Equal(t, 25.0, car.Percent)
		assert.True(t, math.IsNaN(occ[0].Classes[0].Percent))
		assert.Equal(t, 0.25, testutil.ToFloat64(metrics.OccupancyRatio.WithLabelValues("Central", "car")))
	})

	t.Run("every lot", func(t *testing.T) {
		occ, err := svc.Occupancy(ctx, "")
		require.NoError(t, err)
		assert.Len(t, occ, 2)
	})

	t.Run("unknown lot", func(t *testing.T) {
		_, err := svc.Occupancy(ctx, "West")
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
		_, err = svc.Gain(ctx, now, "West")
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})

	t.Run("gain", func(t *testing.T) {
		gains, err := svc.Gain(ctx, now, "Central")
		require.NoError(t, err)
		require.Len(t, gains, 1)
		assert.Equal(t, 4.0, gains[0].Gain)
	})

	t.Run("summary", func(t *testing.T) {
		summary, err := svc.Summary(ctx, now)
		require.NoError(t, err)
		assert.Len(t, summary.Occupancy, 2)
		assert.Len(t, summary.Gains, 2)
		assert.Equal(t, 4.0, summary.TotalGain())
	})
}
