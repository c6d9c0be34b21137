package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/metrics"
)

// ParkingService defines the operations available on a parking chain.
type ParkingService interface {
	// AddLot appends a new parking lot to the chain.
	AddLot(ctx context.Context, params domain.AddLotParams) (*domain.ParkingLot, error)

	// AddArea appends a new area to an existing lot.
	AddArea(ctx context.Context, params domain.AddAreaParams) (*domain.Area, error)

	// AdmitVehicle records a stay in an area, subject to its capacity.
	AdmitVehicle(ctx context.Context, params domain.AdmitVehicleParams) error

	// Occupancy returns the occupancy rate of one lot, or of every lot when
	// lotName is empty.
	Occupancy(ctx context.Context, lotName string) ([]domain.LotOccupancy, error)

	// Gain returns what one lot, or every lot when lotName is empty, billed on day.
	Gain(ctx context.Context, day time.Time, lotName string) ([]domain.LotGain, error)

	// Summary returns occupancy and gain of every lot.
	Summary(ctx context.Context, day time.Time) (*domain.Summary, error)
}

// parkingService implements ParkingService.
type parkingService struct {
	chain  *domain.ParkingChain
	logger *slog.Logger
}

// NewParkingService creates a new ParkingService over chain.
func NewParkingService(chain *domain.ParkingChain, logger *slog.Logger) ParkingService {
	return &parkingService{
		chain:  chain,
		logger: logger,
	}
}

// AddLot appends a new parking lot to the chain.
func (s *parkingService) AddLot(ctx context.Context, params domain.AddLotParams) (*domain.ParkingLot, error) {
	const op = "ParkingService.AddLot"

	if err := validateParams(op, params); err != nil {
		return nil, err
	}

	lot, err := s.chain.AddLot(params.Name, params.EntryGates)
	if err != nil {
		return nil, err
	}

	s.logger.Info("parking lot added", "lot", lot.Name, "entry_gates", lot.EntryGates)
	return lot, nil
}

// AddArea appends a new area to an existing lot.
func (s *parkingService) AddArea(ctx context.Context, params domain.AddAreaParams) (*domain.Area, error) {
	const op = "ParkingService.AddArea"

	if err := validateParams(op, params); err != nil {
		return nil, err
	}

	area, err := s.chain.AddArea(params.LotName, params.Name, params.Capacity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("area added", "lot", params.LotName, "area", area.Name, "capacity", area.Capacity().Values())
	return area, nil
}

// AdmitVehicle records a stay in an area, subject to its capacity.
func (s *parkingService) AdmitVehicle(ctx context.Context, params domain.AdmitVehicleParams) error {
	const op = "ParkingService.AdmitVehicle"

	class := params.Class.String()

	if err := validateParams(op, params); err != nil {
		metrics.AdmissionRecorded(class, metrics.ResultInvalid)
		return err
	}

	err := s.chain.Admit(params.LotName, params.AreaName, params.Admission())
	switch {
	case err == nil:
		metrics.AdmissionRecorded(class, metrics.ResultAdmitted)
		s.logger.Info("vehicle admitted",
			"lot", params.LotName,
			"area", params.AreaName,
			"plate", params.Plate,
			"exit", params.Exit.Format(domain.TimestampLayout),
		)
		return nil
	case domain.IsCode(err, domain.ECAPACITY):
		metrics.AdmissionRecorded(class, metrics.ResultRejected)
		s.logger.Warn("vehicle rejected", "lot", params.LotName, "area", params.AreaName, "plate", params.Plate, "error", err)
	default:
		metrics.AdmissionRecorded(class, metrics.ResultInvalid)
	}
	return err
}

// Occupancy returns the occupancy rate of the selected lots.
func (s *parkingService) Occupancy(ctx context.Context, lotName string) ([]domain.LotOccupancy, error) {
	lots, err := s.selectLots(lotName)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LotOccupancy, 0, len(lots))
	for _, lot := range lots {
		rates := lot.OccupancyRate()
		for _, r := range rates {
			metrics.OccupancyObserved(lot.Name, r.Class.String(), r.Percent/100)
		}
		out = append(out, domain.LotOccupancy{Lot: lot.Name, Classes: rates})
	}
	return out, nil
}

// Gain returns what the selected lots billed on day.
func (s *parkingService) Gain(ctx context.Context, day time.Time, lotName string) ([]domain.LotGain, error) {
	lots, err := s.selectLots(lotName)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LotGain, 0, len(lots))
	for _, lot := range lots {
		out = append(out, domain.LotGain{Lot: lot.Name, Day: day, Gain: lot.GainForDay(day)})
	}
	return out, nil
}

// Summary returns occupancy and gain of every lot.
func (s *parkingService) Summary(ctx context.Context, day time.Time) (*domain.Summary, error) {
	occupancy, err := s.Occupancy(ctx, "")
	if err != nil {
		return nil, err
	}
	gains, err := s.Gain(ctx, day, "")
	if err != nil {
		return nil, err
	}
	return &domain.Summary{Day: day, Occupancy: occupancy, Gains: gains}, nil
}

// selectLots resolves an empty name to every lot and any other name to the
// first lot that carries it.
func (s *parkingService) selectLots(lotName string) ([]*domain.ParkingLot, error) {
	if lotName == "" {
		return s.chain.Lots(), nil
	}
	lot, err := s.chain.Lot(lotName)
	if err != nil {
		return nil, err
	}
	return []*domain.ParkingLot{lot}, nil
}
