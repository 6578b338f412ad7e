package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// ReportService renders ledger views as CSV downloads.
type ReportService struct {
	tripRepo   repository.TripRepository
	driverRepo repository.DriverRepository
}

// NewReportService creates a new ReportService.
func NewReportService(tripRepo repository.TripRepository, driverRepo repository.DriverRepository) *ReportService {
	return &ReportService{
		tripRepo:   tripRepo,
		driverRepo: driverRepo,
	}
}

// UnpaidTripsCSV renders all trips with an outstanding balance.
func (s *ReportService) UnpaidTripsCSV(ctx context.Context) ([]byte, error) {
	trips, err := s.tripRepo.ListUnpaid(ctx)
	if err != nil {
		return nil, err
	}

	names, err := s.driverNames(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"trip_id", "date", "driver", "route", "total_due", "paid_amount", "outstanding", "status"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, trip := range trips {
		record := []string{
			strconv.FormatInt(trip.ID, 10),
			trip.CreatedAt.Format("2006-01-02"),
			names[trip.DriverID],
			trip.LoadingCity + " - " + trip.UnloadingCity,
			trip.TotalDue.String(),
			trip.PaidAmount.String(),
			trip.Outstanding().String(),
			string(trip.Status()),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// TripHistoryCSV renders the trips of the last days days, or all trips when
// days <= 0.
func (s *ReportService) TripHistoryCSV(ctx context.Context, days int) ([]byte, error) {
	trips, err := s.history(ctx, days)
	if err != nil {
		return nil, err
	}

	names, err := s.driverNames(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"trip_id", "date", "driver", "loading_city", "unloading_city",
		"distance_km", "side_loadings", "roof_loadings",
		"total_due", "paid_amount", "status",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, trip := range trips {
		record := []string{
			strconv.FormatInt(trip.ID, 10),
			trip.CreatedAt.Format("2006-01-02"),
			names[trip.DriverID],
			trip.LoadingCity,
			trip.UnloadingCity,
			trip.DistanceKm.String(),
			strconv.FormatInt(trip.SideLoadingCount, 10),
			strconv.FormatInt(trip.RoofLoadingCount, 10),
			trip.TotalDue.String(),
			trip.PaidAmount.String(),
			string(trip.Status()),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DriverLedgerCSV renders the per-driver paid/unpaid breakdown.
func (s *ReportService) DriverLedgerCSV(ctx context.Context) ([]byte, error) {
	stats, err := s.tripRepo.LedgerStatsByDriver(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"driver_id", "driver", "unpaid_trips", "unpaid_amount", "partially_paid",
		"paid_trips", "paid_amount", "total_trips", "total_amount",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range stats {
		record := []string{
			strconv.FormatInt(row.DriverID, 10),
			row.DriverName,
			strconv.FormatInt(row.UnpaidTrips, 10),
			row.UnpaidAmount.String(),
			row.PartiallyPaid.String(),
			strconv.FormatInt(row.PaidTrips, 10),
			row.PaidAmount.String(),
			strconv.FormatInt(row.TotalTrips, 10),
			row.TotalAmount.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *ReportService) history(ctx context.Context, days int) ([]*domain.Trip, error) {
	var since time.Time
	if days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}
	return s.tripRepo.List(ctx, since)
}

func (s *ReportService) driverNames(ctx context.Context) (map[int64]string, error) {
	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(drivers))
	for _, d := range drivers {
		names[d.ID] = d.Name
	}
	return names, nil
}
