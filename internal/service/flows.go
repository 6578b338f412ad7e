package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/form"
	"fleetpay/internal/payroll"
)

// Flow names, also the wire identifiers used by the flow endpoints.
const (
	FlowAddTrip     = "add_trip"
	FlowAddDriver   = "add_driver"
	FlowAddVehicle  = "add_vehicle"
	FlowAddDowntime = "add_downtime"
)

// notesSentinel is what operators type to leave a notes field empty.
const notesSentinel = "-"

// NewFlowRegistry builds the guided entry flows over the given services.
func NewFlowRegistry(
	trips *TripService,
	drivers *DriverService,
	vehicles *VehicleService,
) *form.Registry {
	return form.NewRegistry(
		addTripFlow(trips, drivers, vehicles),
		addDriverFlow(drivers, vehicles),
		addVehicleFlow(vehicles),
		addDowntimeFlow(trips),
	)
}

func driverOptions(drivers *DriverService) form.OptionsFunc {
	return func(ctx context.Context) ([]form.Option, error) {
		all, err := drivers.ListDrivers(ctx)
		if err != nil {
			return nil, err
		}

		opts := make([]form.Option, 0, len(all))
		for _, d := range all {
			opts = append(opts, form.Option{ID: d.ID, Label: d.Name})
		}
		return opts, nil
	}
}

func vehicleOptions(vehicles *VehicleService, withNone bool) form.OptionsFunc {
	return func(ctx context.Context) ([]form.Option, error) {
		all, err := vehicles.ListVehicles(ctx)
		if err != nil {
			return nil, err
		}

		var opts []form.Option
		if withNone {
			opts = append(opts, form.Option{ID: 0, Label: "no vehicle"})
		}
		for _, v := range all {
			label := v.TruckNumber
			if v.TrailerNumber != "" {
				label += " / " + v.TrailerNumber
			}
			opts = append(opts, form.Option{ID: v.ID, Label: label})
		}
		return opts, nil
	}
}

func addTripFlow(trips *TripService, drivers *DriverService, vehicles *VehicleService) *form.Flow {
	return &form.Flow{
		Name: FlowAddTrip,
		Steps: []form.StepSpec{
			{Key: "driver", Prompt: "trip.driver", Kind: form.KindChoice, Options: driverOptions(drivers)},
			{Key: "vehicle", Prompt: "trip.vehicle", Kind: form.KindChoice, Options: vehicleOptions(vehicles, false)},
			{Key: "loading_city", Prompt: "trip.loading_city", Kind: form.KindText},
			{Key: "unloading_city", Prompt: "trip.unloading_city", Kind: form.KindText},
			{Key: "distance_km", Prompt: "trip.distance_km", Kind: form.KindPositiveDecimal},
			{Key: "side_loadings", Prompt: "trip.side_loadings", Kind: form.KindInt},
			{Key: "roof_loadings", Prompt: "trip.roof_loadings", Kind: form.KindInt},
			{Key: "regular_hours", Prompt: "trip.regular_hours", Kind: form.KindDecimal},
			{Key: "forced_hours", Prompt: "trip.forced_hours", Kind: form.KindDecimal},
		},
		Summarize: func(ctx context.Context, values form.Values) (form.Summary, error) {
			driver, err := drivers.GetDriver(ctx, values.ChoiceID("driver"))
			if err != nil {
				return nil, err
			}

			b := payroll.Compute(driver.Rates, payroll.Measures{
				DistanceKm:       values.Decimal("distance_km"),
				SideLoadingCount: values.Int("side_loadings"),
				RoofLoadingCount: values.Int("roof_loadings"),
				RegularHours:     values.Decimal("regular_hours"),
				ForcedHours:      values.Decimal("forced_hours"),
			})

			return form.Summary{
				"driver":           driver.Name,
				"route":            values.Text("loading_city") + " - " + values.Text("unloading_city"),
				"km_payment":       b.KmPayment.String(),
				"side_loading":     b.SideLoadingPayment.String(),
				"roof_loading":     b.RoofLoadingPayment.String(),
				"regular_downtime": b.RegularDowntimePayment.String(),
				"forced_downtime":  b.ForcedDowntimePayment.String(),
				"total":            b.Total.String(),
			}, nil
		},
		Submitter: form.SubmitterFunc(func(ctx context.Context, accountID int64, values form.Values) (form.SubmitResult, error) {
			trip, err := trips.CreateTrip(ctx, CreateTripRequest{
				DriverID:         values.ChoiceID("driver"),
				VehicleID:        values.ChoiceID("vehicle"),
				LoadingCity:      values.Text("loading_city"),
				UnloadingCity:    values.Text("unloading_city"),
				DistanceKm:       values.Decimal("distance_km"),
				SideLoadingCount: values.Int("side_loadings"),
				RoofLoadingCount: values.Int("roof_loadings"),
				RegularHours:     values.Decimal("regular_hours"),
				ForcedHours:      values.Decimal("forced_hours"),
				AccountID:        accountID,
			})
			if err != nil {
				return form.SubmitResult{}, err
			}

			return form.SubmitResult{
				EntityID: trip.ID,
				Summary:  fmt.Sprintf("trip %d, total %s", trip.ID, trip.TotalDue),
			}, nil
		}),
	}
}

func addDriverFlow(drivers *DriverService, vehicles *VehicleService) *form.Flow {
	return &form.Flow{
		Name: FlowAddDriver,
		Steps: []form.StepSpec{
			{Key: "name", Prompt: "driver.name", Kind: form.KindText},
			{Key: "km_rate", Prompt: "driver.km_rate", Kind: form.KindDecimal},
			{Key: "side_loading_rate", Prompt: "driver.side_loading_rate", Kind: form.KindDecimal},
			{Key: "roof_loading_rate", Prompt: "driver.roof_loading_rate", Kind: form.KindDecimal},
			{Key: "regular_downtime_rate", Prompt: "driver.regular_downtime_rate", Kind: form.KindDecimal},
			{Key: "forced_downtime_rate", Prompt: "driver.forced_downtime_rate", Kind: form.KindDecimal},
			{Key: "vehicle", Prompt: "driver.vehicle", Kind: form.KindChoice, Options: vehicleOptions(vehicles, true)},
			{Key: "notes", Prompt: "driver.notes", Kind: form.KindText},
		},
		Summarize: func(ctx context.Context, values form.Values) (form.Summary, error) {
			return form.Summary{
				"name":                  values.Text("name"),
				"km_rate":               values.Decimal("km_rate").String(),
				"side_loading_rate":     values.Decimal("side_loading_rate").String(),
				"roof_loading_rate":     values.Decimal("roof_loading_rate").String(),
				"regular_downtime_rate": values.Decimal("regular_downtime_rate").String(),
				"forced_downtime_rate":  values.Decimal("forced_downtime_rate").String(),
			}, nil
		},
		Submitter: form.SubmitterFunc(func(ctx context.Context, accountID int64, values form.Values) (form.SubmitResult, error) {
			notes := values.Text("notes")
			if notes == notesSentinel {
				notes = ""
			}

			driver, err := drivers.CreateDriver(ctx, CreateDriverRequest{
				Name: values.Text("name"),
				Rates: domain.RateCard{
					KmRate:              values.Decimal("km_rate"),
					SideLoadingRate:     values.Decimal("side_loading_rate"),
					RoofLoadingRate:     values.Decimal("roof_loading_rate"),
					RegularDowntimeRate: values.Decimal("regular_downtime_rate"),
					ForcedDowntimeRate:  values.Decimal("forced_downtime_rate"),
				},
				VehicleID: values.ChoiceID("vehicle"),
				Notes:     notes,
				AccountID: accountID,
			})
			if err != nil {
				return form.SubmitResult{}, err
			}

			return form.SubmitResult{
				EntityID: driver.ID,
				Summary:  fmt.Sprintf("driver %d (%s)", driver.ID, driver.Name),
			}, nil
		}),
	}
}

func addVehicleFlow(vehicles *VehicleService) *form.Flow {
	return &form.Flow{
		Name: FlowAddVehicle,
		Steps: []form.StepSpec{
			{Key: "truck_number", Prompt: "vehicle.truck_number", Kind: form.KindText},
			{Key: "trailer_number", Prompt: "vehicle.trailer_number", Kind: form.KindText},
			{Key: "notes", Prompt: "vehicle.notes", Kind: form.KindText},
		},
		Summarize: func(ctx context.Context, values form.Values) (form.Summary, error) {
			return form.Summary{
				"truck_number":   values.Text("truck_number"),
				"trailer_number": values.Text("trailer_number"),
			}, nil
		},
		Submitter: form.SubmitterFunc(func(ctx context.Context, accountID int64, values form.Values) (form.SubmitResult, error) {
			notes := values.Text("notes")
			if notes == notesSentinel {
				notes = ""
			}

			trailer := values.Text("trailer_number")
			if trailer == notesSentinel {
				trailer = ""
			}

			vehicle, err := vehicles.CreateVehicle(ctx, CreateVehicleRequest{
				TruckNumber:   values.Text("truck_number"),
				TrailerNumber: trailer,
				Notes:         notes,
				AccountID:     accountID,
			})
			if err != nil {
				return form.SubmitResult{}, err
			}

			return form.SubmitResult{
				EntityID: vehicle.ID,
				Summary:  fmt.Sprintf("vehicle %d (%s)", vehicle.ID, vehicle.TruckNumber),
			}, nil
		}),
	}
}

// Option ids of the downtime kind step.
const (
	downtimeKindRegularOption int64 = 1
	downtimeKindForcedOption  int64 = 2
)

func addDowntimeFlow(trips *TripService) *form.Flow {
	tripOptions := func(ctx context.Context) ([]form.Option, error) {
		recent, err := trips.History(ctx, 30)
		if err != nil {
			return nil, err
		}

		opts := make([]form.Option, 0, len(recent))
		for _, t := range recent {
			opts = append(opts, form.Option{
				ID: t.ID,
				Label: fmt.Sprintf("#%d %s - %s (%s)",
					t.ID, t.LoadingCity, t.UnloadingCity, t.CreatedAt.Format("2006-01-02")),
			})
		}
		return opts, nil
	}

	// Step indexes used by the kind branch.
	const (
		stepRegularHours = 2
		stepForcedHours  = 3
		stepEnd          = 4
	)

	return &form.Flow{
		Name: FlowAddDowntime,
		Steps: []form.StepSpec{
			{Key: "trip", Prompt: "downtime.trip", Kind: form.KindChoice, Options: tripOptions},
			{
				Key:    "kind",
				Prompt: "downtime.kind",
				Kind:   form.KindChoice,
				Options: func(ctx context.Context) ([]form.Option, error) {
					return []form.Option{
						{ID: downtimeKindRegularOption, Label: "regular"},
						{ID: downtimeKindForcedOption, Label: "forced"},
					}, nil
				},
				Next: func(s *form.Session, v form.Value) int {
					if v.ChoiceID == downtimeKindForcedOption {
						return stepForcedHours
					}
					return stepRegularHours
				},
			},
			{
				Key: "regular_hours", Prompt: "downtime.regular_hours", Kind: form.KindPositiveDecimal,
				Next: func(s *form.Session, v form.Value) int { return stepEnd },
			},
			{Key: "forced_hours", Prompt: "downtime.forced_hours", Kind: form.KindPositiveDecimal},
		},
		Summarize: func(ctx context.Context, values form.Values) (form.Summary, error) {
			kind, hours := downtimeInput(values)
			return form.Summary{
				"trip":  values["trip"].ChoiceLabel,
				"kind":  string(kind),
				"hours": hours.String(),
			}, nil
		},
		Submitter: form.SubmitterFunc(func(ctx context.Context, accountID int64, values form.Values) (form.SubmitResult, error) {
			kind, hours := downtimeInput(values)

			downtime, err := trips.AddDowntime(ctx, AddDowntimeRequest{
				TripID:    values.ChoiceID("trip"),
				Kind:      kind,
				Hours:     hours,
				AccountID: accountID,
			})
			if err != nil {
				return form.SubmitResult{}, err
			}

			return form.SubmitResult{
				EntityID: downtime.ID,
				Summary:  fmt.Sprintf("downtime %d, payment %s", downtime.ID, downtime.Payment),
			}, nil
		}),
	}
}

func downtimeInput(values form.Values) (domain.DowntimeKind, decimal.Decimal) {
	if values.ChoiceID("kind") == downtimeKindForcedOption {
		return domain.DowntimeKindForced, values.Decimal("forced_hours")
	}
	return domain.DowntimeKindRegular, values.Decimal("regular_hours")
}
