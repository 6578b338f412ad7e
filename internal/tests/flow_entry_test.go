package tests

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/form"
	"fleetpay/internal/service"
)

// ──────────────────────────────────────────────
// GUIDED ENTRY END TO END
// ──────────────────────────────────────────────

func newEntryEngine(t *testing.T) (*form.Engine, *MockDriverRepository, *MockVehicleRepository) {
	t.Helper()

	driverRepo := NewMockDriverRepository()
	vehicleRepo := NewMockVehicleRepository()
	auditRepo := NewMockAuditLogRepository()

	drivers := service.NewDriverService(driverRepo, vehicleRepo, auditRepo, nil)
	vehicles := service.NewVehicleService(vehicleRepo, auditRepo, nil)

	// Trip and downtime flows need the database-backed trip service; the
	// driver and vehicle flows are exercised here.
	flows := service.NewFlowRegistry(nil, drivers, vehicles)
	engine := form.NewEngine(flows, form.NewMemoryStore(time.Hour), nil)
	return engine, driverRepo, vehicleRepo
}

func TestAddVehicleFlow_CommitsOnConfirm(t *testing.T) {
	t.Parallel()

	engine, _, vehicleRepo := newEntryEngine(t)
	ctx := context.Background()
	const accountID = 10

	prompt, err := engine.Start(ctx, service.FlowAddVehicle, accountID)
	if err != nil {
		t.Fatal(err)
	}
	if prompt.Key != "truck_number" {
		t.Fatalf("expected first prompt truck_number, got %s", prompt.Key)
	}

	for _, raw := range []string{"AB 1234-7", "PR 456", "-"} {
		result, err := engine.Submit(ctx, service.FlowAddVehicle, accountID, raw)
		if err != nil {
			t.Fatal(err)
		}
		if result.Kind == form.ResultInvalid {
			t.Fatalf("input %q rejected: %s", raw, result.Reason)
		}
	}

	outcome, err := engine.Confirm(ctx, service.FlowAddVehicle, accountID, true)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Kind != form.OutcomeCommitted {
		t.Fatalf("expected COMMITTED, got %s (%s)", outcome.Kind, outcome.Reason)
	}

	vehicle, err := vehicleRepo.GetByID(ctx, outcome.EntityID)
	if err != nil {
		t.Fatal(err)
	}
	if vehicle.TruckNumber != "AB 1234-7" {
		t.Errorf("unexpected truck number %q", vehicle.TruckNumber)
	}
	if vehicle.Notes != "" {
		t.Errorf(`expected "-" to leave notes empty, got %q`, vehicle.Notes)
	}
}

func TestAddDriverFlow_CollectsRateCard(t *testing.T) {
	t.Parallel()

	engine, driverRepo, vehicleRepo := newEntryEngine(t)
	ctx := context.Background()
	const accountID = 11

	vehicleRepo.AddVehicle(&domain.Vehicle{ID: 3, TruckNumber: "XY 99"})

	if _, err := engine.Start(ctx, service.FlowAddDriver, accountID); err != nil {
		t.Fatal(err)
	}

	inputs := []string{
		"Ivan Petrov", // name
		"10",          // km rate
		"50",          // side loading
		"80",          // roof loading
		"100,5",       // regular downtime, comma separator
		"150",         // forced downtime
		"3",           // vehicle choice
		"-",           // notes
	}

	var last *form.StepResult
	for _, raw := range inputs {
		result, err := engine.Submit(ctx, service.FlowAddDriver, accountID, raw)
		if err != nil {
			t.Fatal(err)
		}
		if result.Kind == form.ResultInvalid {
			t.Fatalf("input %q rejected: %s", raw, result.Reason)
		}
		last = result
	}

	if last.Kind != form.ResultReadyForConfirmation {
		t.Fatalf("expected READY_FOR_CONFIRMATION, got %s", last.Kind)
	}
	if last.Summary["name"] != "Ivan Petrov" {
		t.Errorf("unexpected summary name %q", last.Summary["name"])
	}

	outcome, err := engine.Confirm(ctx, service.FlowAddDriver, accountID, true)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Kind != form.OutcomeCommitted {
		t.Fatalf("expected COMMITTED, got %s (%s)", outcome.Kind, outcome.Reason)
	}

	driver, err := driverRepo.GetByID(ctx, outcome.EntityID)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.RequireFromString("100.5"); !driver.Rates.RegularDowntimeRate.Equal(want) {
		t.Errorf("expected regular downtime rate %s, got %s", want, driver.Rates.RegularDowntimeRate)
	}
	if driver.VehicleID != 3 {
		t.Errorf("expected vehicle 3, got %d", driver.VehicleID)
	}
	if driver.Notes != "" {
		t.Errorf(`expected "-" to leave notes empty, got %q`, driver.Notes)
	}
}

func TestAddDriverFlow_DiscardLeavesNoDriver(t *testing.T) {
	t.Parallel()

	engine, driverRepo, _ := newEntryEngine(t)
	ctx := context.Background()
	const accountID = 12

	if _, err := engine.Start(ctx, service.FlowAddDriver, accountID); err != nil {
		t.Fatal(err)
	}

	for _, raw := range []string{"Ghost", "1", "2", "3", "4", "5", "0", "-"} {
		if _, err := engine.Submit(ctx, service.FlowAddDriver, accountID, raw); err != nil {
			t.Fatal(err)
		}
	}

	outcome, err := engine.Confirm(ctx, service.FlowAddDriver, accountID, false)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Kind != form.OutcomeDiscarded {
		t.Fatalf("expected DISCARDED, got %s", outcome.Kind)
	}

	if driverRepo.CreateCallCount != 0 {
		t.Error("expected no driver created after discard")
	}
}
