package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	nextID  int64
	drivers map[int64]*domain.Driver

	// Counters for verification
	CreateCallCount      int32
	UpdateRatesCallCount int32

	// Error injection
	CreateError      error
	UpdateRatesError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[int64]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if driver.ID == 0 {
		m.nextID++
		driver.ID = m.nextID
	} else if driver.ID > m.nextID {
		m.nextID = driver.ID
	}
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	driver.ID = m.nextID
	driver.CreatedAt = time.Now()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id int64) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockDriverRepository) UpdateRates(ctx context.Context, id int64, rates domain.RateCard) error {
	atomic.AddInt32(&m.UpdateRatesCallCount, 1)
	if m.UpdateRatesError != nil {
		return m.UpdateRatesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Rates = rates
	return nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	nextID   int64
	vehicles map[int64]*domain.Vehicle

	CreateCallCount int32

	CreateError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[int64]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vehicle.ID == 0 {
		m.nextID++
		vehicle.ID = m.nextID
	} else if vehicle.ID > m.nextID {
		m.nextID = vehicle.ID
	}
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	vehicle.ID = m.nextID
	vehicle.CreatedAt = time.Now()
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		copy := *v
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TruckNumber < result[j].TruckNumber })
	return result, nil
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository. The ledger
// aggregates are computed by iteration over the stored rows, mirroring what
// the SQL implementation derives.
type MockTripRepository struct {
	mu     sync.RWMutex
	nextID int64
	trips  map[int64]*domain.Trip

	CreateCallCount int32
	UpdateCallCount int32

	CreateError error
	UpdateError error

	// driverNames backs the per-driver aggregate rows.
	driverNames map[int64]string
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips:       make(map[int64]*domain.Trip),
		driverNames: make(map[int64]string),
	}
}

// SetDriverName records the name reported for a driver in aggregate rows.
func (m *MockTripRepository) SetDriverName(driverID int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driverNames[driverID] = name
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trip.ID == 0 {
		m.nextID++
		trip.ID = m.nextID
	} else if trip.ID > m.nextID {
		m.nextID = trip.ID
	}
	m.trips[trip.ID] = trip
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	trip.ID = m.nextID
	trip.CreatedAt = time.Now()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Trip, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTripRepository) List(ctx context.Context, since time.Time) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if !since.IsZero() && t.CreatedAt.Before(since) {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	sortTripsNewestFirst(result)
	return result, nil
}

func (m *MockTripRepository) ListUnpaid(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.Paid {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	sortTripsNewestFirst(result)
	return result, nil
}

func (m *MockTripRepository) ListUnpaidByDriver(ctx context.Context, driverID int64) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.Paid || t.DriverID != driverID {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	sortTripsNewestFirst(result)
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, t := range m.trips {
		if t.Paid {
			continue
		}
		total = total.Add(t.TotalDue.Sub(t.PaidAmount))
	}
	return total, nil
}

func (m *MockTripRepository) OutstandingByDriver(ctx context.Context) ([]repository.DriverDebt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byDriver := make(map[int64]*repository.DriverDebt)
	for _, t := range m.trips {
		if t.Paid {
			continue
		}
		debt, ok := byDriver[t.DriverID]
		if !ok {
			debt = &repository.DriverDebt{
				DriverID:    t.DriverID,
				DriverName:  m.driverNames[t.DriverID],
				Outstanding: decimal.Zero,
			}
			byDriver[t.DriverID] = debt
		}
		debt.UnpaidTrips++
		debt.Outstanding = debt.Outstanding.Add(t.TotalDue.Sub(t.PaidAmount))
	}

	result := make([]repository.DriverDebt, 0, len(byDriver))
	for _, debt := range byDriver {
		result = append(result, *debt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DriverName < result[j].DriverName })
	return result, nil
}

func (m *MockTripRepository) LedgerStatsByDriver(ctx context.Context) ([]repository.DriverLedgerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byDriver := make(map[int64]*repository.DriverLedgerStats)
	for id, name := range m.driverNames {
		byDriver[id] = &repository.DriverLedgerStats{
			DriverID:      id,
			DriverName:    name,
			UnpaidAmount:  decimal.Zero,
			PartiallyPaid: decimal.Zero,
			PaidAmount:    decimal.Zero,
			TotalAmount:   decimal.Zero,
		}
	}
	for _, t := range m.trips {
		s, ok := byDriver[t.DriverID]
		if !ok {
			s = &repository.DriverLedgerStats{
				DriverID:      t.DriverID,
				UnpaidAmount:  decimal.Zero,
				PartiallyPaid: decimal.Zero,
				PaidAmount:    decimal.Zero,
				TotalAmount:   decimal.Zero,
			}
			byDriver[t.DriverID] = s
		}
		s.TotalTrips++
		s.TotalAmount = s.TotalAmount.Add(t.TotalDue)
		if t.Paid {
			s.PaidTrips++
			s.PaidAmount = s.PaidAmount.Add(t.TotalDue)
		} else {
			s.UnpaidTrips++
			s.UnpaidAmount = s.UnpaidAmount.Add(t.TotalDue.Sub(t.PaidAmount))
			s.PartiallyPaid = s.PartiallyPaid.Add(t.PaidAmount)
		}
	}

	result := make([]repository.DriverLedgerStats, 0, len(byDriver))
	for _, s := range byDriver {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DriverName < result[j].DriverName })
	return result, nil
}

func sortTripsNewestFirst(trips []*domain.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		if trips[i].CreatedAt.Equal(trips[j].CreatedAt) {
			return trips[i].ID > trips[j].ID
		}
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})
}

// ──────────────────────────────────────────────
// MOCK DOWNTIME REPOSITORY
// ──────────────────────────────────────────────

// MockDowntimeRepository is a mock implementation of DowntimeRepository.
type MockDowntimeRepository struct {
	mu        sync.RWMutex
	nextID    int64
	downtimes []*domain.Downtime

	CreateCallCount int32

	CreateError error
}

// NewMockDowntimeRepository creates a new mock downtime repository.
func NewMockDowntimeRepository() *MockDowntimeRepository {
	return &MockDowntimeRepository{}
}

func (m *MockDowntimeRepository) Create(ctx context.Context, downtime *domain.Downtime) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	downtime.ID = m.nextID
	downtime.CreatedAt = time.Now()
	copy := *downtime
	m.downtimes = append(m.downtimes, &copy)
	return nil
}

func (m *MockDowntimeRepository) ListByTrip(ctx context.Context, tripID int64) ([]*domain.Downtime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Downtime
	for _, d := range m.downtimes {
		if d.TripID != tripID {
			continue
		}
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK ACCOUNT REPOSITORY
// ──────────────────────────────────────────────

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
}

// NewMockAccountRepository creates a new mock account repository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[int64]*domain.Account),
	}
}

// AddAccount adds an account to the mock repository.
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *account
	return &copy, nil
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		copy := *a
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockAccountRepository) Upsert(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.accounts[account.ID]; ok {
		account.CreatedAt = existing.CreatedAt
	} else {
		account.CreatedAt = time.Now()
	}
	copy := *account
	m.accounts[account.ID] = &copy
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *MockAccountRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, a := range m.accounts {
		if a.Role == role {
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────
// MOCK AUDIT LOG REPOSITORY
// ──────────────────────────────────────────────

// MockAuditLogRepository is a mock implementation of AuditLogRepository.
type MockAuditLogRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries []*domain.AuditEntry

	AppendCallCount int32
}

// NewMockAuditLogRepository creates a new mock audit log repository.
func NewMockAuditLogRepository() *MockAuditLogRepository {
	return &MockAuditLogRepository{}
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	entry.CreatedAt = time.Now()
	copy := *entry
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *MockAuditLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AuditEntry
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		copy := *m.entries[i]
		result = append(result, &copy)
	}
	return result, nil
}

// Actions returns the recorded action names in append order.
func (m *MockAuditLogRepository) Actions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	actions := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

// Compile-time interface checks.
var (
	_ repository.DriverRepository   = (*MockDriverRepository)(nil)
	_ repository.VehicleRepository  = (*MockVehicleRepository)(nil)
	_ repository.TripRepository     = (*MockTripRepository)(nil)
	_ repository.DowntimeRepository = (*MockDowntimeRepository)(nil)
	_ repository.AccountRepository  = (*MockAccountRepository)(nil)
	_ repository.AuditLogRepository = (*MockAuditLogRepository)(nil)
)
