// Package store provides an in-memory implementation of every collaborator
// interface in the schedule package, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/fleetops/scheduling-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Compile-time interface checks.
var (
	_ schedule.OverrideStore         = (*Memory)(nil)
	_ schedule.TripLedger            = (*Memory)(nil)
	_ schedule.ResourceDirectory     = (*Memory)(nil)
	_ schedule.HolidayCalendar       = (*Memory)(nil)
	_ schedule.OvertimeSettingSource = (*Memory)(nil)
)

type resourceKey struct {
	Kind schedule.ResourceKind
	ID   string
}

type overrideKey struct {
	Kind schedule.ResourceKind
	ID   string
	Date schedule.Date
}

// Memory holds all engine state behind a single RWMutex. Every read
// method returns copies so callers can filter in place.
type Memory struct {
	mu        sync.RWMutex
	resources map[resourceKey]schedule.Resource
	overrides map[overrideKey]schedule.AvailabilityOverride
	trips     map[int64]schedule.Trip
	dayOffs   map[string]schedule.CompanyDayOff
	settings  map[string]schedule.OvertimeSetting
	nextTrip  int64
}

func NewMemory() *Memory {
	return &Memory{
		resources: make(map[resourceKey]schedule.Resource),
		overrides: make(map[overrideKey]schedule.AvailabilityOverride),
		trips:     make(map[int64]schedule.Trip),
		dayOffs:   make(map[string]schedule.CompanyDayOff),
		settings:  make(map[string]schedule.OvertimeSetting),
		nextTrip:  1,
	}
}

// =============================================================================
// SEEDING
// =============================================================================

// PutResource stores or replaces a resource.
func (m *Memory) PutResource(r schedule.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[resourceKey{Kind: r.Kind, ID: r.ID}] = r
}

// PutTrip stores a trip, assigning an id when the trip carries none.
// Returns the stored trip's id.
func (m *Memory) PutTrip(t schedule.Trip) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.nextTrip
		m.nextTrip++
	} else if t.ID >= m.nextTrip {
		m.nextTrip = t.ID + 1
	}
	m.trips[t.ID] = t
	return t.ID
}

// PutDayOff stores or replaces a company day-off.
func (m *Memory) PutDayOff(d schedule.CompanyDayOff) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dayOffs[d.ID] = d
}

// PutOvertimeSetting stores or replaces a driver's overtime setting.
func (m *Memory) PutOvertimeSetting(s schedule.OvertimeSetting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.DriverID] = s
}

// =============================================================================
// OVERRIDE STORE (schedule.OverrideStore)
// =============================================================================

func (m *Memory) GetOverride(_ context.Context, kind schedule.ResourceKind, resourceID string, date schedule.Date) (*schedule.AvailabilityOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ov, ok := m.overrides[overrideKey{Kind: kind, ID: resourceID, Date: date}]
	if !ok {
		return nil, nil
	}
	return &ov, nil
}

func (m *Memory) GetOverridesInRange(_ context.Context, kind schedule.ResourceKind, resourceID string, from, to schedule.Date) ([]schedule.AvailabilityOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.AvailabilityOverride
	for k, ov := range m.overrides {
		if k.Kind == kind && k.ID == resourceID && from.BeforeOrEqual(k.Date) && k.Date.BeforeOrEqual(to) {
			result = append(result, ov)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) UpsertOverride(_ context.Context, ov schedule.AvailabilityOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := overrideKey{Kind: ov.Kind, ID: ov.ResourceID, Date: ov.Date}
	if existing, ok := m.overrides[key]; ok {
		// Update in place: keep identity and creation time.
		ov.ID = existing.ID
		ov.CreatedAt = existing.CreatedAt
	}
	m.overrides[key] = ov
	return nil
}

func (m *Memory) InsertOverrideIfAbsent(_ context.Context, ov schedule.AvailabilityOverride) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := overrideKey{Kind: ov.Kind, ID: ov.ResourceID, Date: ov.Date}
	if _, ok := m.overrides[key]; ok {
		return false, nil
	}
	m.overrides[key] = ov
	return true, nil
}

// =============================================================================
// TRIP LEDGER (schedule.TripLedger)
// =============================================================================

func (m *Memory) TripsOnDate(ctx context.Context, kind schedule.ResourceKind, resourceID string, date schedule.Date) ([]schedule.Trip, error) {
	return m.TripsInRange(ctx, kind, resourceID, date, date)
}

func (m *Memory) TripsInRange(_ context.Context, kind schedule.ResourceKind, resourceID string, from, to schedule.Date) ([]schedule.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.Trip
	for _, t := range m.trips {
		if t.Status == schedule.TripCancelled {
			continue
		}
		if t.ResourceID(kind) != resourceID {
			continue
		}
		if from.BeforeOrEqual(t.Date) && t.Date.BeforeOrEqual(to) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetTrip(_ context.Context, id int64) (*schedule.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// =============================================================================
// RESOURCE DIRECTORY (schedule.ResourceDirectory)
// =============================================================================

func (m *Memory) ListResources(_ context.Context, kind schedule.ResourceKind, zone string) ([]schedule.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.Resource
	for k, r := range m.resources {
		if k.Kind != kind || !r.Enabled {
			continue
		}
		if zone != "" && r.Zone != zone {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetResource(_ context.Context, kind schedule.ResourceKind, id string) (*schedule.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resources[resourceKey{Kind: kind, ID: id}]
	if !ok || !r.Enabled {
		return nil, nil
	}
	return &r, nil
}

// =============================================================================
// HOLIDAY CALENDAR (schedule.HolidayCalendar)
// =============================================================================

func (m *Memory) DayOffsInRange(_ context.Context, from, to schedule.Date) ([]schedule.CompanyDayOff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.CompanyDayOff
	for _, d := range m.dayOffs {
		if from.BeforeOrEqual(d.Date) && d.Date.BeforeOrEqual(to) {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// =============================================================================
// OVERTIME SETTINGS (schedule.OvertimeSettingSource)
// =============================================================================

func (m *Memory) OvertimeSettingFor(_ context.Context, driverID string) (*schedule.OvertimeSetting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[driverID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}
