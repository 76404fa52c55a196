/*
Package sqlite provides the SQLite-backed implementation of the schedule
collaborator interfaces plus the master-data writes the server needs to
populate them.

INTERFACES IMPLEMENTED:
  schedule.OverrideStore:         availability exception rows
  schedule.TripLedger:            non-cancelled trip reads
  schedule.ResourceDirectory:     enabled drivers/trucks
  schedule.HolidayCalendar:       company day-offs
  schedule.OvertimeSettingSource: per-driver hour caps

UPSERT CONTRACT:
  availability_overrides carries UNIQUE(resource_kind, resource_id, date).
  UpsertOverride is a single INSERT ... ON CONFLICT DO UPDATE statement,
  so two concurrent writers of one cell cannot produce two rows and the
  last committed write wins. InsertOverrideIfAbsent uses DO NOTHING and
  reports rows affected, which is what makes bulk initialization
  idempotent.

WAL MODE:
  The database opens with WAL journaling: readers don't block, one writer
  at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/fleet.db")
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - schedule/stores.go: interface definitions and contracts
  - schedule/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/fleetops/scheduling-engine/schedule"
)

// Compile-time interface checks.
var (
	_ schedule.OverrideStore         = (*Store)(nil)
	_ schedule.TripLedger            = (*Store)(nil)
	_ schedule.ResourceDirectory     = (*Store)(nil)
	_ schedule.HolidayCalendar       = (*Store)(nil)
	_ schedule.OvertimeSettingSource = (*Store)(nil)
)

// Store implements all collaborator interfaces over one SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; the pool must not
	// open a second one.
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schemaSQL := `
	-- Drivers and trucks, as the engine sees them
	CREATE TABLE IF NOT EXISTS resources (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		zone TEXT NOT NULL DEFAULT '',
		permit TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		PRIMARY KEY (kind, id)
	);

	CREATE INDEX IF NOT EXISTS idx_resources_kind_zone
		ON resources(kind, zone) WHERE enabled;

	-- Per-resource-per-date availability exceptions
	CREATE TABLE IF NOT EXISTS availability_overrides (
		id TEXT PRIMARY KEY,
		resource_kind TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		date TEXT NOT NULL,
		is_available BOOLEAN NOT NULL,
		is_day_off BOOLEAN NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: at most one override row per (kind, resource, date).
	-- The atomic upsert in UpsertOverride relies on this index.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_overrides_cell
		ON availability_overrides(resource_kind, resource_id, date);

	-- Trips (subset of fields the engine reads)
	CREATE TABLE IF NOT EXISTS trips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reference TEXT NOT NULL DEFAULT '',
		driver_id TEXT NOT NULL,
		truck_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		start_minutes INTEGER NOT NULL DEFAULT 0,
		duration_hours TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'planned',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trips_driver_date ON trips(driver_id, date);
	CREATE INDEX IF NOT EXISTS idx_trips_truck_date ON trips(truck_id, date);

	-- Company day-offs, shared by all resources in a country
	CREATE TABLE IF NOT EXISTS company_day_offs (
		id TEXT PRIMARY KEY,
		country TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_day_offs_unique
		ON company_day_offs(country, date, name);
	CREATE INDEX IF NOT EXISTS idx_day_offs_date ON company_day_offs(date);

	-- Per-driver overtime terms (zero-or-one per driver)
	CREATE TABLE IF NOT EXISTS overtime_settings (
		driver_id TEXT PRIMARY KEY,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		max_daily_hours TEXT NOT NULL,
		max_weekly_hours TEXT NOT NULL DEFAULT '0',
		overtime_rate_per_hour TEXT NOT NULL DEFAULT '0',
		allow_weekend_overtime BOOLEAN NOT NULL DEFAULT FALSE,
		allow_holiday_overtime BOOLEAN NOT NULL DEFAULT FALSE,
		weekend_rate_multiplier TEXT NOT NULL DEFAULT '1',
		holiday_rate_multiplier TEXT NOT NULL DEFAULT '1',
		notes TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schemaSQL)
	return err
}

// storeErr wraps driver-level failures so callers can classify them.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", schedule.ErrStoreUnavailable, op, err)
}

// =============================================================================
// OVERRIDE STORE (schedule.OverrideStore)
// =============================================================================

func (s *Store) GetOverride(ctx context.Context, kind schedule.ResourceKind, resourceID string, date schedule.Date) (*schedule.AvailabilityOverride, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, resource_kind, resource_id, date, is_available, is_day_off, reason, created_at, updated_at
		FROM availability_overrides
		WHERE resource_kind = ? AND resource_id = ? AND date = ?`,
		string(kind), resourceID, date.String())

	ov, err := scanOverride(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get override", err)
	}
	return ov, nil
}

func (s *Store) GetOverridesInRange(ctx context.Context, kind schedule.ResourceKind, resourceID string, from, to schedule.Date) ([]schedule.AvailabilityOverride, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, resource_kind, resource_id, date, is_available, is_day_off, reason, created_at, updated_at
		FROM availability_overrides
		WHERE resource_kind = ? AND resource_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		string(kind), resourceID, from.String(), to.String())
	if err != nil {
		return nil, storeErr("list overrides", err)
	}
	defer rows.Close()

	var result []schedule.AvailabilityOverride
	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, storeErr("scan override", err)
		}
		result = append(result, *ov)
	}
	return result, rows.Err()
}

// UpsertOverride inserts or updates the row for the override's cell in a
// single statement; the unique index on the cell makes this atomic under
// concurrent writers.
func (s *Store) UpsertOverride(ctx context.Context, ov schedule.AvailabilityOverride) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO availability_overrides
			(id, resource_kind, resource_id, date, is_available, is_day_off, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(resource_kind, resource_id, date) DO UPDATE SET
			is_available = excluded.is_available,
			is_day_off = excluded.is_day_off,
			reason = excluded.reason,
			updated_at = excluded.updated_at`,
		ov.ID, string(ov.Kind), ov.ResourceID, ov.Date.String(),
		ov.IsAvailable, ov.IsDayOff, ov.Reason,
		fmtTime(ov.CreatedAt), fmtTime(ov.UpdatedAt))
	if err != nil {
		return storeErr("upsert override", err)
	}
	return nil
}

func (s *Store) InsertOverrideIfAbsent(ctx context.Context, ov schedule.AvailabilityOverride) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO availability_overrides
			(id, resource_kind, resource_id, date, is_available, is_day_off, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(resource_kind, resource_id, date) DO NOTHING`,
		ov.ID, string(ov.Kind), ov.ResourceID, ov.Date.String(),
		ov.IsAvailable, ov.IsDayOff, ov.Reason,
		fmtTime(ov.CreatedAt), fmtTime(ov.UpdatedAt))
	if err != nil {
		return false, storeErr("insert override", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("insert override", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOverride(row rowScanner) (*schedule.AvailabilityOverride, error) {
	var (
		ov                   schedule.AvailabilityOverride
		kind                 string
		dateStr              string
		createdAt, updatedAt string
	)
	err := row.Scan(&ov.ID, &kind, &ov.ResourceID, &dateStr,
		&ov.IsAvailable, &ov.IsDayOff, &ov.Reason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	ov.Kind = schedule.ResourceKind(kind)
	if ov.Date, err = schedule.ParseDate(dateStr); err != nil {
		return nil, err
	}
	ov.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	ov.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &ov, nil
}

// =============================================================================
// TRIP LEDGER (schedule.TripLedger)
// =============================================================================

func (s *Store) TripsOnDate(ctx context.Context, kind schedule.ResourceKind, resourceID string, date schedule.Date) ([]schedule.Trip, error) {
	return s.TripsInRange(ctx, kind, resourceID, date, date)
}

func (s *Store) TripsInRange(ctx context.Context, kind schedule.ResourceKind, resourceID string, from, to schedule.Date) ([]schedule.Trip, error) {
	column := "driver_id"
	if kind == schedule.KindTruck {
		column = "truck_id"
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, reference, driver_id, truck_id, date, start_minutes, duration_hours, status
		FROM trips
		WHERE %s = ? AND date >= ? AND date <= ? AND status != ?
		ORDER BY date, start_minutes, id`, column),
		resourceID, from.String(), to.String(), string(schedule.TripCancelled))
	if err != nil {
		return nil, storeErr("list trips", err)
	}
	defer rows.Close()

	var result []schedule.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, storeErr("scan trip", err)
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (s *Store) GetTrip(ctx context.Context, id int64) (*schedule.Trip, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reference, driver_id, truck_id, date, start_minutes, duration_hours, status
		FROM trips WHERE id = ?`, id)

	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get trip", err)
	}
	return t, nil
}

// SaveTrip inserts a trip and returns its assigned id.
func (s *Store) SaveTrip(ctx context.Context, t schedule.Trip) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (reference, driver_id, truck_id, date, start_minutes, duration_hours, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Reference, t.DriverID, t.TruckID, t.Date.String(),
		int(t.Start), t.DurationHours.String(), string(t.Status),
		fmtTime(time.Now().UTC()))
	if err != nil {
		return 0, storeErr("save trip", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("save trip", err)
	}
	return id, nil
}

// UpdateTripStatus changes one trip's status (e.g. cancelling it).
func (s *Store) UpdateTripStatus(ctx context.Context, id int64, status schedule.TripStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE trips SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return storeErr("update trip status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: id %d", schedule.ErrTripNotFound, id)
	}
	return nil
}

func scanTrip(row rowScanner) (*schedule.Trip, error) {
	var (
		t            schedule.Trip
		dateStr      string
		startMinutes int
		durationStr  string
		status       string
	)
	err := row.Scan(&t.ID, &t.Reference, &t.DriverID, &t.TruckID,
		&dateStr, &startMinutes, &durationStr, &status)
	if err != nil {
		return nil, err
	}
	if t.Date, err = schedule.ParseDate(dateStr); err != nil {
		return nil, err
	}
	t.Start = schedule.ClockTime(startMinutes)
	t.Status = schedule.TripStatus(status)
	if t.DurationHours, err = decimal.NewFromString(durationStr); err != nil {
		return nil, fmt.Errorf("bad duration %q: %w", durationStr, err)
	}
	return &t, nil
}

// =============================================================================
// RESOURCE DIRECTORY (schedule.ResourceDirectory)
// =============================================================================

func (s *Store) ListResources(ctx context.Context, kind schedule.ResourceKind, zone string) ([]schedule.Resource, error) {
	query := `SELECT kind, id, name, enabled, zone, permit FROM resources WHERE kind = ? AND enabled`
	args := []any{string(kind)}
	if zone != "" {
		query += ` AND zone = ?`
		args = append(args, zone)
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list resources", err)
	}
	defer rows.Close()

	var result []schedule.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, storeErr("scan resource", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

func (s *Store) GetResource(ctx context.Context, kind schedule.ResourceKind, id string) (*schedule.Resource, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT kind, id, name, enabled, zone, permit FROM resources
		WHERE kind = ? AND id = ? AND enabled`, string(kind), id)

	r, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get resource", err)
	}
	return r, nil
}

// SaveResource inserts or updates a resource record.
func (s *Store) SaveResource(ctx context.Context, r schedule.Resource) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (kind, id, name, enabled, zone, permit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			name = excluded.name,
			enabled = excluded.enabled,
			zone = excluded.zone,
			permit = excluded.permit`,
		string(r.Kind), r.ID, r.Name, r.Enabled, r.Zone, r.Permit, fmtTime(time.Now().UTC()))
	if err != nil {
		return storeErr("save resource", err)
	}
	return nil
}

func scanResource(row rowScanner) (*schedule.Resource, error) {
	var (
		r    schedule.Resource
		kind string
	)
	if err := row.Scan(&kind, &r.ID, &r.Name, &r.Enabled, &r.Zone, &r.Permit); err != nil {
		return nil, err
	}
	r.Kind = schedule.ResourceKind(kind)
	return &r, nil
}

// =============================================================================
// HOLIDAY CALENDAR (schedule.HolidayCalendar)
// =============================================================================

func (s *Store) DayOffsInRange(ctx context.Context, from, to schedule.Date) ([]schedule.CompanyDayOff, error) {
	return s.queryDayOffs(ctx, `
		SELECT id, country, date, name, description FROM company_day_offs
		WHERE date >= ? AND date <= ? ORDER BY date, name`,
		from.String(), to.String())
}

// ListDayOffs returns every registered day-off, optionally country-scoped.
func (s *Store) ListDayOffs(ctx context.Context, country string) ([]schedule.CompanyDayOff, error) {
	if country != "" {
		return s.queryDayOffs(ctx, `
			SELECT id, country, date, name, description FROM company_day_offs
			WHERE country = ? ORDER BY date, name`, country)
	}
	return s.queryDayOffs(ctx, `
		SELECT id, country, date, name, description FROM company_day_offs
		ORDER BY date, name`)
}

func (s *Store) queryDayOffs(ctx context.Context, query string, args ...any) ([]schedule.CompanyDayOff, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list day-offs", err)
	}
	defer rows.Close()

	var result []schedule.CompanyDayOff
	for rows.Next() {
		var (
			d       schedule.CompanyDayOff
			dateStr string
		)
		if err := rows.Scan(&d.ID, &d.Country, &dateStr, &d.Name, &d.Description); err != nil {
			return nil, storeErr("scan day-off", err)
		}
		if d.Date, err = schedule.ParseDate(dateStr); err != nil {
			return nil, storeErr("scan day-off", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// SaveDayOff inserts a company day-off, generating an id when absent.
func (s *Store) SaveDayOff(ctx context.Context, d schedule.CompanyDayOff) (schedule.CompanyDayOff, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO company_day_offs (id, country, date, name, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(country, date, name) DO UPDATE SET
			description = excluded.description`,
		d.ID, d.Country, d.Date.String(), d.Name, d.Description, fmtTime(time.Now().UTC()))
	if err != nil {
		return schedule.CompanyDayOff{}, storeErr("save day-off", err)
	}
	return d, nil
}

// DeleteDayOff removes a company day-off by id.
func (s *Store) DeleteDayOff(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM company_day_offs WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete day-off", err)
	}
	return nil
}

// =============================================================================
// OVERTIME SETTINGS (schedule.OvertimeSettingSource)
// =============================================================================

func (s *Store) OvertimeSettingFor(ctx context.Context, driverID string) (*schedule.OvertimeSetting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT driver_id, is_active, max_daily_hours, max_weekly_hours,
		       overtime_rate_per_hour, allow_weekend_overtime, allow_holiday_overtime,
		       weekend_rate_multiplier, holiday_rate_multiplier, notes, updated_at
		FROM overtime_settings WHERE driver_id = ?`, driverID)

	var (
		setting   schedule.OvertimeSetting
		decimals  [5]string
		updatedAt string
	)
	err := row.Scan(&setting.DriverID, &setting.IsActive, &decimals[0], &decimals[1],
		&decimals[2], &setting.AllowWeekendOvertime, &setting.AllowHolidayOvertime,
		&decimals[3], &decimals[4], &setting.Notes, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get overtime setting", err)
	}

	fields := []*decimal.Decimal{
		&setting.MaxDailyHours, &setting.MaxWeeklyHours, &setting.OvertimeRatePerHour,
		&setting.WeekendRateMultiplier, &setting.HolidayRateMultiplier,
	}
	for i, field := range fields {
		if *field, err = decimal.NewFromString(decimals[i]); err != nil {
			return nil, storeErr("parse overtime setting", err)
		}
	}
	setting.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &setting, nil
}

// SaveOvertimeSetting inserts or replaces a driver's overtime setting.
func (s *Store) SaveOvertimeSetting(ctx context.Context, setting schedule.OvertimeSetting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overtime_settings
			(driver_id, is_active, max_daily_hours, max_weekly_hours,
			 overtime_rate_per_hour, allow_weekend_overtime, allow_holiday_overtime,
			 weekend_rate_multiplier, holiday_rate_multiplier, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(driver_id) DO UPDATE SET
			is_active = excluded.is_active,
			max_daily_hours = excluded.max_daily_hours,
			max_weekly_hours = excluded.max_weekly_hours,
			overtime_rate_per_hour = excluded.overtime_rate_per_hour,
			allow_weekend_overtime = excluded.allow_weekend_overtime,
			allow_holiday_overtime = excluded.allow_holiday_overtime,
			weekend_rate_multiplier = excluded.weekend_rate_multiplier,
			holiday_rate_multiplier = excluded.holiday_rate_multiplier,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		setting.DriverID, setting.IsActive,
		setting.MaxDailyHours.String(), setting.MaxWeeklyHours.String(),
		setting.OvertimeRatePerHour.String(),
		setting.AllowWeekendOvertime, setting.AllowHolidayOvertime,
		setting.WeekendRateMultiplier.String(), setting.HolidayRateMultiplier.String(),
		setting.Notes, fmtTime(time.Now().UTC()))
	if err != nil {
		return storeErr("save overtime setting", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Reset clears all rows. Test and development helper.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{
		"availability_overrides", "trips", "company_day_offs", "overtime_settings", "resources",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return storeErr("reset", err)
		}
	}
	return nil
}
