/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DATES AND HOURS:
  Dates travel as "YYYY-MM-DD" strings, clock times as "HH:MM". Hour
  figures are decimal.Decimal and marshal as JSON strings, which keeps
  two-decimal-place amounts exact on the wire.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - schedule/types.go: The domain model these project
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetops/scheduling-engine/schedule"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// RESOURCES
// =============================================================================

// ResourceDTO represents a driver or truck in API responses.
type ResourceDTO struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Zone    string `json:"zone,omitempty"`
	Permit  string `json:"permit,omitempty"`
}

// CreateResourceRequest is the request to register a driver or truck.
type CreateResourceRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Zone   string `json:"zone"`
	Permit string `json:"permit"`
}

func toResourceDTO(r schedule.Resource) ResourceDTO {
	return ResourceDTO{
		ID:      r.ID,
		Kind:    string(r.Kind),
		Name:    r.Name,
		Enabled: r.Enabled,
		Zone:    r.Zone,
		Permit:  r.Permit,
	}
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// DecisionDTO is the resolved status of one (resource, date).
type DecisionDTO struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Available  bool   `json:"available"`
	IsDayOff   bool   `json:"is_day_off"`
	Reason     string `json:"reason"`
}

func toDecisionDTO(d schedule.Decision) DecisionDTO {
	return DecisionDTO{
		ResourceID: d.ResourceID,
		Date:       d.Date.String(),
		Available:  d.Available,
		IsDayOff:   d.IsDayOff,
		Reason:     d.Reason,
	}
}

func toDecisionMap(days map[schedule.Date]schedule.Decision) map[string]DecisionDTO {
	out := make(map[string]DecisionDTO, len(days))
	for date, d := range days {
		out[date.String()] = toDecisionDTO(d)
	}
	return out
}

// RangeResponse is one resource's availability across a date range.
type RangeResponse struct {
	ResourceID string                 `json:"resource_id"`
	Kind       string                 `json:"kind"`
	From       string                 `json:"from"`
	To         string                 `json:"to"`
	Days       map[string]DecisionDTO `json:"days"`
}

// ResourceGridDTO is one row of the availability grid.
type ResourceGridDTO struct {
	Resource         ResourceDTO            `json:"resource"`
	Days             map[string]DecisionDTO `json:"days"`
	AvailableCount   int                    `json:"available_count"`
	UnavailableCount int                    `json:"unavailable_count"`
	DayOffCount      int                    `json:"day_off_count"`
}

// BatchResponse is a page of availability grids.
type BatchResponse struct {
	Data       []ResourceGridDTO `json:"data"`
	TotalCount int               `json:"total_count"`
	PageIndex  int               `json:"page_index"`
	PageSize   int               `json:"page_size"`
}

// ResourceDecisionDTO pairs a resource with its day decision.
type ResourceDecisionDTO struct {
	Resource ResourceDTO `json:"resource"`
	Decision DecisionDTO `json:"decision"`
}

// DayPartitionResponse splits a resource set by availability on one date.
type DayPartitionResponse struct {
	Date        string                `json:"date"`
	Kind        string                `json:"kind"`
	Available   []ResourceDecisionDTO `json:"available"`
	Unavailable []ResourceDecisionDTO `json:"unavailable"`
}

func toResourceDecisionDTOs(list []schedule.ResourceDecision) []ResourceDecisionDTO {
	out := make([]ResourceDecisionDTO, len(list))
	for i, rd := range list {
		out[i] = ResourceDecisionDTO{
			Resource: toResourceDTO(rd.Resource),
			Decision: toDecisionDTO(rd.Decision),
		}
	}
	return out
}

// SetOverrideRequest marks one (resource, date) cell.
type SetOverrideRequest struct {
	IsAvailable bool   `json:"is_available"`
	IsDayOff    bool   `json:"is_day_off"`
	Reason      string `json:"reason"`
}

// InitializeRequest seeds calendar-default cells for a set of dates.
// Either an explicit date list or a from/to range may be given.
type InitializeRequest struct {
	Dates []string `json:"dates,omitempty"`
	From  string   `json:"from,omitempty"`
	To    string   `json:"to,omitempty"`
}

// InitializeResponse reports how many cells were newly created.
type InitializeResponse struct {
	Inserted int `json:"inserted"`
}

// =============================================================================
// TRIPS AND HOURS
// =============================================================================

// TripDTO represents a trip in API responses.
type TripDTO struct {
	ID            int64           `json:"id"`
	Reference     string          `json:"reference,omitempty"`
	DriverID      string          `json:"driver_id"`
	TruckID       string          `json:"truck_id,omitempty"`
	Date          string          `json:"date"`
	Start         string          `json:"start"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	Status        string          `json:"status"`
}

// CreateTripRequest is the request to schedule a trip.
type CreateTripRequest struct {
	Reference     string          `json:"reference"`
	DriverID      string          `json:"driver_id"`
	TruckID       string          `json:"truck_id"`
	Date          string          `json:"date"`
	Start         string          `json:"start"`
	DurationHours decimal.Decimal `json:"duration_hours"`
}

func toTripDTO(t schedule.Trip) TripDTO {
	return TripDTO{
		ID:            t.ID,
		Reference:     t.Reference,
		DriverID:      t.DriverID,
		TruckID:       t.TruckID,
		Date:          t.Date.String(),
		Start:         t.Start.String(),
		DurationHours: t.DurationHours,
		Status:        string(t.Status),
	}
}

// DailyHoursDTO is a driver's scheduled load on one date.
type DailyHoursDTO struct {
	DriverID   string          `json:"driver_id"`
	Date       string          `json:"date"`
	TotalHours decimal.Decimal `json:"total_hours"`
	Trips      []TripDTO       `json:"trips"`
}

// =============================================================================
// OVERTIME
// =============================================================================

// OvertimeCheckRequest asks how a candidate assignment classifies.
type OvertimeCheckRequest struct {
	DriverID       string          `json:"driver_id"`
	Date           string          `json:"date"`
	CandidateHours decimal.Decimal `json:"candidate_hours"`
	ExcludeTripID  int64           `json:"exclude_trip_id,omitempty"`
}

// OvertimeResultDTO reports the classification of a candidate assignment.
type OvertimeResultDTO struct {
	DriverID string `json:"driver_id"`
	Date     string `json:"date"`

	Status           string `json:"status"`
	Available        bool   `json:"available"`
	RequiresApproval bool   `json:"requires_approval"`

	MaxDailyHours  decimal.Decimal `json:"max_daily_hours"`
	MaxTotalHours  decimal.Decimal `json:"max_total_hours"`
	ExistingHours  decimal.Decimal `json:"existing_hours"`
	CandidateHours decimal.Decimal `json:"candidate_hours"`
	NewTotalHours  decimal.Decimal `json:"new_total_hours"`

	NewOvertimeHours       decimal.Decimal `json:"new_overtime_hours"`
	RemainingNormalHours   decimal.Decimal `json:"remaining_normal_hours"`
	RemainingOvertimeHours decimal.Decimal `json:"remaining_overtime_hours"`

	WeekHours      decimal.Decimal `json:"week_hours"`
	MaxWeeklyHours decimal.Decimal `json:"max_weekly_hours"`
}

func toOvertimeResultDTO(res schedule.OvertimeResult) OvertimeResultDTO {
	return OvertimeResultDTO{
		DriverID:               res.DriverID,
		Date:                   res.Date.String(),
		Status:                 string(res.Status),
		Available:              res.Available,
		RequiresApproval:       res.RequiresApproval,
		MaxDailyHours:          res.MaxDailyHours,
		MaxTotalHours:          res.MaxTotalHours,
		ExistingHours:          res.ExistingHours,
		CandidateHours:         res.CandidateHours,
		NewTotalHours:          res.NewTotalHours,
		NewOvertimeHours:       res.NewOvertimeHours,
		RemainingNormalHours:   res.RemainingNormalHours,
		RemainingOvertimeHours: res.RemainingOvertimeHours,
		WeekHours:              res.WeekHours,
		MaxWeeklyHours:         res.MaxWeeklyHours,
	}
}

// ConflictCheckRequest asks whether a candidate window overlaps an
// existing trip on the driver's day.
type ConflictCheckRequest struct {
	DriverID       string          `json:"driver_id"`
	Date           string          `json:"date"`
	Start          string          `json:"start"`
	CandidateHours decimal.Decimal `json:"candidate_hours"`
	ExcludeTripID  int64           `json:"exclude_trip_id,omitempty"`
}

// ConflictDTO reports a wall-clock overlap.
type ConflictDTO struct {
	HasConflict bool     `json:"has_conflict"`
	Reason      string   `json:"reason,omitempty"`
	Trip        *TripDTO `json:"trip,omitempty"`
}

// RankedDriverDTO is one entry of the driver ranking.
type RankedDriverDTO struct {
	Driver ResourceDTO       `json:"driver"`
	Result OvertimeResultDTO `json:"result"`
}

// OvertimeSettingDTO represents a driver's overtime terms.
type OvertimeSettingDTO struct {
	DriverID              string          `json:"driver_id"`
	IsActive              bool            `json:"is_active"`
	MaxDailyHours         decimal.Decimal `json:"max_daily_hours"`
	MaxWeeklyHours        decimal.Decimal `json:"max_weekly_hours"`
	OvertimeRatePerHour   decimal.Decimal `json:"overtime_rate_per_hour"`
	AllowWeekendOvertime  bool            `json:"allow_weekend_overtime"`
	AllowHolidayOvertime  bool            `json:"allow_holiday_overtime"`
	WeekendRateMultiplier decimal.Decimal `json:"weekend_rate_multiplier"`
	HolidayRateMultiplier decimal.Decimal `json:"holiday_rate_multiplier"`
	Notes                 string          `json:"notes,omitempty"`
	UpdatedAt             string          `json:"updated_at,omitempty"`
}

// PutOvertimeSettingRequest replaces a driver's overtime terms.
type PutOvertimeSettingRequest struct {
	IsActive              bool            `json:"is_active"`
	MaxDailyHours         decimal.Decimal `json:"max_daily_hours"`
	MaxWeeklyHours        decimal.Decimal `json:"max_weekly_hours"`
	OvertimeRatePerHour   decimal.Decimal `json:"overtime_rate_per_hour"`
	AllowWeekendOvertime  bool            `json:"allow_weekend_overtime"`
	AllowHolidayOvertime  bool            `json:"allow_holiday_overtime"`
	WeekendRateMultiplier decimal.Decimal `json:"weekend_rate_multiplier"`
	HolidayRateMultiplier decimal.Decimal `json:"holiday_rate_multiplier"`
	Notes                 string          `json:"notes"`
}

func toOvertimeSettingDTO(s schedule.OvertimeSetting) OvertimeSettingDTO {
	dto := OvertimeSettingDTO{
		DriverID:              s.DriverID,
		IsActive:              s.IsActive,
		MaxDailyHours:         s.MaxDailyHours,
		MaxWeeklyHours:        s.MaxWeeklyHours,
		OvertimeRatePerHour:   s.OvertimeRatePerHour,
		AllowWeekendOvertime:  s.AllowWeekendOvertime,
		AllowHolidayOvertime:  s.AllowHolidayOvertime,
		WeekendRateMultiplier: s.WeekendRateMultiplier,
		HolidayRateMultiplier: s.HolidayRateMultiplier,
		Notes:                 s.Notes,
	}
	if !s.UpdatedAt.IsZero() {
		dto.UpdatedAt = s.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a company day-off.
type HolidayDTO struct {
	ID          string `json:"id"`
	Country     string `json:"country,omitempty"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateHolidayRequest registers a company day-off.
type CreateHolidayRequest struct {
	Country     string `json:"country"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toHolidayDTO(d schedule.CompanyDayOff) HolidayDTO {
	return HolidayDTO{
		ID:          d.ID,
		Country:     d.Country,
		Date:        d.Date.String(),
		Name:        d.Name,
		Description: d.Description,
	}
}
