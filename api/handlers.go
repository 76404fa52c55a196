/*
handlers.go - HTTP API handlers for the scheduling engine

PURPOSE:
  Exposes the availability and overtime engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Resources (kind is "drivers" or "trucks"):
    GET    /api/{kind}                               List enabled resources
    POST   /api/{kind}                               Register a resource
    GET    /api/{kind}/{id}/availability             Range status (?from&to)
    GET    /api/{kind}/{id}/availability/{date}      Single-day status (?exclude_trip)
    PUT    /api/{kind}/{id}/availability/{date}      Set override
    POST   /api/{kind}/{id}/availability/initialize  Seed calendar defaults

  Grids and listings:
    GET    /api/availability       Batch grid (?kind&from&to&search&zone&page&page_size)
    GET    /api/availability/day   Day partition (?kind&date&zone&exclude_trip)

  Drivers only:
    GET    /api/drivers/{id}/hours             Daily hours (?date&exclude_trip)
    GET    /api/drivers/{id}/overtime-setting  Read overtime terms
    PUT    /api/drivers/{id}/overtime-setting  Replace overtime terms

  Overtime:
    POST   /api/overtime/check     Classify a candidate assignment
    POST   /api/overtime/conflict  Wall-clock overlap check
    GET    /api/overtime/rank      Rank drivers (?date&hours&zone&exclude_trip)

  Trips:
    POST   /api/trips              Schedule a trip
    GET    /api/trips/{id}         Read a trip
    POST   /api/trips/{id}/cancel  Cancel a trip

  Holidays:
    GET    /api/holidays           List day-offs (?country)
    POST   /api/holidays           Register a day-off
    DELETE /api/holidays/{id}      Remove a day-off

ERROR HANDLING:
  Domain errors map to status codes through the schedule classifiers:
  - 400: invalid argument (bad dates, durations, kinds)
  - 404: unknown resource or trip
  - 409: invalid operation (overriding a weekend or holiday)
  - 503: storage unavailable
  - 500: everything else

SECURITY NOTE:
  No authentication middleware. The engine sits behind the back office's
  gateway, which owns authn/authz.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fleetops/scheduling-engine/schedule"
	"github.com/fleetops/scheduling-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Availability *schedule.Availability
	Overrides    *schedule.Overrides
	Overtime     *schedule.Overtime
	Log          *zap.Logger
}

// NewHandler creates a handler over the store and the three engine
// services. A nil logger disables handler logging.
func NewHandler(store *sqlite.Store, availability *schedule.Availability, overrides *schedule.Overrides, overtime *schedule.Overtime, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:        store,
		Availability: availability,
		Overrides:    overrides,
		Overtime:     overtime,
		Log:          log,
	}
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// listResources returns the enabled resources of one kind.
// GET /api/{kind}?zone=
func (h *Handler) listResources(kind schedule.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resources, err := h.Store.ListResources(r.Context(), kind, r.URL.Query().Get("zone"))
		if err != nil {
			writeDomainError(w, "Failed to list resources", err)
			return
		}
		dtos := make([]ResourceDTO, len(resources))
		for i, res := range resources {
			dtos[i] = toResourceDTO(res)
		}
		writeJSON(w, http.StatusOK, dtos)
	}
}

// createResource registers a driver or truck.
// POST /api/{kind}
func (h *Handler) createResource(kind schedule.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateResourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		if req.ID == "" || req.Name == "" {
			writeError(w, http.StatusBadRequest, "id and name are required", nil)
			return
		}

		res := schedule.Resource{
			ID:      req.ID,
			Kind:    kind,
			Name:    req.Name,
			Enabled: true,
			Zone:    req.Zone,
			Permit:  req.Permit,
		}
		if err := h.Store.SaveResource(r.Context(), res); err != nil {
			writeDomainError(w, "Failed to save resource", err)
			return
		}
		writeJSON(w, http.StatusCreated, toResourceDTO(res))
	}
}

// =============================================================================
// AVAILABILITY HANDLERS
// =============================================================================

// rangeStatus resolves one resource across a date range.
// GET /api/{kind}/{id}/availability?from=&to=
func (h *Handler) rangeStatus(kind schedule.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		from, to, ok := parseDateRange(w, r)
		if !ok {
			return
		}

		days, err := h.Availability.RangeStatus(r.Context(), kind, id, from, to)
		if err != nil {
			writeDomainError(w, "Failed to resolve availability", err)
			return
		}
		writeJSON(w, http.StatusOK, RangeResponse{
			ResourceID: id,
			Kind:       string(kind),
			From:       from.String(),
			To:         to.String(),
			Days:       toDecisionMap(days),
		})
	}
}

// dayStatus resolves one (resource, date).
// GET /api/{kind}/{id}/availability/{date}?exclude_trip=
func (h *Handler) dayStatus(kind schedule.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		date, err := schedule.ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		excludeTrip, ok := parseTripID(w, r.URL.Query().Get("exclude_trip"))
		if !ok {
			return
		}

		decision, err := h.Availability.DayStatus(r.Context(), kind, id, date, excludeTrip)
		if err != nil {
			writeDomainError(w, "Failed to resolve availability", err)
			return
		}
		writeJSON(w, http.StatusOK, toDecisionDTO(decision))
	}
}

// setOverride writes the availability exception for one cell.
// PUT /api/{kind}/{id}/availability/{date}
func (h *Handler) setOverride(kind schedule.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		date, err := schedule.ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		var req SetOverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		decision, err := h.Overrides.SetOverride(r.Context(), kind, id, date, req.IsAvailable, req.IsDayOff, req.Reason)
		if err != nil {
			writeDomainError(w, "Failed to set override", err)
			return
		}
		writeJSON(w, http.StatusOK, toDecisionDTO(decision))
	}
}

// initializeRange seeds calendar-default cells for the given dates.
// POST /api/{kind}/{id}/availability/initialize
func (h *Handler) initializeRange(kind schedule.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req InitializeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		dates, err := datesFromRequest(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid dates", err)
			return
		}
		if len(dates) == 0 {
			writeError(w, http.StatusBadRequest, "No dates given", nil)
			return
		}

		inserted, err := h.Overrides.InitializeRange(r.Context(), kind, id, dates)
		if err != nil {
			writeDomainError(w, "Failed to initialize availability", err)
			return
		}
		writeJSON(w, http.StatusOK, InitializeResponse{Inserted: inserted})
	}
}

// batchStatus resolves the availability grid for a filtered resource page.
// GET /api/availability?kind=&from=&to=&search=&zone=&page=&page_size=
func (h *Handler) batchStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, err := parseKind(q.Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kind", err)
		return
	}
	from, to, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	pageIndex, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	req := schedule.BatchRequest{
		Kind:      kind,
		From:      from,
		To:        to,
		Search:    q.Get("search"),
		Zone:      q.Get("zone"),
		PageIndex: pageIndex,
		PageSize:  pageSize,
	}
	result, err := h.Availability.BatchStatus(r.Context(), req)
	if err != nil {
		writeDomainError(w, "Failed to resolve availability grid", err)
		return
	}

	resp := BatchResponse{
		Data:       make([]ResourceGridDTO, len(result.Data)),
		TotalCount: result.TotalCount,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
	}
	for i, grid := range result.Data {
		resp.Data[i] = ResourceGridDTO{
			Resource:         toResourceDTO(grid.Resource),
			Days:             toDecisionMap(grid.Days),
			AvailableCount:   grid.AvailableCount,
			UnavailableCount: grid.UnavailableCount,
			DayOffCount:      grid.DayOffCount,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// dayPartition lists resources available and unavailable on one date.
// GET /api/availability/day?kind=&date=&zone=&exclude_trip=
func (h *Handler) dayPartition(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, err := parseKind(q.Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kind", err)
		return
	}
	date, err := schedule.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	excludeTrip, ok := parseTripID(w, q.Get("exclude_trip"))
	if !ok {
		return
	}

	part, err := h.Availability.ListAvailableForDate(r.Context(), kind, date, q.Get("zone"), excludeTrip)
	if err != nil {
		writeDomainError(w, "Failed to partition resources", err)
		return
	}
	writeJSON(w, http.StatusOK, DayPartitionResponse{
		Date:        date.String(),
		Kind:        string(kind),
		Available:   toResourceDecisionDTOs(part.Available),
		Unavailable: toResourceDecisionDTOs(part.Unavailable),
	})
}

// =============================================================================
// DRIVER HOURS AND OVERTIME
// =============================================================================

// driverHours returns one driver's scheduled load on a date.
// GET /api/drivers/{id}/hours?date=&exclude_trip=
func (h *Handler) driverHours(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date, err := schedule.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	excludeTrip, ok := parseTripID(w, r.URL.Query().Get("exclude_trip"))
	if !ok {
		return
	}

	hours, err := h.Overtime.DriverDailyHours(r.Context(), id, date, excludeTrip)
	if err != nil {
		writeDomainError(w, "Failed to sum driver hours", err)
		return
	}

	dto := DailyHoursDTO{
		DriverID:   hours.DriverID,
		Date:       hours.Date.String(),
		TotalHours: hours.TotalHours,
		Trips:      make([]TripDTO, len(hours.Trips)),
	}
	for i, t := range hours.Trips {
		dto.Trips[i] = toTripDTO(t)
	}
	writeJSON(w, http.StatusOK, dto)
}

// checkOvertime classifies a candidate assignment.
// POST /api/overtime/check
func (h *Handler) checkOvertime(w http.ResponseWriter, r *http.Request) {
	var req OvertimeCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	result, err := h.Overtime.CheckOvertime(r.Context(), req.DriverID, date, req.CandidateHours, req.ExcludeTripID)
	if err != nil {
		writeDomainError(w, "Failed to check overtime", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeResultDTO(*result))
}

// checkConflict performs the wall-clock overlap check.
// POST /api/overtime/conflict
func (h *Handler) checkConflict(w http.ResponseWriter, r *http.Request) {
	var req ConflictCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	start, err := schedule.ParseClockTime(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start time", err)
		return
	}

	conflict, err := h.Overtime.CheckRealTimeConflict(r.Context(), req.DriverID, date, start, req.CandidateHours, req.ExcludeTripID)
	if err != nil {
		writeDomainError(w, "Failed to check conflict", err)
		return
	}

	dto := ConflictDTO{HasConflict: conflict.HasConflict, Reason: conflict.Reason}
	if conflict.Trip != nil {
		t := toTripDTO(*conflict.Trip)
		dto.Trip = &t
	}
	writeJSON(w, http.StatusOK, dto)
}

// rankDrivers orders drivers by overtime severity for a candidate duration.
// GET /api/overtime/rank?date=&hours=&zone=&exclude_trip=
func (h *Handler) rankDrivers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := schedule.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	hours, err := decimal.NewFromString(q.Get("hours"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours", err)
		return
	}
	excludeTrip, ok := parseTripID(w, q.Get("exclude_trip"))
	if !ok {
		return
	}

	ranked, err := h.Overtime.RankDriverAvailability(r.Context(), date, hours, q.Get("zone"), excludeTrip)
	if err != nil {
		writeDomainError(w, "Failed to rank drivers", err)
		return
	}

	dtos := make([]RankedDriverDTO, len(ranked))
	for i, rd := range ranked {
		dtos[i] = RankedDriverDTO{
			Driver: toResourceDTO(rd.Driver),
			Result: toOvertimeResultDTO(rd.Result),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// getOvertimeSetting reads a driver's overtime terms.
// GET /api/drivers/{id}/overtime-setting
func (h *Handler) getOvertimeSetting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	setting, err := h.Store.OvertimeSettingFor(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to read overtime setting", err)
		return
	}
	if setting == nil {
		writeError(w, http.StatusNotFound, "No overtime setting for driver", nil)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeSettingDTO(*setting))
}

// putOvertimeSetting replaces a driver's overtime terms.
// PUT /api/drivers/{id}/overtime-setting
func (h *Handler) putOvertimeSetting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PutOvertimeSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.MaxDailyHours.IsNegative() || req.MaxWeeklyHours.IsNegative() {
		writeError(w, http.StatusBadRequest, "Hour caps must not be negative", nil)
		return
	}

	res, err := h.Store.GetResource(r.Context(), schedule.KindDriver, id)
	if err != nil {
		writeDomainError(w, "Failed to read driver", err)
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "Driver not found", nil)
		return
	}

	setting := schedule.OvertimeSetting{
		DriverID:              id,
		IsActive:              req.IsActive,
		MaxDailyHours:         req.MaxDailyHours,
		MaxWeeklyHours:        req.MaxWeeklyHours,
		OvertimeRatePerHour:   req.OvertimeRatePerHour,
		AllowWeekendOvertime:  req.AllowWeekendOvertime,
		AllowHolidayOvertime:  req.AllowHolidayOvertime,
		WeekendRateMultiplier: req.WeekendRateMultiplier,
		HolidayRateMultiplier: req.HolidayRateMultiplier,
		Notes:                 req.Notes,
	}
	if err := h.Store.SaveOvertimeSetting(r.Context(), setting); err != nil {
		writeDomainError(w, "Failed to save overtime setting", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeSettingDTO(setting))
}

// =============================================================================
// TRIP HANDLERS
// =============================================================================

// createTrip schedules a trip.
// POST /api/trips
func (h *Handler) createTrip(w http.ResponseWriter, r *http.Request) {
	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DriverID == "" {
		writeError(w, http.StatusBadRequest, "driver_id is required", nil)
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	start, err := schedule.ParseClockTime(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start time", err)
		return
	}
	if !req.DurationHours.IsPositive() {
		writeError(w, http.StatusBadRequest, "duration_hours must be positive", nil)
		return
	}

	trip := schedule.Trip{
		Reference:     req.Reference,
		DriverID:      req.DriverID,
		TruckID:       req.TruckID,
		Date:          date,
		Start:         start,
		DurationHours: req.DurationHours,
		Status:        schedule.TripPlanned,
	}
	id, err := h.Store.SaveTrip(r.Context(), trip)
	if err != nil {
		writeDomainError(w, "Failed to save trip", err)
		return
	}
	trip.ID = id
	writeJSON(w, http.StatusCreated, toTripDTO(trip))
}

// getTrip reads one trip.
// GET /api/trips/{id}
func (h *Handler) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trip id", err)
		return
	}
	trip, err := h.Store.GetTrip(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to read trip", err)
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "Trip not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(*trip))
}

// cancelTrip marks a trip cancelled, removing it from availability and
// hour aggregation.
// POST /api/trips/{id}/cancel
func (h *Handler) cancelTrip(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trip id", err)
		return
	}
	if err := h.Store.UpdateTripStatus(r.Context(), id, schedule.TripCancelled); err != nil {
		writeDomainError(w, "Failed to cancel trip", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(schedule.TripCancelled)})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// listHolidays returns registered day-offs.
// GET /api/holidays?country=
func (h *Handler) listHolidays(w http.ResponseWriter, r *http.Request) {
	dayOffs, err := h.Store.ListDayOffs(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		writeDomainError(w, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, len(dayOffs))
	for i, d := range dayOffs {
		dtos[i] = toHolidayDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// createHoliday registers a company day-off.
// POST /api/holidays
func (h *Handler) createHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	saved, err := h.Store.SaveDayOff(r.Context(), schedule.CompanyDayOff{
		Country:     req.Country,
		Date:        date,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(saved))
}

// deleteHoliday removes a company day-off.
// DELETE /api/holidays/{id}
func (h *Handler) deleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteDayOff(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reset clears all data. Development helper, not wired in production.
// POST /api/reset
func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeDomainError(w, "Failed to reset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps classified domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case schedule.IsInvalidArgument(err):
		status = http.StatusBadRequest
	case schedule.IsNotFound(err):
		status = http.StatusNotFound
	case schedule.IsInvalidOperation(err):
		status = http.StatusConflict
	case schedule.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, message, err)
}

func parseKind(s string) (schedule.ResourceKind, error) {
	switch s {
	case "driver", "drivers":
		return schedule.KindDriver, nil
	case "truck", "trucks":
		return schedule.KindTruck, nil
	default:
		return "", &kindError{given: s}
	}
}

type kindError struct{ given string }

func (e *kindError) Error() string {
	return "unknown resource kind " + strconv.Quote(e.given) + ", want drivers or trucks"
}

func parseDateRange(w http.ResponseWriter, r *http.Request) (schedule.Date, schedule.Date, bool) {
	from, err := schedule.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return schedule.Date{}, schedule.Date{}, false
	}
	to, err := schedule.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return schedule.Date{}, schedule.Date{}, false
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "Range end before start", nil)
		return schedule.Date{}, schedule.Date{}, false
	}
	return from, to, true
}

func parseTripID(w http.ResponseWriter, s string) (int64, bool) {
	if s == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trip id", err)
		return 0, false
	}
	return id, true
}

func datesFromRequest(req InitializeRequest) ([]schedule.Date, error) {
	if len(req.Dates) > 0 {
		dates := make([]schedule.Date, len(req.Dates))
		for i, s := range req.Dates {
			d, err := schedule.ParseDate(s)
			if err != nil {
				return nil, err
			}
			dates[i] = d
		}
		return dates, nil
	}
	if req.From == "" && req.To == "" {
		return nil, nil
	}
	from, err := schedule.ParseDate(req.From)
	if err != nil {
		return nil, err
	}
	to, err := schedule.ParseDate(req.To)
	if err != nil {
		return nil, err
	}
	return schedule.DatesBetween(from, to)
}
