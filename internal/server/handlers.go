package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"parking-engine/internal/logging"
	"parking-engine/internal/parking"
)

const lotNotCreated = "Parking lot not created. Create parking lot first"

type Handler struct {
	parkingLot  *parking.InstrumentedParkingLot
	mu          sync.RWMutex
	telemetry   *parking.TelemetryProvider
	recorder    parking.Recorder
	serviceName string
	lotOptions  []parking.Option
}

// NewHandler serves the parking API. The options are applied to every lot
// created through POST /api/parking-lot.
func NewHandler(serviceName string, telemetry *parking.TelemetryProvider, recorder parking.Recorder, opts ...parking.Option) *Handler {
	return &Handler{
		telemetry:   telemetry,
		recorder:    recorder,
		serviceName: serviceName,
		lotOptions:  opts,
	}
}

// UseParkingLot installs a lot so the API is usable without a create call.
func (h *Handler) UseParkingLot(lot *parking.InstrumentedParkingLot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parkingLot = lot
}

func (h *Handler) swapParkingLot(lot *parking.InstrumentedParkingLot) *parking.InstrumentedParkingLot {
	h.mu.Lock()
	defer h.mu.Unlock()
	previous := h.parkingLot
	h.parkingLot = lot
	return previous
}

func (h *Handler) lot(w http.ResponseWriter, r *http.Request) (*parking.InstrumentedParkingLot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.parkingLot == nil {
		WriteError(r.Context(), w, http.StatusBadRequest, lotNotCreated)
		return nil, false
	}
	return h.parkingLot, true
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateParkingLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkingLotCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Levels <= 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Levels must be greater than 0")
		return
	}
	if req.SpotsPerLevel < 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Spots per level must not be negative")
		return
	}

	lot, err := parking.NewParkingLot(req.Levels, req.SpotsPerLevel, h.lotOptions...)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	parkingLot, err := parking.NewInstrumentedParkingLot(lot, h.telemetry, h.recorder)
	if err != nil {
		logging.Error(ctx).Err(err).Msg("failed to instrument parking lot")
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create parking lot")
		return
	}

	if previous := h.swapParkingLot(parkingLot); previous != nil {
		previous.Retire(ctx)
	}
	logging.Info(ctx).Int("levels", req.Levels).Int("spots_per_level", req.SpotsPerLevel).Int("capacity", lot.Capacity()).Msg("parking lot created")

	WriteSuccess(ctx, w, "Parking lot created successfully", ParkingLotCreateResponse{
		Levels:        req.Levels,
		SpotsPerLevel: req.SpotsPerLevel,
		Capacity:      lot.Capacity(),
	})
}

func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Plate == "" || req.VehicleType == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate and vehicle type are required")
		return
	}

	vehicleType, err := parking.ParseVehicleType(req.VehicleType)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := parkingLot.Entry(ctx, req.Plate, vehicleType)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", EntryResponse{
		TicketID:  receipt.TicketID,
		VehicleID: receipt.VehicleID,
		SpotID:    receipt.SpotID,
		SpotType:  string(receipt.SpotType),
		Location:  receipt.Location,
		EntryTime: receipt.EntryTime,
	})
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	req, ok := decodeTicketRequest(w, r)
	if !ok {
		return
	}

	amount, err := parkingLot.Pay(ctx, req.TicketID)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Ticket paid successfully", PaymentResponse{
		TicketID: req.TicketID,
		Amount:   amount,
	})
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	req, ok := decodeTicketRequest(w, r)
	if !ok {
		return
	}

	if err := parkingLot.Exit(ctx, req.TicketID); err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle exited successfully", map[string]any{
		"ticket_id": req.TicketID,
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	status := parkingLot.Status(ctx)
	WriteSuccess(ctx, w, "Status retrieved successfully", newStatusResponse(status))
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	vehicleType, err := parking.ParseVehicleType(query.Get("vehicle_type"))
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	preference := query.Get("preference")
	if preference == "" {
		preference = parking.PreferenceClosest
	}

	spotID, found := parkingLot.Recommend(ctx, vehicleType, preference)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "No suitable spot")
		return
	}

	WriteSuccess(ctx, w, "Spot recommended", RecommendResponse{
		VehicleType: string(vehicleType),
		Preference:  preference,
		SpotID:      spotID,
	})
}

func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	hours := 1.0
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			WriteError(ctx, w, http.StatusBadRequest, "Hours must be a non-negative number")
			return
		}
		hours = parsed
	}

	WriteSuccess(ctx, w, "Occupancy forecast", ForecastResponse{
		HoursAhead:             hours,
		PredictedOccupancyRate: parkingLot.Forecast(ctx, hours),
	})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	ticket, found := parkingLot.Ticket(ticketID)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "Ticket not found")
		return
	}

	resp := TicketResponse{
		TicketID:    ticket.ID,
		VehicleID:   ticket.VehicleID,
		EntryTime:   ticket.EntryTime,
		Paid:        ticket.Paid,
		AmountPaid:  ticket.AmountPaid,
		PaymentTime: optionalTime(ticket.PaymentTime),
		ExitTime:    optionalTime(ticket.ExitTime),
	}
	if vehicle, ok := parkingLot.Vehicle(ticket.VehicleID); ok {
		resp.Plate = vehicle.Plate
		resp.VehicleType = string(vehicle.Type)
		resp.SpotID = vehicle.SpotID
	}
	if !ticket.Paid {
		due, err := parkingLot.Quote(ctx, ticketID)
		if err != nil {
			WriteError(ctx, w, statusFor(err), err.Error())
			return
		}
		resp.AmountDue = due
	}

	WriteSuccess(ctx, w, "Ticket retrieved successfully", resp)
}

func (h *Handler) FindByPlate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot, ok := h.lot(w, r)
	if !ok {
		return
	}

	plate := chi.URLParam(r, "plate")
	if plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	vehicles := parkingLot.ParkedByPlate(ctx, plate)
	if len(vehicles) == 0 {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	found := make([]FindVehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		found = append(found, FindVehicleResponse{
			VehicleID:   v.ID,
			Plate:       v.Plate,
			VehicleType: string(v.Type),
			SpotID:      v.SpotID,
			EntryTime:   v.EntryTime,
		})
	}

	WriteSuccess(ctx, w, "Vehicle found", found)
}

func decodeTicketRequest(w http.ResponseWriter, r *http.Request) (TicketRequest, bool) {
	var req TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.TicketID == "" {
		WriteError(r.Context(), w, http.StatusBadRequest, "Ticket id is required")
		return req, false
	}
	return req, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrNoSpotAvailable),
		errors.Is(err, parking.ErrAlreadyPaid),
		errors.Is(err, parking.ErrAlreadyFree),
		errors.Is(err, parking.ErrAlreadyOccupied):
		return http.StatusConflict
	case errors.Is(err, parking.ErrUnknownTicket),
		errors.Is(err, parking.ErrUnknownVehicle),
		errors.Is(err, parking.ErrUnknownSpot):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrNotYetPaid):
		return http.StatusPaymentRequired
	case errors.Is(err, parking.ErrUnknownVehicleType),
		errors.Is(err, parking.ErrInvalidLayout):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
