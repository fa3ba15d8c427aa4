package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-engine/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkingLotCreateRequest struct {
	Levels        int `json:"levels"`
	SpotsPerLevel int `json:"spots_per_level"`
}

type ParkingLotCreateResponse struct {
	Levels        int `json:"levels"`
	SpotsPerLevel int `json:"spots_per_level"`
	Capacity      int `json:"capacity"`
}

type EntryRequest struct {
	Plate       string `json:"plate"`
	VehicleType string `json:"vehicle_type"`
}

type EntryResponse struct {
	TicketID  string    `json:"ticket_id"`
	VehicleID string    `json:"vehicle_id"`
	SpotID    string    `json:"spot_id"`
	SpotType  string    `json:"spot_type"`
	Location  string    `json:"location"`
	EntryTime time.Time `json:"entry_time"`
}

type TicketRequest struct {
	TicketID string `json:"ticket_id"`
}

type PaymentResponse struct {
	TicketID string  `json:"ticket_id"`
	Amount   float64 `json:"amount"`
}

type TicketResponse struct {
	TicketID    string     `json:"ticket_id"`
	VehicleID   string     `json:"vehicle_id"`
	Plate       string     `json:"plate,omitempty"`
	VehicleType string     `json:"vehicle_type,omitempty"`
	SpotID      string     `json:"spot_id,omitempty"`
	EntryTime   time.Time  `json:"entry_time"`
	Paid        bool       `json:"paid"`
	AmountPaid  float64    `json:"amount_paid,omitempty"`
	AmountDue   float64    `json:"amount_due"`
	PaymentTime *time.Time `json:"payment_time,omitempty"`
	ExitTime    *time.Time `json:"exit_time,omitempty"`
}

type Counts struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

type StatusResponse struct {
	TotalSpots     int               `json:"total_spots"`
	OccupiedSpots  int               `json:"occupied_spots"`
	AvailableSpots int               `json:"available_spots"`
	OccupancyRate  float64           `json:"occupancy_rate"`
	ByType         map[string]Counts `json:"by_type"`
	ByLevel        map[int]Counts    `json:"by_level"`
	TotalRevenue   float64           `json:"total_revenue"`
	Timestamp      time.Time         `json:"timestamp"`
}

type RecommendResponse struct {
	VehicleType string `json:"vehicle_type"`
	Preference  string `json:"preference"`
	SpotID      string `json:"spot_id"`
}

type ForecastResponse struct {
	HoursAhead             float64 `json:"hours_ahead"`
	PredictedOccupancyRate float64 `json:"predicted_occupancy_rate"`
}

type FindVehicleResponse struct {
	VehicleID   string    `json:"vehicle_id"`
	Plate       string    `json:"plate"`
	VehicleType string    `json:"vehicle_type"`
	SpotID      string    `json:"spot_id"`
	EntryTime   time.Time `json:"entry_time"`
}

func newStatusResponse(s parking.Status) StatusResponse {
	resp := StatusResponse{
		TotalSpots:     s.TotalSpots,
		OccupiedSpots:  s.OccupiedSpots,
		AvailableSpots: s.AvailableSpots,
		OccupancyRate:  s.OccupancyRate,
		ByType:         make(map[string]Counts, len(s.ByType)),
		ByLevel:        make(map[int]Counts, len(s.ByLevel)),
		TotalRevenue:   s.TotalRevenue,
		Timestamp:      s.Timestamp,
	}
	for st, c := range s.ByType {
		resp.ByType[string(st)] = Counts(c)
	}
	for level, c := range s.ByLevel {
		resp.ByLevel[level] = Counts(c)
	}
	return resp
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
