package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
	"github.com/eugenenazirov/humidifier-sizer/internal/metrics"
	"github.com/eugenenazirov/humidifier-sizer/internal/storage"
	"github.com/eugenenazirov/humidifier-sizer/internal/validation"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultSweepSteps = 11

// Handler wires calculator and storage dependencies into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	storage    storage.Storage
	metrics    *metrics.Metrics
	logger     *zap.Logger

	clock func() time.Time

	mu                sync.RWMutex
	defaultsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics records calculations and validation failures on m.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithLogger sets the logger used for per-calculation debug output.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc calculator.Calculator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		calculator: calc,
		storage:    store,
		logger:     zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.defaultsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	_ = r
	d, err := h.storage.GetDefaults()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newDefaultsResponse(d, h.currentDefaultsUpdatedAt(), ""))
}

func (h *Handler) handlePutDefaults(w http.ResponseWriter, r *http.Request) {
	var req defaultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	current, err := h.storage.GetDefaults()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if err := h.storage.SetDefaults(req.merge(current)); err != nil {
		if errors.Is(err, storage.ErrInvalidDefaults) {
			h.metrics.ObserveValidationFailure()
			writeValidationError(w, "Invalid defaults", err)
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markDefaultsUpdated()

	updated, err := h.storage.GetDefaults()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newDefaultsResponse(updated, h.currentDefaultsUpdatedAt(), "Defaults updated successfully"))
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	in, ok := h.resolveInput(w, req)
	if !ok {
		return
	}

	start := time.Now()
	breakdown := h.calculator.Explain(in)
	elapsed := time.Since(start)

	h.metrics.ObserveCalculation(breakdown)
	h.logger.Debug("calculation completed",
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.Float64("area", in.Area),
		zap.Float64("target_humidity", in.TargetHumidity),
		zap.Float64("room_temperature", in.RoomTemperature),
		zap.Int("capacity_ml_per_hour", breakdown.Result.RequiredHumidificationCapacity),
		zap.Float64("tank_litres", breakdown.Result.RequiredTankCapacity),
		zap.String("dominant", string(breakdown.Dominant)),
	)

	resp := calculateResponse{
		RequiredHumidificationCapacity: breakdown.Result.RequiredHumidificationCapacity,
		RequiredTankCapacity:           breakdown.Result.RequiredTankCapacity,
		Input:                          newInputPayload(in),
		Breakdown:                      newBreakdownPayload(breakdown),
		CalculationTimeMs:              elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.Steps == 0 {
		req.Steps = defaultSweepSteps
	}
	if req.TargetHumidity == nil {
		req.TargetHumidity = &req.From
	}

	var rangeErrs validation.Errors
	if !(req.From >= 0 && req.From <= 100) {
		rangeErrs = append(rangeErrs, validation.FieldError{Field: "from", Message: "from must be between 0 and 100 percent"})
	}
	if !(req.To >= 0 && req.To <= 100) {
		rangeErrs = append(rangeErrs, validation.FieldError{Field: "to", Message: "to must be between 0 and 100 percent"})
	}
	if len(rangeErrs) > 0 {
		h.metrics.ObserveValidationFailure()
		writeValidationError(w, "Invalid sweep", rangeErrs)
		return
	}

	in, ok := h.resolveInput(w, req.calculateRequest)
	if !ok {
		return
	}

	points, err := h.calculator.Sweep(in, req.From, req.To, req.Steps)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidSweep) {
			writeError(w, http.StatusBadRequest, "Invalid sweep", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	resp := sweepResponse{
		Input:  newInputPayload(in),
		Points: make([]sweepPointPayload, 0, len(points)),
	}
	for _, p := range points {
		resp.Points = append(resp.Points, sweepPointPayload{
			TargetHumidity:                 p.TargetHumidity,
			RequiredHumidificationCapacity: p.Result.RequiredHumidificationCapacity,
			RequiredTankCapacity:           p.Result.RequiredTankCapacity,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolveInput fills omitted optional fields from storage and validates the
// result. On failure it writes the response itself and returns false.
func (h *Handler) resolveInput(w http.ResponseWriter, req calculateRequest) (calculator.Input, bool) {
	if missing := req.missingRequired(); len(missing) > 0 {
		h.metrics.ObserveValidationFailure()
		writeValidationError(w, "Invalid request", missing)
		return calculator.Input{}, false
	}

	defaults, err := h.storage.GetDefaults()
	if err != nil {
		writeInternalError(w, err)
		return calculator.Input{}, false
	}

	in := req.toInput(defaults)
	if err := validation.Validate(in); err != nil {
		h.metrics.ObserveValidationFailure()
		writeValidationError(w, "Invalid request", err)
		return calculator.Input{}, false
	}
	return in, true
}

func (h *Handler) currentDefaultsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaultsUpdatedAt
}

func (h *Handler) markDefaultsUpdated() {
	h.mu.Lock()
	h.defaultsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type errorResponse struct {
	Error      string            `json:"error"`
	Details    string            `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

const encodeFailureBody = `{"error":"Internal error","details":"unable to encode response"}` + "\n"

// writeJSON encodes before writing the status so that an unencodable payload
// turns into a 500 instead of a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailureBody))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, message string, err error) {
	resp := errorResponse{
		Error:   message,
		Details: err.Error(),
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		resp.Fields = fieldErrs.Fields()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
