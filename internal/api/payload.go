package api

import (
	"time"

	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
	"github.com/eugenenazirov/humidifier-sizer/internal/storage"
	"github.com/eugenenazirov/humidifier-sizer/internal/validation"
)

// calculateRequest uses pointers so omitted fields can be told apart from zero.
type calculateRequest struct {
	Area                     *float64 `json:"area"`
	TargetHumidity           *float64 `json:"targetHumidity"`
	RoomTemperature          *float64 `json:"roomTemperature"`
	ContinuousOperationHours *float64 `json:"continuousOperationHours"`
	CeilingHeight            *float64 `json:"ceilingHeight"`
	VentilationRate          *float64 `json:"ventilationRate"`
	InitialHumidity          *float64 `json:"initialHumidity"`
}

func (r calculateRequest) missingRequired() validation.Errors {
	var errs validation.Errors
	if r.Area == nil {
		errs = append(errs, validation.FieldError{Field: "area", Message: "area is required"})
	}
	if r.TargetHumidity == nil {
		errs = append(errs, validation.FieldError{Field: "targetHumidity", Message: "targetHumidity is required"})
	}
	if r.RoomTemperature == nil {
		errs = append(errs, validation.FieldError{Field: "roomTemperature", Message: "roomTemperature is required"})
	}
	return errs
}

// toInput assumes missingRequired reported nothing.
func (r calculateRequest) toInput(d storage.Defaults) calculator.Input {
	in := d.Apply(*r.Area, *r.TargetHumidity, *r.RoomTemperature)
	if r.ContinuousOperationHours != nil {
		in.ContinuousOperationHours = *r.ContinuousOperationHours
	}
	if r.CeilingHeight != nil {
		in.CeilingHeight = *r.CeilingHeight
	}
	if r.VentilationRate != nil {
		in.VentilationRate = *r.VentilationRate
	}
	if r.InitialHumidity != nil {
		in.InitialHumidity = *r.InitialHumidity
	}
	return in
}

type sweepRequest struct {
	calculateRequest
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Steps int     `json:"steps"`
}

type defaultsRequest struct {
	ContinuousOperationHours *float64 `json:"continuousOperationHours"`
	CeilingHeight            *float64 `json:"ceilingHeight"`
	VentilationRate          *float64 `json:"ventilationRate"`
	InitialHumidity          *float64 `json:"initialHumidity"`
}

func (r defaultsRequest) merge(current storage.Defaults) storage.Defaults {
	if r.ContinuousOperationHours != nil {
		current.ContinuousOperationHours = *r.ContinuousOperationHours
	}
	if r.CeilingHeight != nil {
		current.CeilingHeight = *r.CeilingHeight
	}
	if r.VentilationRate != nil {
		current.VentilationRate = *r.VentilationRate
	}
	if r.InitialHumidity != nil {
		current.InitialHumidity = *r.InitialHumidity
	}
	return current
}

type inputPayload struct {
	Area                     float64 `json:"area"`
	TargetHumidity           float64 `json:"targetHumidity"`
	RoomTemperature          float64 `json:"roomTemperature"`
	ContinuousOperationHours float64 `json:"continuousOperationHours"`
	CeilingHeight            float64 `json:"ceilingHeight"`
	VentilationRate          float64 `json:"ventilationRate"`
	InitialHumidity          float64 `json:"initialHumidity"`
}

func newInputPayload(in calculator.Input) inputPayload {
	return inputPayload(in)
}

type breakdownPayload struct {
	RoomVolume           float64 `json:"roomVolume"`
	VaporDensity         float64 `json:"saturatedVaporDensity"`
	TargetMoisture       float64 `json:"targetMoisture"`
	InitialMoisture      float64 `json:"initialMoisture"`
	DeficitMoisture      float64 `json:"deficitMoisture"`
	VentilationVolume    float64 `json:"ventilationVolume"`
	VentilationLoss      float64 `json:"ventilationLoss"`
	RequiredGramsPerHour float64 `json:"requiredGramsPerHour"`
	Dominant             string  `json:"dominant"`
}

func newBreakdownPayload(b calculator.Breakdown) breakdownPayload {
	return breakdownPayload{
		RoomVolume:           b.RoomVolume,
		VaporDensity:         b.VaporDensity,
		TargetMoisture:       b.TargetMoisture,
		InitialMoisture:      b.InitialMoisture,
		DeficitMoisture:      b.DeficitMoisture,
		VentilationVolume:    b.VentilationVolume,
		VentilationLoss:      b.VentilationLoss,
		RequiredGramsPerHour: b.RequiredGramsPerHour,
		Dominant:             string(b.Dominant),
	}
}

type calculateResponse struct {
	RequiredHumidificationCapacity int              `json:"requiredHumidificationCapacity"`
	RequiredTankCapacity           float64          `json:"requiredTankCapacity"`
	Input                          inputPayload     `json:"input"`
	Breakdown                      breakdownPayload `json:"breakdown"`
	CalculationTimeMs              int64            `json:"calculationTimeMs"`
}

type sweepPointPayload struct {
	TargetHumidity                 float64 `json:"targetHumidity"`
	RequiredHumidificationCapacity int     `json:"requiredHumidificationCapacity"`
	RequiredTankCapacity           float64 `json:"requiredTankCapacity"`
}

type sweepResponse struct {
	Input  inputPayload        `json:"input"`
	Points []sweepPointPayload `json:"points"`
}

type defaultsResponse struct {
	ContinuousOperationHours float64   `json:"continuousOperationHours"`
	CeilingHeight            float64   `json:"ceilingHeight"`
	VentilationRate          float64   `json:"ventilationRate"`
	InitialHumidity          float64   `json:"initialHumidity"`
	UpdatedAt                time.Time `json:"updatedAt"`
	Message                  string    `json:"message,omitempty"`
}

func newDefaultsResponse(d storage.Defaults, updatedAt time.Time, message string) defaultsResponse {
	return defaultsResponse{
		ContinuousOperationHours: d.ContinuousOperationHours,
		CeilingHeight:            d.CeilingHeight,
		VentilationRate:          d.VentilationRate,
		InitialHumidity:          d.InitialHumidity,
		UpdatedAt:                updatedAt,
		Message:                  message,
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
