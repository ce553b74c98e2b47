package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
)

// ErrInvalidInput is matched by every error returned from Validate and ValidateDefaults.
var ErrInvalidInput = errors.New("invalid calculation input")

// Temperature range accepted for the room, in °C.
const (
	MinRoomTemperature = -50.0
	MaxRoomTemperature = 50.0
)

// MaxHumidificationRate caps the required rate in mL/h. Inputs that pass the
// per-field checks but drive the formula past it are rejected.
const MaxHumidificationRate = 1e12

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors collects every FieldError found in one input.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Is reports ErrInvalidInput so callers can use errors.Is.
func (e Errors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Fields returns a field -> message map, convenient for JSON responses.
func (e Errors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		out[fe.Field] = fe.Message
	}
	return out
}

// Validate checks all seven calculation inputs and returns an Errors value
// listing each violation, or nil.
func Validate(in calculator.Input) error {
	var errs Errors
	check := func(ok bool, field, msg string) {
		if !ok {
			errs = append(errs, FieldError{Field: field, Message: msg})
		}
	}

	check(positive(in.Area), "area", "area must be a positive number")
	check(percent(in.TargetHumidity), "targetHumidity", "targetHumidity must be between 0 and 100 percent")
	check(between(in.RoomTemperature, MinRoomTemperature, MaxRoomTemperature), "roomTemperature",
		fmt.Sprintf("roomTemperature must be between %g and %g °C", MinRoomTemperature, MaxRoomTemperature))
	errs = append(errs, validateOptional(in.ContinuousOperationHours, in.CeilingHeight, in.VentilationRate, in.InitialHumidity)...)

	if len(errs) == 0 {
		errs = validateMagnitude(in)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateMagnitude rejects combinations of individually valid fields whose
// product overflows, e.g. area 1e308 with any ceiling height.
func validateMagnitude(in calculator.Input) Errors {
	volume := in.Area * in.CeilingHeight
	if !finite(volume) || !finite(volume*in.VentilationRate) {
		return Errors{{Field: "area", Message: "area × ceilingHeight × ventilationRate is too large"}}
	}

	b := calculator.Explain(in)
	if !finite(b.RequiredGramsPerHour) || b.RequiredGramsPerHour > MaxHumidificationRate {
		return Errors{{Field: "area", Message: fmt.Sprintf("room requires more than %g mL/h", MaxHumidificationRate)}}
	}
	if !finite(b.Result.RequiredTankCapacity) {
		return Errors{{Field: "continuousOperationHours", Message: "continuousOperationHours is too large"}}
	}
	return nil
}

// Defaults mirrors the optional calculator inputs. It duplicates
// storage.Defaults because storage imports this package.
type Defaults struct {
	ContinuousOperationHours float64
	CeilingHeight            float64
	VentilationRate          float64
	InitialHumidity          float64
}

// ValidateDefaults checks the optional inputs on their own.
func ValidateDefaults(d Defaults) error {
	errs := validateOptional(d.ContinuousOperationHours, d.CeilingHeight, d.VentilationRate, d.InitialHumidity)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateOptional(hours, ceiling, ventilation, initial float64) Errors {
	var errs Errors
	if !positive(hours) {
		errs = append(errs, FieldError{Field: "continuousOperationHours", Message: "continuousOperationHours must be a positive number"})
	}
	if !positive(ceiling) {
		errs = append(errs, FieldError{Field: "ceilingHeight", Message: "ceilingHeight must be a positive number"})
	}
	if !finite(ventilation) || ventilation < 0 {
		errs = append(errs, FieldError{Field: "ventilationRate", Message: "ventilationRate must be zero or greater"})
	}
	if !percent(initial) {
		errs = append(errs, FieldError{Field: "initialHumidity", Message: "initialHumidity must be between 0 and 100 percent"})
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func between(v, lo, hi float64) bool {
	return finite(v) && v >= lo && v <= hi
}

func percent(v float64) bool {
	return between(v, 0, 100)
}
