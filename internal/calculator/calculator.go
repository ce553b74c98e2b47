package calculator

import (
	"math"

	"github.com/eugenenazirov/humidifier-sizer/internal/psychro"
)

// Defaults applied by NewInput when the corresponding option is not given.
const (
	DefaultOperationHours  = 8.0
	DefaultCeilingHeight   = 2.4
	DefaultVentilationRate = 0.5
	DefaultInitialHumidity = 20.0
)

// gramsPerLitre also converts g/h to mL/h, water being taken as 1 g/mL.
const gramsPerLitre = 1000.0

type humidityCalculator struct{}

// New creates a Calculator backed by Compute.
func New() Calculator {
	return &humidityCalculator{}
}

func (c *humidityCalculator) Calculate(in Input) Result {
	return Compute(in)
}

func (c *humidityCalculator) Explain(in Input) Breakdown {
	return Explain(in)
}

func (c *humidityCalculator) Sweep(in Input, from, to float64, steps int) ([]SweepPoint, error) {
	return Sweep(in, from, to, steps)
}

// NewInput builds an Input from the three mandatory parameters, filling the
// optional ones with their defaults unless overridden by opts.
func NewInput(area, targetHumidity, roomTemperature float64, opts ...InputOption) Input {
	in := Input{
		Area:                     area,
		TargetHumidity:           targetHumidity,
		RoomTemperature:          roomTemperature,
		ContinuousOperationHours: DefaultOperationHours,
		CeilingHeight:            DefaultCeilingHeight,
		VentilationRate:          DefaultVentilationRate,
		InitialHumidity:          DefaultInitialHumidity,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// WithOperationHours sets how long the humidifier must run without a refill.
func WithOperationHours(hours float64) InputOption {
	return func(in *Input) {
		in.ContinuousOperationHours = hours
	}
}

// WithCeilingHeight sets the room height in metres.
func WithCeilingHeight(height float64) InputOption {
	return func(in *Input) {
		in.CeilingHeight = height
	}
}

// WithVentilationRate sets the air changes per hour.
func WithVentilationRate(rate float64) InputOption {
	return func(in *Input) {
		in.VentilationRate = rate
	}
}

// WithInitialHumidity sets the starting relative humidity in percent.
func WithInitialHumidity(humidity float64) InputOption {
	return func(in *Input) {
		in.InitialHumidity = humidity
	}
}

// Compute returns the humidification capacity and tank size required for in.
// It performs no validation and is defined for any finite input except a room
// temperature of exactly -237.3 °C.
func Compute(in Input) Result {
	return Explain(in).Result
}

// Explain runs the calculation and returns all intermediate quantities.
//
// The hourly rate is the larger of the ventilation loss at target humidity and
// the whole initial deficit, i.e. the deficit is closed within one hour.
func Explain(in Input) Breakdown {
	roomVolume := in.Area * in.CeilingHeight
	vaporDensity := psychro.SaturatedVaporDensity(in.RoomTemperature)

	targetMoisture := roomVolume * vaporDensity * (in.TargetHumidity / 100)
	initialMoisture := roomVolume * vaporDensity * (in.InitialHumidity / 100)
	deficit := targetMoisture - initialMoisture

	ventilationVolume := roomVolume * in.VentilationRate
	ventilationLoss := ventilationVolume * vaporDensity * (in.TargetHumidity / 100)

	required := math.Max(ventilationLoss, deficit)
	dominant := DominantVentilation
	if deficit > ventilationLoss {
		dominant = DominantDeficit
	}

	return Breakdown{
		RoomVolume:           roomVolume,
		VaporDensity:         vaporDensity,
		TargetMoisture:       targetMoisture,
		InitialMoisture:      initialMoisture,
		DeficitMoisture:      deficit,
		VentilationVolume:    ventilationVolume,
		VentilationLoss:      ventilationLoss,
		RequiredGramsPerHour: required,
		Dominant:             dominant,
		Result: Result{
			RequiredHumidificationCapacity: int(math.Round(required)),
			RequiredTankCapacity:           roundTo(required/gramsPerLitre*in.ContinuousOperationHours, 1),
		},
	}
}

func roundTo(value float64, precision int) float64 {
	return math.Round(value*math.Pow10(precision)) / math.Pow10(precision)
}
