package calculator

// Input holds the room and environment parameters for one sizing request.
// All values are plain SI-ish units: m², %, °C, h, m and air changes per hour.
type Input struct {
	Area                     float64
	TargetHumidity           float64
	RoomTemperature          float64
	ContinuousOperationHours float64
	CeilingHeight            float64
	VentilationRate          float64
	InitialHumidity          float64
}

// Result is the humidifier sizing required for an Input.
type Result struct {
	// RequiredHumidificationCapacity is in mL/h, rounded to the nearest integer.
	RequiredHumidificationCapacity int
	// RequiredTankCapacity is in litres, rounded to one decimal place.
	RequiredTankCapacity float64
}

// Dominant names the term that determined the hourly humidification rate.
type Dominant string

const (
	DominantDeficit     Dominant = "deficit"
	DominantVentilation Dominant = "ventilation"
)

// Breakdown exposes every intermediate quantity of a calculation. Values are
// unrounded; only Result carries rounded figures.
type Breakdown struct {
	RoomVolume           float64 // m³
	VaporDensity         float64 // g/m³ at saturation
	TargetMoisture       float64 // g
	InitialMoisture      float64 // g
	DeficitMoisture      float64 // g, negative when the room starts above target
	VentilationVolume    float64 // m³/h
	VentilationLoss      float64 // g/h
	RequiredGramsPerHour float64
	Dominant             Dominant
	Result               Result
}

// SweepPoint is one row of a target humidity sweep.
type SweepPoint struct {
	TargetHumidity float64
	Result         Result
}

// Calculator describes the behaviour required from a humidifier calculator.
type Calculator interface {
	Calculate(in Input) Result
	Explain(in Input) Breakdown
	Sweep(in Input, from, to float64, steps int) ([]SweepPoint, error)
}

// InputOption overrides one of the optional Input fields.
type InputOption func(*Input)
