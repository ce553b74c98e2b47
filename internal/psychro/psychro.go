package psychro

import "math"

// Magnus approximation constants.
const (
	magnusA = 6.1078 // hPa
	magnusB = 17.269
	magnusC = 237.3 // °C
)

const (
	// GasConstantWater is the specific gas constant of water vapor in J/(kg·K).
	GasConstantWater = 461.5
	// ZeroCelsius is 0 °C expressed in kelvin.
	ZeroCelsius = 273.15
)

// SaturatedVaporPressure returns the saturation vapor pressure of water in hPa
// at the given air temperature in °C.
//
// The approximation is singular at -237.3 °C; callers are expected to keep
// temperatures inside the validated -50..50 °C range.
func SaturatedVaporPressure(temperature float64) float64 {
	return magnusA * math.Exp((magnusB*temperature)/(temperature+magnusC))
}

// SaturatedVaporDensity returns how many grams of water vapor one cubic meter
// of saturated air holds at the given temperature in °C.
//
// The vapor pressure is converted to a density with the ideal gas law:
// density = pressure / (R_w * T_kelvin).
func SaturatedVaporDensity(temperature float64) float64 {
	pressurePa := SaturatedVaporPressure(temperature) * 100
	kelvin := temperature + ZeroCelsius
	kgPerCubicMeter := pressurePa / (GasConstantWater * kelvin)
	return kgPerCubicMeter * 1000
}

// AbsoluteHumidity returns the water vapor content in g/m³ of air at the given
// relative humidity (percent) and temperature (°C).
func AbsoluteHumidity(relativeHumidity, temperature float64) float64 {
	return SaturatedVaporDensity(temperature) * (relativeHumidity / 100)
}
