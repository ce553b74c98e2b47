// Package psychro provides the moist-air relations used to size a humidifier:
// saturated vapor pressure and density of water vapor as a function of air
// temperature, and the absolute humidity that follows from a relative humidity.
package psychro
