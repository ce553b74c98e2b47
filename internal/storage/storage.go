package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
	"github.com/eugenenazirov/humidifier-sizer/internal/validation"
)

var (
	// ErrInvalidDefaults indicates the provided defaults violate validation rules.
	ErrInvalidDefaults = errors.New("invalid calculation defaults")
)

// Defaults are the values used for optional inputs omitted by a request.
type Defaults struct {
	ContinuousOperationHours float64
	CeilingHeight            float64
	VentilationRate          float64
	InitialHumidity          float64
}

// Storage provides access to the calculation defaults used by the API.
type Storage interface {
	GetDefaults() (Defaults, error)
	SetDefaults(d Defaults) error
}

// MemoryStorage keeps defaults in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	defaults Defaults
}

// NewMemoryStorage initialises storage with the built-in calculator defaults.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		defaults: BuiltinDefaults(),
	}
}

// BuiltinDefaults returns the calculator's own defaults.
func BuiltinDefaults() Defaults {
	return Defaults{
		ContinuousOperationHours: calculator.DefaultOperationHours,
		CeilingHeight:            calculator.DefaultCeilingHeight,
		VentilationRate:          calculator.DefaultVentilationRate,
		InitialHumidity:          calculator.DefaultInitialHumidity,
	}
}

// GetDefaults returns the currently configured defaults.
func (s *MemoryStorage) GetDefaults() (Defaults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.defaults, nil
}

// SetDefaults validates and stores d.
func (s *MemoryStorage) SetDefaults(d Defaults) error {
	if err := Validate(d); err != nil {
		return err
	}

	s.mu.Lock()
	s.defaults = d
	s.mu.Unlock()

	return nil
}

// Validate reports whether d can be stored. The returned error wraps both
// ErrInvalidDefaults and the underlying validation.Errors.
func Validate(d Defaults) error {
	if err := validation.ValidateDefaults(validation.Defaults(d)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefaults, err)
	}
	return nil
}

// Apply builds a calculator input from the mandatory parameters, taking the
// optional ones from d.
func (d Defaults) Apply(area, targetHumidity, roomTemperature float64) calculator.Input {
	return calculator.NewInput(area, targetHumidity, roomTemperature,
		calculator.WithOperationHours(d.ContinuousOperationHours),
		calculator.WithCeilingHeight(d.CeilingHeight),
		calculator.WithVentilationRate(d.VentilationRate),
		calculator.WithInitialHumidity(d.InitialHumidity),
	)
}
