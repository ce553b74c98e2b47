// Package batch sizes humidifiers for many rooms at once from a CSV file.
//
// Numeric cells are read as text so that a malformed row is reported in the
// output instead of aborting the whole file. Blank or missing optional
// columns take the supplied defaults.
package batch

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
	"github.com/eugenenazirov/humidifier-sizer/internal/storage"
	"github.com/eugenenazirov/humidifier-sizer/internal/validation"
)

// ErrEmptyInput is returned when the CSV holds no room rows.
var ErrEmptyInput = errors.New("batch input contains no rooms")

// Room is one input row.
type Room struct {
	Name                     string `csv:"name"`
	Area                     string `csv:"area"`
	TargetHumidity           string `csv:"target_humidity"`
	RoomTemperature          string `csv:"room_temperature"`
	ContinuousOperationHours string `csv:"continuous_operation_hours"`
	CeilingHeight            string `csv:"ceiling_height"`
	VentilationRate          string `csv:"ventilation_rate"`
	InitialHumidity          string `csv:"initial_humidity"`
}

// Sized is one output row. Capacity and tank columns are empty when Error is set.
type Sized struct {
	Name                           string `csv:"name"`
	RequiredHumidificationCapacity string `csv:"required_humidification_capacity_ml_per_hour"`
	RequiredTankCapacity           string `csv:"required_tank_capacity_l"`
	Dominant                       string `csv:"dominant"`
	Error                          string `csv:"error"`
}

// Summary counts processed and rejected rows.
type Summary struct {
	Rows   int
	Failed int
}

// Run reads rooms from r, sizes each one and writes the results to w.
func Run(r io.Reader, w io.Writer, calc calculator.Calculator, defaults storage.Defaults) (Summary, error) {
	var rooms []*Room
	if err := gocsv.Unmarshal(r, &rooms); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return Summary{}, ErrEmptyInput
		}
		return Summary{}, fmt.Errorf("read rooms: %w", err)
	}
	if len(rooms) == 0 {
		return Summary{}, ErrEmptyInput
	}

	results := make([]*Sized, 0, len(rooms))
	summary := Summary{Rows: len(rooms)}
	for _, room := range rooms {
		sized := Size(room, calc, defaults)
		if sized.Error != "" {
			summary.Failed++
		}
		results = append(results, sized)
	}

	if err := gocsv.Marshal(&results, w); err != nil {
		return summary, fmt.Errorf("write results: %w", err)
	}
	return summary, nil
}

// Size parses, validates and sizes a single room.
func Size(room *Room, calc calculator.Calculator, defaults storage.Defaults) *Sized {
	out := &Sized{Name: room.Name}

	in, err := room.input(defaults)
	if err == nil {
		err = validation.Validate(in)
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	b := calc.Explain(in)
	out.RequiredHumidificationCapacity = strconv.Itoa(b.Result.RequiredHumidificationCapacity)
	out.RequiredTankCapacity = strconv.FormatFloat(b.Result.RequiredTankCapacity, 'f', 1, 64)
	out.Dominant = string(b.Dominant)
	return out
}

func (r *Room) input(defaults storage.Defaults) (calculator.Input, error) {
	var errs validation.Errors
	required := func(field, raw string) float64 {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			errs = append(errs, validation.FieldError{Field: field, Message: field + " is required"})
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: field, Message: fmt.Sprintf("%s must be a number, got %q", field, raw)})
		}
		return v
	}
	optional := func(field, raw string, fallback float64) float64 {
		if strings.TrimSpace(raw) == "" {
			return fallback
		}
		return required(field, raw)
	}

	in := calculator.Input{
		Area:                     required("area", r.Area),
		TargetHumidity:           required("target_humidity", r.TargetHumidity),
		RoomTemperature:          required("room_temperature", r.RoomTemperature),
		ContinuousOperationHours: optional("continuous_operation_hours", r.ContinuousOperationHours, defaults.ContinuousOperationHours),
		CeilingHeight:            optional("ceiling_height", r.CeilingHeight, defaults.CeilingHeight),
		VentilationRate:          optional("ventilation_rate", r.VentilationRate, defaults.VentilationRate),
		InitialHumidity:          optional("initial_humidity", r.InitialHumidity, defaults.InitialHumidity),
	}
	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}
