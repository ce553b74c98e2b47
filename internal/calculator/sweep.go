package calculator

import "gonum.org/v1/gonum/floats"

// MaxSweepSteps bounds the number of rows a single sweep may produce.
const MaxSweepSteps = 101

// Sweep evaluates in at evenly spaced target humidities from..to (inclusive).
// All other fields of in are held fixed. One step yields a single point at
// from; steps outside 1..MaxSweepSteps return ErrInvalidSweep.
func Sweep(in Input, from, to float64, steps int) ([]SweepPoint, error) {
	if steps < 1 || steps > MaxSweepSteps {
		return nil, ErrInvalidSweep
	}
	if steps == 1 {
		in.TargetHumidity = from
		return []SweepPoint{{TargetHumidity: from, Result: Compute(in)}}, nil
	}

	targets := floats.Span(make([]float64, steps), from, to)
	points := make([]SweepPoint, 0, steps)
	for _, target := range targets {
		in.TargetHumidity = target
		points = append(points, SweepPoint{TargetHumidity: target, Result: Compute(in)})
	}
	return points, nil
}
