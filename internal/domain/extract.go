package domain

import (
	"fmt"
	"math"
	"time"
)

// ExtractRows reads the matched message's data field at each resolved grid
// index and emits one row per target point, in target order. Points whose
// value is NaN are dropped rather than stored as a sentinel. A value array
// that does not line up with the grid coordinate arrays yields
// ErrValueLengthMismatch and zero rows; the caller treats that as a
// per-message problem, not a file failure.
func ExtractRows(msg Message, spec VariableSpec, indices []int, lats, lons []float64, sourceLocator string) ([]ExtractedRow, error) {
	values, err := msg.Values()
	if err != nil {
		return nil, fmt.Errorf("read values for %s: %w", spec.UserName, err)
	}
	if len(values) != len(lats) {
		return nil, fmt.Errorf("%s: values has %d points, grid has %d: %w",
			spec.UserName, len(values), len(lats), ErrValueLengthMismatch)
	}

	runTime, err := messageRunTime(msg)
	if err != nil {
		return nil, fmt.Errorf("derive run time for %s: %w", spec.UserName, err)
	}
	step, err := msg.GetInt("step")
	if err != nil {
		return nil, fmt.Errorf("read step for %s: %w", spec.UserName, err)
	}
	validTime := runTime.Add(time.Duration(step) * time.Hour)

	rows := make([]ExtractedRow, 0, len(indices))
	for _, idx := range indices {
		v := values[idx]
		if math.IsNaN(v) {
			continue
		}
		rows = append(rows, ExtractedRow{
			ValidTime:     validTime,
			RunTime:       runTime,
			Latitude:      lats[idx],
			Longitude:     lons[idx],
			Variable:      spec.UserName,
			Value:         v,
			SourceLocator: sourceLocator,
		})
	}
	return rows, nil
}

// messageRunTime combines the GRIB "date" (YYYYMMDD) and "time" (HHMM)
// integer fields into a UTC timestamp.
func messageRunTime(msg Message) (time.Time, error) {
	date, err := msg.GetInt("date")
	if err != nil {
		return time.Time{}, err
	}
	hhmm, err := msg.GetInt("time")
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("200601021504", fmt.Sprintf("%08d%04d", date, hhmm))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run time %d %04d: %w", date, hhmm, err)
	}
	return t.UTC(), nil
}
