package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrEmptyPlan reports a key plan that produced nothing to fetch. This is a
// configuration problem and aborts the run before any object is attempted.
var ErrEmptyPlan = errors.New("no object keys planned")

// Planner enumerates the remote object keys for a run window.
type Planner struct {
	Prefix string // product prefix, e.g. "hrrr"
	Region string // grid region path segment, e.g. "conus"
	Ext    string // object extension, e.g. "grib2"
	clock  clockwork.Clock
}

// NewPlanner returns a planner with the HRRR CONUS key layout.
func NewPlanner(clock clockwork.Clock) *Planner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Planner{Prefix: "hrrr", Region: "conus", Ext: "grib2", clock: clock}
}

// DefaultRunDate returns yesterday's UTC date in YYYYMMDD form, the run used
// when the operator does not name one.
func (p *Planner) DefaultRunDate() string {
	return p.clock.Now().UTC().AddDate(0, 0, -1).Format("20060102")
}

// PlanKeys expands a run date, cycle, and lookback window into the ordered
// object key list. One run per 24h of lookback is included, newest first;
// forecast hours ascend within each run. Key layout:
//
//	<prefix>.<YYYYMMDD>/<region>/<prefix>.t<cycle>z.<fileType>f<HH>.<ext>
func (p *Planner) PlanKeys(runDate, cycle, fileType string, lookbackHours, fhStart, fhEnd int) ([]string, error) {
	date, err := time.Parse("20060102", runDate)
	if err != nil {
		return nil, fmt.Errorf("invalid run date %q, want YYYYMMDD: %w", runDate, err)
	}
	if lookbackHours <= 0 {
		return nil, fmt.Errorf("lookback hours must be positive, got %d", lookbackHours)
	}

	runCount := 1 + lookbackHours/24
	keys := make([]string, 0, runCount*(fhEnd-fhStart+1))
	for i := 0; i < runCount; i++ {
		dateStr := date.AddDate(0, 0, -i).Format("20060102")
		for hour := fhStart; hour <= fhEnd; hour++ {
			keys = append(keys, fmt.Sprintf("%s.%s/%s/%s.t%sz.%sf%02d.%s",
				p.Prefix, dateStr, p.Region, p.Prefix, cycle, fileType, hour, p.Ext))
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("run date %s, hours %d..%d: %w", runDate, fhStart, fhEnd, ErrEmptyPlan)
	}
	return keys, nil
}
