// Package domain models HRRR point-forecast extraction.
//
// # Data Source
//
// The High-Resolution Rapid Refresh (HRRR) model publishes hourly forecast
// runs as GRIB2 files in the public NOAA bucket (noaa-hrrr-bdp-pds). Each file
// holds one forecast hour of one run and contains hundreds of messages, one
// per variable/level combination, each carrying a full spatial field on the
// ~3 km CONUS grid.
//
// # Variable Matching
//
// Messages are opaque: a message is identified by comparing its typed GRIB
// attributes (paramId, shortName, typeOfLevel, level, ...) against a curated
// catalog of [VariableSpec] entries. Expected values are tagged variants
// ([AttrValue]) so each comparison uses the attribute's declared type rather
// than runtime inspection.
//
// # Time Semantics
//
// A message carries its run date and time (the model execution this file
// belongs to) and a step in hours. The observation's valid time is
// run time + step. Both are UTC.
//
// # Point Extraction
//
// Target locations are snapped to the nearest grid point found by searching
// in a unit-sphere XYZ embedding (see [ProjectXYZ]); no interpolation is
// performed. One row is emitted per (target, matched variable) pair, keyed by
// (valid time, run time, latitude, longitude, variable) so reprocessing the
// same file is idempotent downstream (ON CONFLICT DO NOTHING).
package domain
