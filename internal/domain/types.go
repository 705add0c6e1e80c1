package domain

import "time"

// TargetPoint is a geographic location to extract forecasts for.
// Latitude is in [-90, 90], longitude in [-180, 180].
type TargetPoint struct {
	Lat float64
	Lon float64
}

// AttrKind discriminates the typed value held by an AttrValue.
type AttrKind int

const (
	AttrString AttrKind = iota
	AttrInt
	AttrFloat
)

// AttrValue is a tagged variant holding one expected GRIB attribute value.
// The kind decides which typed read is used during matching: a string
// attribute is read with GetString, an int with GetInt, a float with GetFloat.
type AttrValue struct {
	Kind  AttrKind
	Str   string
	Int   int64
	Float float64
}

// StringAttr returns a string-kinded AttrValue.
func StringAttr(s string) AttrValue { return AttrValue{Kind: AttrString, Str: s} }

// IntAttr returns an integer-kinded AttrValue.
func IntAttr(i int64) AttrValue { return AttrValue{Kind: AttrInt, Int: i} }

// FloatAttr returns a float-kinded AttrValue.
func FloatAttr(f float64) AttrValue { return AttrValue{Kind: AttrFloat, Float: f} }

// Attribute pairs a GRIB attribute name with its expected value.
type Attribute struct {
	Name  string
	Value AttrValue
}

// VariableSpec describes one catalog entry: the user-facing variable name and
// the set of message attributes that identify it. UserName must be unique
// within a catalog.
type VariableSpec struct {
	UserName string
	Match    []Attribute
}

// ExtractedRow is one point-level observation destined for storage.
// (ValidTime, RunTime, Latitude, Longitude, Variable) is the primary key.
type ExtractedRow struct {
	ValidTime     time.Time
	RunTime       time.Time
	Latitude      float64
	Longitude     float64
	Variable      string
	Value         float64
	SourceLocator string
}

// FileStatus classifies the terminal outcome of processing one object key.
type FileStatus string

const (
	StatusProcessed       FileStatus = "processed"
	StatusSkippedNoGrid   FileStatus = "skipped_no_grid"
	StatusNotFound        FileStatus = "not_found"
	StatusDownloadError   FileStatus = "download_error"
	StatusProcessingError FileStatus = "processing_error"
)

// FileResult reports what happened to a single object key.
type FileResult struct {
	MessagesScanned int
	RowsInserted    int
	Status          FileStatus
	VariablesFound  map[string]struct{}
}
