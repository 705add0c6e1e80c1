// Package grib is the integration seam for a concrete GRIB2 codec. The
// pipeline only consumes the domain.Decoder contract; binding a real codec
// (typically a cgo wrapper over ecCodes) is deployment-specific and kept out
// of this module so the core builds and tests without native dependencies.
package grib

import (
	"errors"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// ErrNoCodec reports a build without a linked GRIB codec.
var ErrNoCodec = errors.New("no GRIB codec linked into this build")

// NewDecoder returns the build's decoder, or ErrNoCodec when none is linked.
// Deployments provide their own factory here; failing at startup beats
// downloading every planned object only to skip each one at decode time.
func NewDecoder() (domain.Decoder, error) {
	return nil, ErrNoCodec
}
