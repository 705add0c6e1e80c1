package domain

import "context"

// Message is one decoded GRIB message handle. Attribute reads are typed and
// return an error when the attribute is undefined, of the wrong type, or
// cannot be decoded. Handles hold native decoder resources and must be
// released with Close after use.
type Message interface {
	IsDefined(name string) bool
	GetString(name string) (string, error)
	GetInt(name string) (int64, error)
	GetFloat(name string) (float64, error)
	// GetFloatArray reads a named array attribute, e.g. the grid's flattened
	// "latitudes" and "longitudes".
	GetFloatArray(name string) ([]float64, error)
	// Values returns the message's flat data field, one value per grid point.
	// Missing points are reported as NaN.
	Values() ([]float64, error)
	Close() error
}

// MessageReader yields the ordered messages of one GRIB file.
// Next returns io.EOF after the last message.
type MessageReader interface {
	Next() (Message, error)
	Close() error
}

// Decoder opens a local GRIB file for message iteration. The byte-level codec
// is an external collaborator; this package only consumes decoded handles.
type Decoder interface {
	Open(path string) (MessageReader, error)
}

// BlobStore downloads a remote object to a local file. Implementations
// return ErrObjectNotFound (possibly wrapped) when the key does not exist.
type BlobStore interface {
	Download(ctx context.Context, bucket, key, dst string) error
}
