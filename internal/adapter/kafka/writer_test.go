package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

func TestNewWriter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWriter([]string{"broker-1:9092", "broker-2:9092"}, "hrrr-point-observations", logger)
	defer w.Close()

	assert.Equal(t, "hrrr-point-observations", w.writer.Topic)
	assert.Equal(t, "broker-1:9092,broker-2:9092", w.writer.Addr.String())
}

func TestPublishRowsEmptyBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWriter([]string{"localhost:9092"}, "topic", logger)
	defer w.Close()

	// No broker round trip happens for an empty batch.
	assert.NoError(t, w.PublishRows(context.Background(), nil))
}

func TestRowPayloadShape(t *testing.T) {
	row := domain.ExtractedRow{
		ValidTime:     time.Date(2015, 3, 23, 9, 0, 0, 0, time.UTC),
		RunTime:       time.Date(2015, 3, 23, 6, 0, 0, 0, time.UTC),
		Latitude:      31.0,
		Longitude:     -88.0,
		Variable:      "temperature_2m",
		Value:         271.9,
		SourceLocator: "s3://bucket/key",
	}

	data, err := json.Marshal(rowPayload{
		ValidTimeUTC:  row.ValidTime,
		RunTimeUTC:    row.RunTime,
		Latitude:      row.Latitude,
		Longitude:     row.Longitude,
		Variable:      row.Variable,
		Value:         row.Value,
		SourceLocator: row.SourceLocator,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2015-03-23T09:00:00Z", decoded["valid_time_utc"])
	assert.Equal(t, "temperature_2m", decoded["variable"])
	assert.Equal(t, "s3://bucket/key", decoded["source_locator"])
}
