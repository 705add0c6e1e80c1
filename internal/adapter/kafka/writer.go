// Package kafka publishes extracted rows to a topic for downstream consumers
// that want the point series as a stream rather than a table.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// rowPayload is the wire form of one extracted row.
type rowPayload struct {
	ValidTimeUTC  time.Time `json:"valid_time_utc"`
	RunTimeUTC    time.Time `json:"run_time_utc"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Variable      string    `json:"variable"`
	Value         float64   `json:"value"`
	SourceLocator string    `json:"source_locator"`
}

// Writer produces extracted rows to a Kafka topic.
// It implements pipeline.RowSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a producer for the sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishRows serializes one file's row batch into a single WriteMessages
// call. Messages are keyed by variable and valid time so replays land on the
// same partition.
func (w *Writer) PublishRows(ctx context.Context, rows []domain.ExtractedRow) error {
	if len(rows) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, len(rows))
	for i, row := range rows {
		data, err := json.Marshal(rowPayload{
			ValidTimeUTC:  row.ValidTime,
			RunTimeUTC:    row.RunTime,
			Latitude:      row.Latitude,
			Longitude:     row.Longitude,
			Variable:      row.Variable,
			Value:         row.Value,
			SourceLocator: row.SourceLocator,
		})
		if err != nil {
			return fmt.Errorf("serialize row: %w", err)
		}
		msgs[i] = kafkago.Message{
			Key:   []byte(fmt.Sprintf("%s|%s", row.Variable, row.ValidTime.Format(time.RFC3339))),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "source_locator", Value: []byte(row.SourceLocator)},
			},
		}
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
