package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

func writePointsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParsePointsFile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("plain rows", func(t *testing.T) {
		path := writePointsFile(t, "31.0069,-88.0103\n30.3960,-88.8853\n")

		points, err := ParsePointsFile(path, logger)

		require.NoError(t, err)
		want := []domain.TargetPoint{
			{Lat: 31.0069, Lon: -88.0103},
			{Lat: 30.3960, Lon: -88.8853},
		}
		assert.Empty(t, cmp.Diff(want, points))
	})

	t.Run("header row is skipped", func(t *testing.T) {
		path := writePointsFile(t, "latitude,longitude\n31.0069,-88.0103\n")

		points, err := ParsePointsFile(path, logger)

		require.NoError(t, err)
		assert.Len(t, points, 1)
	})

	t.Run("bad rows are skipped, good rows survive", func(t *testing.T) {
		path := writePointsFile(t, "31.0069,-88.0103\nonly-one-column\nnot-a-number,12\n95.0,-88.0\n30.3960,-88.8853\n")

		points, err := ParsePointsFile(path, logger)

		require.NoError(t, err)
		assert.Len(t, points, 2)
	})

	t.Run("whitespace around values is tolerated", func(t *testing.T) {
		path := writePointsFile(t, "31.0069, -88.0103\n")

		points, err := ParsePointsFile(path, logger)

		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, -88.0103, points[0].Lon)
	})

	t.Run("out of range coordinates rejected", func(t *testing.T) {
		path := writePointsFile(t, "31.0069,-88.0103\n-91,0\n0,181\n")

		points, err := ParsePointsFile(path, logger)

		require.NoError(t, err)
		assert.Len(t, points, 1)
	})

	t.Run("zero surviving points is an error", func(t *testing.T) {
		path := writePointsFile(t, "latitude,longitude\nnope,nope\n")

		_, err := ParsePointsFile(path, logger)

		assert.ErrorContains(t, err, "no valid target points")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParsePointsFile(filepath.Join(t.TempDir(), "absent.csv"), logger)
		assert.ErrorContains(t, err, "open points file")
	})
}

func TestOptionsValidate(t *testing.T) {
	valid := func() *Options {
		return &Options{
			Lookback:      48,
			HourStart:     0,
			HourEnd:       15,
			FetchTimeout:  5 * time.Minute,
			FetchAttempts: 3,
		}
	}

	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects bad values", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Options)
		}{
			{"zero lookback", func(o *Options) { o.Lookback = 0 }},
			{"negative hour start", func(o *Options) { o.HourStart = -1 }},
			{"inverted hour range", func(o *Options) { o.HourStart = 10; o.HourEnd = 5 }},
			{"zero fetch timeout", func(o *Options) { o.FetchTimeout = 0 }},
			{"zero fetch attempts", func(o *Options) { o.FetchAttempts = 0 }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				o := valid()
				tc.mutate(o)
				assert.Error(t, o.Validate())
			})
		}
	})
}

func TestKafkaEnabled(t *testing.T) {
	assert.False(t, (&Options{}).KafkaEnabled())
	assert.True(t, (&Options{KafkaBrokers: []string{"localhost:9092"}}).KafkaEnabled())
}
