package config

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// ParsePointsFile reads target points from a latitude,longitude CSV. A first
// row that does not parse as coordinates is treated as a header. Rows with
// too few columns, non-numeric values, or out-of-range coordinates are
// skipped with a warning; zero surviving points is an error.
func ParsePointsFile(path string, logger *slog.Logger) ([]domain.TargetPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open points file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read points file %s: %w", path, err)
	}

	var points []domain.TargetPoint
	for i, rec := range records {
		point, err := parsePointRow(rec)
		if err != nil {
			if i == 0 {
				logger.Debug("skipping header row", "file", path)
				continue
			}
			logger.Warn("skipping target point row", "file", path, "row", i+1, "error", err)
			continue
		}
		points = append(points, point)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no valid target points in %s", path)
	}
	logger.Info("target points loaded", "file", path, "count", len(points))
	return points, nil
}

func parsePointRow(rec []string) (domain.TargetPoint, error) {
	if len(rec) < 2 {
		return domain.TargetPoint{}, fmt.Errorf("want at least 2 columns, got %d", len(rec))
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil {
		return domain.TargetPoint{}, fmt.Errorf("latitude %q is not numeric", rec[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return domain.TargetPoint{}, fmt.Errorf("longitude %q is not numeric", rec[1])
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.TargetPoint{}, fmt.Errorf("coordinates (%g, %g) out of range", lat, lon)
	}
	return domain.TargetPoint{Lat: lat, Lon: lon}, nil
}
