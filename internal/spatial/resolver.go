package spatial

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// CoordsFunc lazily supplies a grid's flattened latitude and longitude arrays.
// It is only invoked on a cache miss, so files sharing a known grid layout
// never pay for the array read.
type CoordsFunc func() (lats, lons []float64, err error)

// Resolver snaps target points to their nearest grid indices, consulting the
// cache by grid signature before building a k-d tree.
type Resolver struct {
	cache   *Cache
	targets []domain.TargetPoint
	logger  *slog.Logger
}

// NewResolver creates a resolver for a fixed target set. The cache is owned
// by the caller and scoped to one ingestion run.
func NewResolver(cache *Cache, targets []domain.TargetPoint, logger *slog.Logger) *Resolver {
	return &Resolver{cache: cache, targets: targets, logger: logger}
}

// Resolve returns the grid entry for meta's signature, building and caching
// it on first encounter. The second return reports whether the entry came
// from cache. Invalid coordinate arrays yield domain.ErrInvalidGrid; the
// caller skips message processing for that file.
func (r *Resolver) Resolve(meta GridMeta, coords CoordsFunc) (*Entry, bool, error) {
	sig := meta.Signature()
	if entry, ok := r.cache.get(sig); ok {
		r.logger.Debug("grid found in cache", "signature", sig)
		return entry, true, nil
	}

	lats, lons, err := coords()
	if err != nil {
		return nil, false, fmt.Errorf("read grid coordinates for %s: %w", sig, err)
	}
	entry, err := r.build(lats, lons)
	if err != nil {
		return nil, false, err
	}
	r.cache.put(sig, entry)
	r.logger.Info("grid indexed and cached", "signature", sig, "grid_points", len(lats))
	return entry, false, nil
}

// build normalizes longitudes, projects everything onto the unit sphere,
// and queries a k-d tree once per target.
func (r *Resolver) build(lats, lons []float64) (*Entry, error) {
	if len(lats) == 0 || len(lats) != len(lons) {
		return nil, fmt.Errorf("grid arrays have %d lats and %d lons: %w",
			len(lats), len(lons), domain.ErrInvalidGrid)
	}

	normLons := make([]float64, len(lons))
	points := make(gridPoints, len(lats))
	for i := range lats {
		normLons[i] = domain.NormalizeLon(lons[i])
		x, y, z := domain.ProjectXYZ(lats[i], normLons[i])
		points[i] = gridPoint{xyz: [3]float64{x, y, z}, idx: i}
	}

	tree := kdtree.New(points, false)
	indices := make([]int, len(r.targets))
	for i, t := range r.targets {
		x, y, z := domain.ProjectXYZ(t.Lat, t.Lon)
		got, _ := tree.Nearest(gridPoint{xyz: [3]float64{x, y, z}, idx: -1})
		indices[i] = got.(gridPoint).idx
	}

	return &Entry{Lats: lats, Lons: normLons, Indices: indices}, nil
}
