package spatial

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testGrid is a 3x3 grid around the Alabama gulf coast with longitudes in the
// 0..360 convention, as GRIB grids store them.
func testGrid() (lats, lons []float64) {
	lats = []float64{30.0, 30.0, 30.0, 31.0, 31.0, 31.0, 32.0, 32.0, 32.0}
	lons = []float64{271.0, 272.0, 273.0, 271.0, 272.0, 273.0, 271.0, 272.0, 273.0}
	return lats, lons
}

func staticCoords(lats, lons []float64, calls *int) CoordsFunc {
	return func() ([]float64, []float64, error) {
		*calls++
		return lats, lons, nil
	}
}

func TestResolverResolve(t *testing.T) {
	meta := GridMeta{TemplateNumber: 30, Ni: 3, Nj: 3, Lat1: 30.0, Lon1: 271.0}

	t.Run("snaps a target coincident with a grid point to that point", func(t *testing.T) {
		lats, lons := testGrid()
		// Grid index 4 is (31.0, 272.0), i.e. (31.0, -88.0) normalized.
		targets := []domain.TargetPoint{{Lat: 31.0, Lon: -88.0}}
		r := NewResolver(NewCache(), targets, testLogger())

		var calls int
		entry, hit, err := r.Resolve(meta, staticCoords(lats, lons, &calls))

		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, []int{4}, entry.Indices)
	})

	t.Run("snaps to nearest when between grid points", func(t *testing.T) {
		lats, lons := testGrid()
		targets := []domain.TargetPoint{{Lat: 31.1, Lon: -87.9}}
		r := NewResolver(NewCache(), targets, testLogger())

		var calls int
		entry, _, err := r.Resolve(meta, staticCoords(lats, lons, &calls))

		require.NoError(t, err)
		assert.Equal(t, []int{4}, entry.Indices)
	})

	t.Run("second resolve is a pure cache hit", func(t *testing.T) {
		lats, lons := testGrid()
		targets := []domain.TargetPoint{{Lat: 31.0, Lon: -88.0}, {Lat: 30.2, Lon: -86.9}}
		r := NewResolver(NewCache(), targets, testLogger())

		var calls int
		first, hit, err := r.Resolve(meta, staticCoords(lats, lons, &calls))
		require.NoError(t, err)
		require.False(t, hit)
		require.Equal(t, 1, calls)

		second, hit, err := r.Resolve(meta, staticCoords(lats, lons, &calls))
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, 1, calls, "coordinate arrays must not be re-read on a hit")
		assert.Empty(t, cmp.Diff(first.Indices, second.Indices))
		assert.Same(t, first, second)
	})

	t.Run("distinct signatures resolve independently", func(t *testing.T) {
		lats, lons := testGrid()
		targets := []domain.TargetPoint{{Lat: 31.0, Lon: -88.0}}
		cache := NewCache()
		r := NewResolver(cache, targets, testLogger())

		var calls int
		_, _, err := r.Resolve(meta, staticCoords(lats, lons, &calls))
		require.NoError(t, err)

		other := meta
		other.Ni = 4
		_, hit, err := r.Resolve(other, staticCoords(lats, lons, &calls))
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("normalizes grid longitudes in the cached entry", func(t *testing.T) {
		lats, lons := testGrid()
		targets := []domain.TargetPoint{{Lat: 31.0, Lon: -88.0}}
		r := NewResolver(NewCache(), targets, testLogger())

		var calls int
		entry, _, err := r.Resolve(meta, staticCoords(lats, lons, &calls))

		require.NoError(t, err)
		assert.Equal(t, -89.0, entry.Lons[0])
		assert.Equal(t, -88.0, entry.Lons[4])
	})

	t.Run("rejects empty grid arrays", func(t *testing.T) {
		r := NewResolver(NewCache(), []domain.TargetPoint{{Lat: 31, Lon: -88}}, testLogger())

		var calls int
		_, _, err := r.Resolve(meta, staticCoords(nil, nil, &calls))
		require.ErrorIs(t, err, domain.ErrInvalidGrid)
	})

	t.Run("rejects mismatched grid arrays", func(t *testing.T) {
		lats, lons := testGrid()
		r := NewResolver(NewCache(), []domain.TargetPoint{{Lat: 31, Lon: -88}}, testLogger())

		var calls int
		_, _, err := r.Resolve(meta, staticCoords(lats, lons[:5], &calls))
		require.ErrorIs(t, err, domain.ErrInvalidGrid)
	})

	t.Run("propagates coordinate read failure", func(t *testing.T) {
		readErr := errors.New("array read failed")
		r := NewResolver(NewCache(), []domain.TargetPoint{{Lat: 31, Lon: -88}}, testLogger())

		_, _, err := r.Resolve(meta, func() ([]float64, []float64, error) {
			return nil, nil, readErr
		})
		require.ErrorIs(t, err, readErr)
	})

	t.Run("nearest search crosses the antimeridian", func(t *testing.T) {
		// Two points straddling the dateline; a degree-space comparison would
		// pick the wrong one.
		lats := []float64{55.0, 55.0}
		lons := []float64{179.8, 185.0} // 185 normalizes to -175
		targets := []domain.TargetPoint{{Lat: 55.0, Lon: -179.9}}
		r := NewResolver(NewCache(), targets, testLogger())

		var calls int
		entry, _, err := r.Resolve(GridMeta{Ni: 2, Nj: 1, Lat1: 55, Lon1: 179.8}, staticCoords(lats, lons, &calls))

		require.NoError(t, err)
		assert.Equal(t, []int{0}, entry.Indices, "179.8E is 0.3 degrees from 179.9W")
	})
}

func TestGridMetaSignature(t *testing.T) {
	m := GridMeta{TemplateNumber: 30, Ni: 1799, Nj: 1059, Lat1: 21.138123, Lon1: 237.280472}
	assert.Equal(t, "30-1799-1059-21.1381-237.2805", m.Signature())

	t.Run("sub-precision jitter maps to the same signature", func(t *testing.T) {
		jittered := m
		jittered.Lat1 += 0.00001
		assert.Equal(t, m.Signature(), jittered.Signature())
	})

	t.Run("distinct first points differ", func(t *testing.T) {
		other := m
		other.Lat1 = 21.2
		assert.NotEqual(t, m.Signature(), other.Signature())
	})
}
