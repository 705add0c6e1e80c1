package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessage implements Message over in-memory attribute maps.
// Attribute values are string, int64, or float64; a typed read of the wrong
// kind fails, mirroring a decoder's wrong-type error.
type fakeMessage struct {
	attrs  map[string]any
	arrays map[string][]float64
	values []float64
	closed bool
}

func (m *fakeMessage) IsDefined(name string) bool {
	_, ok := m.attrs[name]
	return ok
}

func (m *fakeMessage) GetString(name string) (string, error) {
	return getTyped[string](m, name)
}

func (m *fakeMessage) GetInt(name string) (int64, error) {
	return getTyped[int64](m, name)
}

func (m *fakeMessage) GetFloat(name string) (float64, error) {
	return getTyped[float64](m, name)
}

func (m *fakeMessage) GetFloatArray(name string) ([]float64, error) {
	arr, ok := m.arrays[name]
	if !ok {
		return nil, fmt.Errorf("array %s not defined", name)
	}
	return arr, nil
}

func (m *fakeMessage) Values() ([]float64, error) {
	if m.values == nil {
		return nil, errors.New("no values")
	}
	return m.values, nil
}

func (m *fakeMessage) Close() error {
	m.closed = true
	return nil
}

func getTyped[T any](m *fakeMessage, name string) (T, error) {
	var zero T
	v, ok := m.attrs[name]
	if !ok {
		return zero, fmt.Errorf("attribute %s not defined", name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("attribute %s has wrong type %T", name, v)
	}
	return typed, nil
}

func t2mSpec() VariableSpec {
	return VariableSpec{
		UserName: "temperature_2m",
		Match: []Attribute{
			{Name: "shortName", Value: StringAttr("2t")},
			{Name: "typeOfLevel", Value: StringAttr("heightAboveGround")},
			{Name: "level", Value: IntAttr(2)},
		},
	}
}

func TestMatchVariable(t *testing.T) {
	t.Run("accepts superset of declared attributes", func(t *testing.T) {
		msg := &fakeMessage{attrs: map[string]any{
			"shortName":   "2t",
			"typeOfLevel": "heightAboveGround",
			"level":       int64(2),
			"paramId":     int64(167), // extra, not declared
			"units":       "K",        // extra, not declared
		}}

		spec, ok := MatchVariable(msg, []VariableSpec{t2mSpec()})

		require.True(t, ok)
		assert.Equal(t, "temperature_2m", spec.UserName)
	})

	t.Run("rejects when one declared attribute is missing", func(t *testing.T) {
		msg := &fakeMessage{attrs: map[string]any{
			"shortName":   "2t",
			"typeOfLevel": "heightAboveGround",
			// level undefined
		}}

		_, ok := MatchVariable(msg, []VariableSpec{t2mSpec()})
		assert.False(t, ok)
	})

	t.Run("rejects on value mismatch", func(t *testing.T) {
		msg := &fakeMessage{attrs: map[string]any{
			"shortName":   "2t",
			"typeOfLevel": "heightAboveGround",
			"level":       int64(80),
		}}

		_, ok := MatchVariable(msg, []VariableSpec{t2mSpec()})
		assert.False(t, ok)
	})

	t.Run("rejects on wrong attribute type", func(t *testing.T) {
		msg := &fakeMessage{attrs: map[string]any{
			"shortName":   "2t",
			"typeOfLevel": "heightAboveGround",
			"level":       "2", // string where an int is expected
		}}

		_, ok := MatchVariable(msg, []VariableSpec{t2mSpec()})
		assert.False(t, ok)
	})

	t.Run("first positional match wins", func(t *testing.T) {
		broad := VariableSpec{
			UserName: "any_2t",
			Match:    []Attribute{{Name: "shortName", Value: StringAttr("2t")}},
		}
		msg := &fakeMessage{attrs: map[string]any{
			"shortName":   "2t",
			"typeOfLevel": "heightAboveGround",
			"level":       int64(2),
		}}

		spec, ok := MatchVariable(msg, []VariableSpec{broad, t2mSpec()})

		require.True(t, ok)
		assert.Equal(t, "any_2t", spec.UserName)
	})

	t.Run("float attributes compare exactly", func(t *testing.T) {
		spec := VariableSpec{
			UserName: "iso_temp",
			Match:    []Attribute{{Name: "scaledValue", Value: FloatAttr(0.5)}},
		}

		match := &fakeMessage{attrs: map[string]any{"scaledValue": 0.5}}
		_, ok := MatchVariable(match, []VariableSpec{spec})
		assert.True(t, ok)

		noMatch := &fakeMessage{attrs: map[string]any{"scaledValue": 0.5000001}}
		_, ok = MatchVariable(noMatch, []VariableSpec{spec})
		assert.False(t, ok)
	})

	t.Run("no match across whole catalog", func(t *testing.T) {
		msg := &fakeMessage{attrs: map[string]any{"shortName": "10u"}}
		_, ok := MatchVariable(msg, []VariableSpec{t2mSpec()})
		assert.False(t, ok)
	})
}
