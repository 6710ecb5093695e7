package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 0, ToInt(nil))
	assert.Equal(t, 42, ToInt(int64(42)))
	assert.Equal(t, 7, ToInt(7.9))
	assert.Equal(t, 12, ToInt(" 12 "))
	assert.Equal(t, 3, ToInt([]byte("3")))
	assert.Equal(t, 0, ToInt("abc"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "IMG1", ToString([]byte("IMG1")))
	assert.Equal(t, "17", ToString(int64(17)))
}

func TestToFloat(t *testing.T) {
	f, ok := ToFloat(nil)
	assert.False(t, ok)
	assert.Zero(t, f)

	f, ok = ToFloat("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)

	_, ok = ToFloat("not a number")
	assert.False(t, ok)

	f, ok = ToFloat(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)
}

func TestReferenceTime(t *testing.T) {
	t.Run("Converts seconds since 2001", func(t *testing.T) {
		got := ReferenceTime(86400.5)
		want := time.Date(2001, time.January, 2, 0, 0, 0, int(500*time.Millisecond), time.UTC)
		assert.True(t, want.Equal(got), "got %v", got)
	})

	t.Run("Absent values are zero", func(t *testing.T) {
		assert.True(t, ReferenceTime(nil).IsZero())
		assert.True(t, ReferenceTime(0.0).IsZero())
		assert.True(t, ReferenceTime(-5.0).IsZero())
		assert.True(t, ReferenceTime("garbage").IsZero())
		assert.True(t, ReferenceTime(math.NaN()).IsZero())
	})

	t.Run("Out of range values are zero", func(t *testing.T) {
		assert.True(t, ReferenceTime(1e11).IsZero(), "milliseconds in a seconds column")
		assert.True(t, ReferenceTime(9.3e9).IsZero())
		assert.True(t, ReferenceTime("7.2e11").IsZero())
		assert.True(t, ReferenceTime(math.MaxFloat64).IsZero())

		got := ReferenceTime(9e9)
		assert.False(t, got.IsZero())
		assert.Equal(t, 2286, got.Year())
	})

	t.Run("Round trip", func(t *testing.T) {
		ts := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)
		assert.True(t, ts.Equal(ReferenceTime(ToReferenceSeconds(ts))))
	})
}
