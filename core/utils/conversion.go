package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// referenceEpoch is 2001-01-01 00:00:00 UTC, the zero point both catalogs use for
// their float timestamps.
var referenceEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxReferenceSeconds is the largest offset a time.Duration can hold.
var maxReferenceSeconds = float64(math.MaxInt64 / int64(time.Second))

// ToInt converts various types to int using explicit type switching.
// It handles standard integer types, floats, strings, and byte slices.
func ToInt(val any) int {
	switch v := val.(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case uint32:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	case []byte:
		i, _ := strconv.Atoi(strings.TrimSpace(string(v)))
		return i
	default:
		s := fmt.Sprintf("%v", v)
		i, _ := strconv.Atoi(s)
		return i
	}
}

// ToString converts various types to string. NULL becomes the empty string.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToFloat converts a scanned column value to float64.
// The second return value is false for NULL and for values that do not parse.
func ToFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ReferenceTime converts a column holding seconds since 2001-01-01 UTC into a time.
// NULL, unparseable, non-finite, non-positive and out-of-range values (beyond ~2293, e.g.
// milliseconds stored in a seconds column) yield the zero time.
func ReferenceTime(val any) time.Time {
	secs, ok := ToFloat(val)
	if !ok || secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) || secs >= maxReferenceSeconds {
		return time.Time{}
	}
	whole, frac := math.Modf(secs)
	return referenceEpoch.Add(time.Duration(whole) * time.Second).Add(time.Duration(frac * float64(time.Second)))
}

// ToReferenceSeconds is the inverse of ReferenceTime.
func ToReferenceSeconds(t time.Time) float64 {
	return t.Sub(referenceEpoch).Seconds()
}
