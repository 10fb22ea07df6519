package table

import (
	"math"
	"strconv"
	"time"
)

// Value is a single cell. Exactly one payload field is meaningful, selected by
// the owning column's storage type.
type Value struct {
	Missing bool
	Num     float64
	Bool    bool
	Time    time.Time
	Dur     time.Duration
	Str     string
}

// Null returns a missing value.
func Null() Value { return Value{Missing: true} }

// Num returns a numeric value; NaN is treated as missing.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{Num: f}
}

// Str returns a text value; the empty string is treated as missing.
func Str(s string) Value {
	if s == "" {
		return Null()
	}
	return Value{Str: s}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Bool: b} }

// TimeValue returns a date/time value; the zero time is treated as missing.
func TimeValue(t time.Time) Value {
	if t.IsZero() {
		return Null()
	}
	return Value{Time: t}
}

// DurationValue returns a duration value.
func DurationValue(d time.Duration) Value { return Value{Dur: d} }

// FormatValue renders v as text for the given storage type. Integral floats keep
// a trailing ".0" so that 1.0 and 1 stay distinguishable, the way a dataframe
// prints them. Missing values render as "".
func FormatValue(st StorageType, v Value) string {
	if v.Missing {
		return ""
	}
	switch st {
	case Int64:
		return strconv.FormatInt(int64(v.Num), 10)
	case Float64:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1e15 {
			return strconv.FormatFloat(v.Num, 'f', 1, 64)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.Bool)
	case DateTime:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format(time.RFC3339Nano)
	case Duration:
		return v.Dur.String()
	default:
		return v.Str
	}
}
