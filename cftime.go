/*
Copyright © 2022 the amdotext authors.
This file is part of amdotext.

amdotext is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

amdotext is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with amdotext.  If not, see <http://www.gnu.org/licenses/>.
*/

package amdotext

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultTimeUnits are the CF time units used by the IMOS data products.
const DefaultTimeUnits = "days since 1950-01-01 00:00:00 UTC"

var referenceFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z",
	"2006-01-02 15:04",
	"2006-01-02",
}

// unitDuration returns the length of one CF time unit.
func unitDuration(u string) (time.Duration, error) {
	switch strings.ToLower(u) {
	case "days", "day", "d":
		return 24 * time.Hour, nil
	case "hours", "hour", "hr", "h":
		return time.Hour, nil
	case "minutes", "minute", "min":
		return time.Minute, nil
	case "seconds", "second", "sec", "s":
		return time.Second, nil
	case "milliseconds", "millisecond", "ms":
		return time.Millisecond, nil
	case "microseconds", "microsecond", "us":
		return time.Microsecond, nil
	case "nanoseconds", "nanosecond", "ns":
		return time.Nanosecond, nil
	default:
		return 0, fmt.Errorf("unsupported time unit %q", u)
	}
}

// parseTimeUnits parses CF time units of the form
// "<unit> since <reference time>".
func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("amdotext: invalid time units %q", units)
	}
	step, err := unitDuration(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("amdotext: time units %q: %v", units, err)
	}
	ref := strings.TrimSpace(parts[1])
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, " utc")
	for _, f := range referenceFormats {
		if t, err := time.Parse(f, ref); err == nil {
			return step, t, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("amdotext: invalid reference time in units %q", units)
}

// decodeTimes converts CF time values to times.
func decodeTimes(values []float64, units string) ([]time.Time, error) {
	step, ref, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	o := make([]time.Time, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("amdotext: missing TIME value at index %d", i)
		}
		o[i] = ref.Add(time.Duration(math.Round(v * float64(step))))
	}
	return o, nil
}

// encodeTimes converts times to CF time values.
func encodeTimes(times []time.Time, units string) ([]float64, error) {
	step, ref, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(times))
	for i, t := range times {
		o[i] = float64(t.Sub(ref)) / float64(step)
	}
	return o, nil
}
