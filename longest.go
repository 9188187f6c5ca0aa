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
	"math"
	"time"
)

// Window is an inclusive time interval.
type Window struct {
	Start, End time.Time

	// MaxDuration is the duration value that defined the window, in the
	// native units of the duration variable.
	MaxDuration float64
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Days returns the inclusive length of the window in days for data
// sampled every step, so a window covering three daily samples is three
// days long.
func (w Window) Days(step time.Duration) float64 {
	return (w.Duration() + step).Hours() / 24
}

// LongestEventWindow finds the largest non-missing value of the duration
// variable in d and returns the window from the first to the last
// timestamp at which that value occurs. d is expected to already be
// filtered to a single depth and event class, for example with Filter.
//
// Every timestamp whose duration equals the maximum is included. If two
// separate events share the longest duration, the window spans both of
// them and the records between them.
//
// If every duration value is missing the error is a *NoValidDataError.
func (d *Dataset) LongestEventWindow(durationVar string) (Window, error) {
	v, err := d.Var(durationVar)
	if err != nil {
		return Window{}, err
	}
	max, ok := nanMax(v.Data.Elements)
	if !ok {
		return Window{}, &NoValidDataError{Variable: durationVar}
	}

	ta := v.Axis(TimeDim)
	if ta < 0 {
		// A duration without a TIME axis applies to every timestamp.
		if len(d.Time) == 0 {
			return Window{}, &NoValidDataError{Variable: durationVar}
		}
		start, end := d.TimeRange()
		return Window{Start: start, End: end, MaxDuration: max}, nil
	}

	inner := 1
	for _, n := range v.Data.Shape[ta+1:] {
		inner *= n
	}
	nt := v.Data.Shape[ta]
	first, last := -1, -1
	for i, val := range v.Data.Elements {
		if val != max {
			continue
		}
		t := (i / inner) % nt
		if first < 0 || t < first {
			first = t
		}
		if t > last {
			last = t
		}
	}
	return Window{Start: d.Time[first], End: d.Time[last], MaxDuration: max}, nil
}

// LongestEvent returns the records of d within the window found by
// LongestEventWindow.
func (d *Dataset) LongestEvent(durationVar string) (*Dataset, Window, error) {
	w, err := d.LongestEventWindow(durationVar)
	if err != nil {
		return nil, w, err
	}
	o, err := d.SelectTime(w.Start, w.End)
	return o, w, err
}

// nanMax returns the largest non-NaN value in x and whether there was one.
func nanMax(x []float64) (float64, bool) {
	max := math.Inf(-1)
	found := false
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	return max, found
}
