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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistic is the mean of a variable over a selection.
type Statistic struct {
	Variable string
	Mean     float64
	Units    string

	// N is the number of non-missing values in the mean.
	N int
}

func (s Statistic) String() string {
	return fmt.Sprintf("%s: %g %s (n=%d)", s.Variable, s.Mean, s.Units, s.N)
}

// Mean returns the arithmetic mean of the non-missing values of the named
// variable. If all values are missing the error is a *NoValidDataError.
func (d *Dataset) Mean(name string) (float64, error) {
	v, err := d.Var(name)
	if err != nil {
		return math.NaN(), err
	}
	valid := nonMissing(v.Data.Elements)
	if len(valid) == 0 {
		return math.NaN(), &NoValidDataError{Variable: name}
	}
	return stat.Mean(valid, nil), nil
}

// Summarize returns the mean of each named variable, rounded to the given
// number of decimal digits.
func (d *Dataset) Summarize(digits int, names ...string) ([]Statistic, error) {
	o := make([]Statistic, len(names))
	for i, name := range names {
		m, err := d.Mean(name)
		if err != nil {
			return nil, err
		}
		v, _ := d.Var(name)
		o[i] = Statistic{
			Variable: name,
			Mean:     Round(m, digits),
			Units:    v.Units(),
			N:        len(nonMissing(v.Data.Elements)),
		}
	}
	return o, nil
}

// MeanDurationDays returns the mean of a duration variable in days. The
// native unit is taken from the variable's "units" attribute. Durations
// stored as a number of samples (no units, "1", or "samples") are
// converted using the sampling interval of d.
func (d *Dataset) MeanDurationDays(name string) (float64, error) {
	m, err := d.Mean(name)
	if err != nil {
		return m, err
	}
	v, _ := d.Var(name)
	f, err := d.daysPerUnit(v.Units())
	if err != nil {
		return math.NaN(), fmt.Errorf("amdotext: variable %s: %v", name, err)
	}
	return m * f, nil
}

// daysPerUnit returns the number of days in one unit of a duration.
func (d *Dataset) daysPerUnit(units string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(units))
	if i := strings.Index(u, " since "); i >= 0 {
		u = u[:i]
	}
	switch u {
	case "", "1", "sample", "samples", "count":
		step, ok := d.SamplingInterval()
		if !ok {
			return 0, fmt.Errorf("unable to determine sampling interval for duration in samples")
		}
		return step.Hours() / 24, nil
	}
	dur, err := unitDuration(u)
	if err != nil {
		return 0, err
	}
	return float64(dur) / float64(24*time.Hour), nil
}

// SamplingInterval returns the sampling interval of the TIME coordinate:
// the smallest positive step between consecutive timestamps of the
// dataset that d was selected from. Filtering out records does not
// change it.
func (d *Dataset) SamplingInterval() (time.Duration, bool) {
	return d.step, d.step > 0
}

// minStep returns the smallest positive step between consecutive times.
func minStep(times []time.Time) time.Duration {
	var step time.Duration
	for i := 1; i < len(times); i++ {
		s := times[i].Sub(times[i-1])
		if s > 0 && (step == 0 || s < step) {
			step = s
		}
	}
	return step
}

// Round rounds x to the given number of decimal digits.
func Round(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return floats.Round(x, digits)
}

func nonMissing(x []float64) []float64 {
	o := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			o = append(o, v)
		}
	}
	return o
}
