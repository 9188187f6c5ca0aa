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
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

func TestMean(t *testing.T) {
	times := []time.Time{day(1), day(2), day(3), day(4)}
	d := NewDataset(times, []float64{22})
	a := sparse.ZerosDense(4, 1)
	for i, v := range []float64{1, 2, math.NaN(), 3} {
		a.Set(v, i, 0)
	}
	if err := d.AddVariable(MHWEventIntensityMax, []string{TimeDim, DepthDim}, a, nil); err != nil {
		t.Fatal(err)
	}
	m, err := d.Mean(MHWEventIntensityMax)
	if err != nil {
		t.Fatal(err)
	}
	if m != 2 {
		t.Errorf("mean: %g", m)
	}
}

func TestMeanAllMissing(t *testing.T) {
	d := testDataset(t)
	s, err := d.SelectDepth(2)
	if err != nil {
		t.Fatal(err)
	}
	m, err := s.Mean(MHWEventIntensityMean)
	var nv *NoValidDataError
	if !errors.As(err, &nv) {
		t.Errorf("want NoValidDataError, got %v", err)
	}
	if !math.IsNaN(m) {
		t.Errorf("mean: %g", m)
	}
}

func TestSummarize(t *testing.T) {
	d := testDataset(t)
	f, err := d.Filter(22, Equal{Variable: TempExtremeIndex, Value: MarineHeatwave})
	if err != nil {
		t.Fatal(err)
	}
	s, err := f.Summarize(2, MHWEventIntensityMax, Temp)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 2 {
		t.Fatalf("statistics: %v", s)
	}
	if s[0].Mean != 1.5 || s[0].Units != "degrees_Celsius" || s[0].N != 3 {
		t.Errorf("%v", s[0])
	}
	// (19.5 + 19.9 + 20.1) / 3 = 19.8333...
	if s[1].Mean != 19.83 {
		t.Errorf("%v", s[1])
	}
	if _, err := f.Summarize(2, "NOPE"); err == nil {
		t.Error("expected an error for an unknown variable")
	}
}

func TestMeanDurationDays(t *testing.T) {
	times := []time.Time{day(1), day(2), day(3)}
	for _, test := range []struct {
		units string
		data  []float64
		want  float64
	}{
		{units: "days", data: []float64{3, 3, 3}, want: 3},
		{units: "hours", data: []float64{72, 72, 72}, want: 3},
		{units: "", data: []float64{3, 3, 3}, want: 3},
		{units: "samples", data: []float64{2, 4, math.NaN()}, want: 3},
	} {
		t.Run(test.units, func(t *testing.T) {
			d := NewDataset(times, []float64{22})
			a := sparse.ZerosDense(3, 1)
			for i, v := range test.data {
				a.Set(v, i, 0)
			}
			attrs := map[string]interface{}{}
			if test.units != "" {
				attrs["units"] = test.units
			}
			if err := d.AddVariable(MHWEventDuration, []string{TimeDim, DepthDim}, a, attrs); err != nil {
				t.Fatal(err)
			}
			got, err := d.MeanDurationDays(MHWEventDuration)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-test.want) > 1e-12 {
				t.Errorf("%g != %g", got, test.want)
			}
		})
	}
}

func TestMeanDurationDaysAfterFilter(t *testing.T) {
	// Two one-sample heatwaves ten days apart in a daily record.
	times := make([]time.Time, 12)
	for i := range times {
		times[i] = day(i + 1)
	}
	d := NewDataset(times, []float64{22})
	index := sparse.ZerosDense(12, 1)
	duration := sparse.ZerosDense(12, 1)
	for i := range times {
		duration.Set(math.NaN(), i, 0)
	}
	for _, i := range []int{1, 11} {
		index.Set(MarineHeatwave, i, 0)
		duration.Set(1, i, 0)
	}
	if err := d.AddVariable(TempExtremeIndex, []string{TimeDim, DepthDim}, index, nil); err != nil {
		t.Fatal(err)
	}
	attrs := map[string]interface{}{"units": "samples"}
	if err := d.AddVariable(MHWEventDuration, []string{TimeDim, DepthDim}, duration, attrs); err != nil {
		t.Fatal(err)
	}

	f, err := d.Filter(22, Equal{Variable: TempExtremeIndex, Value: MarineHeatwave})
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 2 {
		t.Fatalf("filtered %d records", f.Len())
	}
	s, err := d.SelectTime(day(2), day(2))
	if err != nil {
		t.Fatal(err)
	}
	for name, sel := range map[string]*Dataset{"unfiltered": d, "filtered": f, "single": s} {
		got, err := sel.MeanDurationDays(MHWEventDuration)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if got != 1 {
			t.Errorf("%s: %g days, want 1", name, got)
		}
	}
}

func TestSamplingInterval(t *testing.T) {
	d := NewDataset([]time.Time{day(1), day(2), day(5)}, []float64{1})
	step, ok := d.SamplingInterval()
	if !ok || step != 24*time.Hour {
		t.Errorf("%v, %v", step, ok)
	}
	d = NewDataset([]time.Time{day(1)}, []float64{1})
	if _, ok := d.SamplingInterval(); ok {
		t.Error("a single timestamp has no sampling interval")
	}
}

func TestRound(t *testing.T) {
	if r := Round(1.23456, 2); r != 1.23 {
		t.Errorf("%g", r)
	}
	if r := Round(math.NaN(), 2); !math.IsNaN(r) {
		t.Errorf("%g", r)
	}
}
