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
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

var nan = math.NaN()

// testDataset returns eight daily records at depths of 2 and 22 m. At
// 22 m there is a strong marine heatwave lasting three days followed by a
// two-day marine cold spell.
func testDataset(t *testing.T) *Dataset {
	times := make([]time.Time, 8)
	for i := range times {
		times[i] = time.Date(2016, 1, 16+i, 0, 0, 0, 0, time.UTC)
	}
	d := NewDataset(times, []float64{2, 22})
	d.Attributes["site_code"] = "PH100"
	d.TimeAttributes["units"] = DefaultTimeUnits
	d.DepthAttributes["units"] = "m"

	add := func(name, units string, at2, at22 []float64) {
		a := sparse.ZerosDense(len(times), 2)
		for i := range times {
			a.Set(at2[i], i, 0)
			a.Set(at22[i], i, 1)
		}
		attrs := make(map[string]interface{})
		if units != "" {
			attrs["units"] = units
		}
		if err := d.AddVariable(name, []string{TimeDim, DepthDim}, a, attrs); err != nil {
			t.Fatal(err)
		}
	}
	zeros := []float64{0, 0, 0, 0, 0, 0, 0, 0}
	missing := []float64{nan, nan, nan, nan, nan, nan, nan, nan}
	add(Temp, "degrees_Celsius",
		[]float64{20.1, 20.4, 21.0, 21.2, 20.8, 20.0, 19.9, 20.2},
		[]float64{18.0, 19.5, 19.9, 20.1, 18.2, 16.0, 15.8, 17.9})
	add(TempPer90, "degrees_Celsius",
		[]float64{20.5, 20.5, 20.6, 20.6, 20.6, 20.7, 20.7, 20.7},
		[]float64{18.5, 18.5, 18.6, 18.6, 18.6, 18.7, 18.7, 18.7})
	add(TempExtremeIndex, "", zeros, []float64{0, 12, 12, 12, 0, 2, 2, 0})
	add(MHWEventCat, "", zeros, []float64{0, 2, 2, 2, 0, 2, 2, 0})
	add(MHWEventDuration, "days", missing, []float64{nan, 3, 3, 3, nan, 2, 2, nan})
	add(MHWEventIntensityMean, "degrees_Celsius", missing, []float64{nan, 1.2, 1.2, 1.2, nan, 0.4, 0.4, nan})
	add(MHWEventIntensityMax, "degrees_Celsius", missing, []float64{nan, 1.5, 1.5, 1.5, nan, 0.6, 0.6, nan})
	add(MHWEventIntensityCumulative, "degrees_Celsius days", missing, []float64{nan, 3.6, 3.6, 3.6, nan, 0.8, 0.8, nan})
	return d
}

// floatsEqual compares slices, treating NaNs as equal.
func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}

// datasetsEqual reports whether a and b hold the same coordinates and
// variable values.
func datasetsEqual(a, b *Dataset) bool {
	if !reflect.DeepEqual(a.Time, b.Time) || !floatsEqual(a.Depth, b.Depth) {
		return false
	}
	if !reflect.DeepEqual(a.Variables(), b.Variables()) {
		return false
	}
	for _, name := range a.Variables() {
		va, vb := a.vars[name], b.vars[name]
		if !reflect.DeepEqual(va.Dims, vb.Dims) || !reflect.DeepEqual(va.Data.Shape, vb.Data.Shape) {
			return false
		}
		if !floatsEqual(va.Data.Elements, vb.Data.Elements) {
			return false
		}
	}
	return true
}

func TestVar(t *testing.T) {
	d := testDataset(t)
	v, err := d.Var(Temp)
	if err != nil {
		t.Fatal(err)
	}
	if v.Units() != "degrees_Celsius" {
		t.Errorf("units: %q", v.Units())
	}
	if v.Axis(DepthDim) != 1 || v.Axis("LATITUDE") != -1 {
		t.Errorf("axes: %d, %d", v.Axis(DepthDim), v.Axis("LATITUDE"))
	}
	_, err = d.Var("DOES_NOT_EXIST")
	var uv *UnknownVariableError
	if !errors.As(err, &uv) || uv.Name != "DOES_NOT_EXIST" {
		t.Errorf("want UnknownVariableError, got %v", err)
	}
}

func TestAddVariableShape(t *testing.T) {
	d := testDataset(t)
	err := d.AddVariable("BAD", []string{TimeDim, DepthDim}, sparse.ZerosDense(7, 2), nil)
	if err == nil {
		t.Error("expected an error for a TIME length mismatch")
	}
	err = d.AddVariable("BAD", []string{TimeDim}, sparse.ZerosDense(8, 2), nil)
	if err == nil {
		t.Error("expected an error for a dimension count mismatch")
	}
}

func TestRename(t *testing.T) {
	d := testDataset(t)
	r, err := d.Rename(map[string]string{TempPer90: "PER90"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Var("PER90"); err != nil {
		t.Error(err)
	}
	if _, err := r.Var(TempPer90); err == nil {
		t.Error("old name still present in renamed dataset")
	}
	if _, err := d.Var(TempPer90); err != nil {
		t.Error("input dataset was modified by Rename")
	}
	if _, err := d.Rename(map[string]string{"DOES_NOT_EXIST": "X"}); err == nil {
		t.Error("expected an error for an unknown variable")
	}
	if _, err := d.Rename(map[string]string{TempPer90: Temp}); err == nil {
		t.Error("expected an error when renaming onto an existing variable")
	}
	if _, err := d.Rename(map[string]string{TempPer90: "X", Temp: "X"}); err == nil {
		t.Error("expected an error when two variables get the same name")
	}
	if _, err := d.Var(Temp); err != nil {
		t.Error("input dataset was modified by a failed Rename")
	}
}

func TestSelectionsAreIndependent(t *testing.T) {
	d := testDataset(t)
	before := testDataset(t)
	s, err := d.SelectDepth(22)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := s.Var(Temp)
	for i := range v.Data.Elements {
		v.Data.Elements[i] = -1
	}
	s.Time[0] = time.Time{}
	if !datasetsEqual(d, before) {
		t.Error("changing a selection changed the input dataset")
	}
}
