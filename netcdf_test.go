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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNetCDFRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "amdotext")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "selection.nc")

	d := testDataset(t)
	s, err := d.Filter(22, Equal{Variable: MHWEventCat, Value: CategoryStrong})
	if err != nil {
		t.Fatal(err)
	}
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteNetCDF(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Time) != len(s.Time) {
		t.Fatalf("times: %v", r.Time)
	}
	for i := range s.Time {
		if !r.Time[i].Equal(s.Time[i]) {
			t.Errorf("time %d: %v != %v", i, r.Time[i], s.Time[i])
		}
	}
	if !reflect.DeepEqual(r.Depth, []float64{22}) {
		t.Errorf("depth: %v", r.Depth)
	}
	if !reflect.DeepEqual(r.Variables(), s.Variables()) {
		t.Errorf("variables: %v", r.Variables())
	}
	for _, name := range s.Variables() {
		want, _ := s.Var(name)
		have, _ := r.Var(name)
		if !floatsEqual(have.Data.Elements, want.Data.Elements) {
			t.Errorf("%s: %v != %v", name, have.Data.Elements, want.Data.Elements)
		}
		if have.Units() != want.Units() {
			t.Errorf("%s units: %q != %q", name, have.Units(), want.Units())
		}
	}
	if r.Attributes["site_code"] != "PH100" {
		t.Errorf("attributes: %v", r.Attributes)
	}
}

func TestOpenNotNetCDF(t *testing.T) {
	dir, err := ioutil.TempDir("", "amdotext")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "notes.txt")
	if err := ioutil.WriteFile(path, []byte("this is not a netCDF file"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected an error for a text file")
	}
	if _, err := Open(filepath.Join(dir, "missing.nc")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestWriteNetCDFNoDepth(t *testing.T) {
	f, err := ioutil.TempFile("", "amdotext")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	d := testDataset(t)
	s, _ := d.SelectDepth(50)
	err = s.WriteNetCDF(f)
	var es *EmptySelectionError
	if !errors.As(err, &es) {
		t.Errorf("want EmptySelectionError, got %v", err)
	}
}

func TestUnpack(t *testing.T) {
	data := []float64{100, -999, 200}
	attrs := map[string]interface{}{
		"_FillValue":   []int16{-999},
		"scale_factor": []float32{0.01},
		"add_offset":   []float64{10},
		"units":        "degrees_Celsius",
	}
	unpack(data, attrs)
	if math.Abs(data[0]-11) > 1e-6 || !math.IsNaN(data[1]) || math.Abs(data[2]-12) > 1e-6 {
		t.Errorf("%v", data)
	}
	if _, ok := attrs["scale_factor"]; ok {
		t.Error("scale_factor was not removed")
	}
	if _, ok := attrs["_FillValue"]; !ok {
		t.Error("_FillValue should be kept")
	}
}

func TestFlatten(t *testing.T) {
	data, shape, ok := flatten([][]float32{{1, 2, 3}, {4, 5, 6}})
	if !ok {
		t.Fatal("not flattened")
	}
	if !reflect.DeepEqual(shape, []int{2, 3}) || !floatsEqual(data, []float64{1, 2, 3, 4, 5, 6}) {
		t.Errorf("%v %v", shape, data)
	}
	if _, _, ok := flatten([]string{"a"}); ok {
		t.Error("strings should not be flattened")
	}
	data, shape, ok = flatten(int32(7))
	if !ok || len(shape) != 0 || data[0] != 7 {
		t.Errorf("scalar: %v %v %v", data, shape, ok)
	}
}
