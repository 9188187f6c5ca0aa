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
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
)

// openNetCDF4 reads a netCDF-4 (HDF5) file into memory.
func openNetCDF4(path string) (*Dataset, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("amdotext: opening netCDF-4 file %s: %v", path, err)
	}
	defer g.Close()

	names := g.ListVariables()
	if !hasVariable(names, TimeDim) {
		return nil, &UnknownVariableError{Name: TimeDim}
	}
	timeVals, _, timeAttrs, err := readNC4Var(g, TimeDim)
	if err != nil {
		return nil, err
	}
	units, _ := timeAttrs["units"].(string)
	if units == "" {
		units = DefaultTimeUnits
	}
	times, err := decodeTimes(timeVals, units)
	if err != nil {
		return nil, err
	}

	var depths []float64
	depthAttrs := make(map[string]interface{})
	if hasVariable(names, DepthDim) {
		depths, _, depthAttrs, err = readNC4Var(g, DepthDim)
		if err != nil {
			return nil, err
		}
	}

	d := NewDataset(times, depths)
	d.TimeAttributes = timeAttrs
	d.DepthAttributes = depthAttrs
	d.Attributes = nc4Attributes(g.Attributes())

	for _, name := range names {
		if name == TimeDim || name == DepthDim {
			continue
		}
		data, shape, attrs, err := readNC4Var(g, name)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		v, _ := g.GetVariable(name)
		a := sparse.ZerosDense(shape...)
		copy(a.Elements, data)
		if err := d.AddVariable(name, v.Dimensions, a, attrs); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// readNC4Var reads a numeric variable from a netCDF-4 file. It returns nil
// data if the variable is not numeric.
func readNC4Var(g api.Group, name string) ([]float64, []int, map[string]interface{}, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("amdotext: reading variable %s: %v", name, err)
	}
	data, shape, ok := flatten(v.Values)
	if !ok {
		return nil, nil, nil, nil
	}
	if len(shape) != len(v.Dimensions) {
		return nil, nil, nil, fmt.Errorf("amdotext: variable %s has %d dimensions but %d-d data", name, len(v.Dimensions), len(shape))
	}
	attrs := nc4Attributes(v.Attributes)
	unpack(data, attrs)
	return data, shape, attrs, nil
}

func nc4Attributes(m api.AttributeMap) map[string]interface{} {
	o := make(map[string]interface{})
	if m == nil {
		return o
	}
	for _, k := range m.Keys() {
		if v, ok := m.Get(k); ok {
			o[k] = v
		}
	}
	return o
}

// flatten converts a scalar or (nested) numeric slice into a flat,
// row-major []float64 and its shape.
func flatten(values interface{}) ([]float64, []int, bool) {
	if f, ok := attrFloats(values); ok && reflect.ValueOf(values).Kind() != reflect.Slice {
		return f, []int{}, true
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice {
		return nil, nil, false
	}
	var shape []int
	for t := rv; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}
	var o []float64
	ok := true
	var walk func(v reflect.Value, depth int)
	walk = func(v reflect.Value, depth int) {
		if !ok {
			return
		}
		if depth == len(shape)-1 {
			if v.Len() != shape[depth] {
				ok = false
				return
			}
			f, isNum := toFloat64s(v.Interface())
			if !isNum {
				ok = false
				return
			}
			o = append(o, f...)
			return
		}
		if v.Kind() != reflect.Slice || v.Len() != shape[depth] {
			ok = false
			return
		}
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), depth+1)
		}
	}
	walk(rv, 0)
	if !ok {
		return nil, nil, false
	}
	return o, shape, true
}
