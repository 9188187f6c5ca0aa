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
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// Variable is a named array in a Dataset. Data is stored in row-major
// order with one axis per entry in Dims. Missing values are NaN.
type Variable struct {
	Name       string
	Dims       []string
	Attributes map[string]interface{}
	Data       *sparse.DenseArray
}

// Axis returns the index of dimension dim in v.Dims, or -1 if v does not
// vary along dim.
func (v *Variable) Axis(dim string) int {
	for i, d := range v.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// Units returns the value of the "units" attribute, or an empty string.
func (v *Variable) Units() string {
	if u, ok := v.Attributes["units"].(string); ok {
		return u
	}
	return ""
}

// at returns the value of v at time index t and depth index k. Dimensions
// other than TIME and DEPTH are read at index 0.
func (v *Variable) at(t, k int) float64 {
	index := make([]int, len(v.Dims))
	for i, d := range v.Dims {
		switch d {
		case TimeDim:
			index[i] = t
		case DepthDim:
			index[i] = k
		}
	}
	return v.Data.Get(index...)
}

// pointwise returns an error if v cannot be read one value per (TIME, DEPTH)
// pair.
func (v *Variable) pointwise() error {
	for i, d := range v.Dims {
		if d != TimeDim && d != DepthDim && v.Data.Shape[i] != 1 {
			return fmt.Errorf("amdotext: variable %s varies along dimension %s", v.Name, d)
		}
	}
	return nil
}

// Dataset is a read-only collection of variables indexed along the TIME
// and DEPTH dimensions. Selections return new Datasets; the receiver is
// never changed.
type Dataset struct {
	// Time holds the TIME coordinate, in increasing order.
	Time []time.Time

	// Depth holds the DEPTH coordinate [m].
	Depth []float64

	// Attributes holds the global attributes.
	Attributes map[string]interface{}

	// TimeAttributes and DepthAttributes hold the attributes of the
	// coordinate variables.
	TimeAttributes, DepthAttributes map[string]interface{}

	// step is the sampling interval of the TIME coordinate the dataset
	// was created with. Selections keep it even when they leave gaps.
	step time.Duration

	vars map[string]*Variable
}

// NewDataset returns an empty dataset with the given coordinates.
// Variables are added with AddVariable.
func NewDataset(times []time.Time, depths []float64) *Dataset {
	return &Dataset{
		Time:            times,
		Depth:           depths,
		Attributes:      make(map[string]interface{}),
		TimeAttributes:  make(map[string]interface{}),
		DepthAttributes: make(map[string]interface{}),
		step:            minStep(times),
		vars:            make(map[string]*Variable),
	}
}

// AddVariable adds a variable to d while it is being built. The length of
// any TIME or DEPTH axis must match the dataset coordinates.
func (d *Dataset) AddVariable(name string, dims []string, data *sparse.DenseArray, attrs map[string]interface{}) error {
	if len(dims) != len(data.Shape) {
		return fmt.Errorf("amdotext: variable %s has %d dimensions but data has %d", name, len(dims), len(data.Shape))
	}
	for i, dim := range dims {
		switch dim {
		case TimeDim:
			if data.Shape[i] != len(d.Time) {
				return fmt.Errorf("amdotext: variable %s: TIME length %d != %d", name, data.Shape[i], len(d.Time))
			}
		case DepthDim:
			if data.Shape[i] != len(d.Depth) {
				return fmt.Errorf("amdotext: variable %s: DEPTH length %d != %d", name, data.Shape[i], len(d.Depth))
			}
		}
	}
	if attrs == nil {
		attrs = make(map[string]interface{})
	}
	d.vars[name] = &Variable{Name: name, Dims: dims, Attributes: attrs, Data: data}
	return nil
}

// Var returns the named variable.
func (d *Dataset) Var(name string) (*Variable, error) {
	v, ok := d.vars[name]
	if !ok {
		return nil, &UnknownVariableError{Name: name}
	}
	return v, nil
}

// Variables returns the sorted variable names.
func (d *Dataset) Variables() []string {
	names := make([]string, 0, len(d.vars))
	for n := range d.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of timestamps in d.
func (d *Dataset) Len() int { return len(d.Time) }

// TimeRange returns the first and last timestamps. Both are zero if d is
// empty.
func (d *Dataset) TimeRange() (start, end time.Time) {
	if len(d.Time) == 0 {
		return
	}
	return d.Time[0], d.Time[len(d.Time)-1]
}

// depthIndex returns the index of depth in d.Depth.
func (d *Dataset) depthIndex(depth float64) (int, bool) {
	for i, dd := range d.Depth {
		if math.Abs(dd-depth) < 1.e-6 {
			return i, true
		}
	}
	return -1, false
}

// Rename returns a copy of d with variables renamed according to names,
// which maps old names to new names. Two variables may not end up with
// the same name.
func (d *Dataset) Rename(names map[string]string) (*Dataset, error) {
	for old := range names {
		if _, ok := d.vars[old]; !ok {
			return nil, &UnknownVariableError{Name: old}
		}
	}
	o := d.derive(nil, nil)
	vars := make(map[string]*Variable, len(o.vars))
	for name, v := range o.vars {
		if n, ok := names[name]; ok {
			name = n
		}
		if _, ok := vars[name]; ok {
			return nil, fmt.Errorf("amdotext: renaming would create two variables named %s", name)
		}
		v.Name = name
		vars[name] = v
	}
	o.vars = vars
	return o, nil
}

// derive returns a new dataset holding the given TIME and DEPTH indices of
// d. A nil index slice keeps the whole dimension.
func (d *Dataset) derive(timeIdx, depthIdx []int) *Dataset {
	o := &Dataset{
		Time:            d.Time,
		Depth:           d.Depth,
		Attributes:      copyAttributes(d.Attributes),
		TimeAttributes:  copyAttributes(d.TimeAttributes),
		DepthAttributes: copyAttributes(d.DepthAttributes),
		step:            d.step,
		vars:            make(map[string]*Variable, len(d.vars)),
	}
	if timeIdx != nil {
		o.Time = make([]time.Time, len(timeIdx))
		for i, t := range timeIdx {
			o.Time[i] = d.Time[t]
		}
	} else {
		o.Time = append([]time.Time{}, d.Time...)
	}
	if depthIdx != nil {
		o.Depth = make([]float64, len(depthIdx))
		for i, k := range depthIdx {
			o.Depth[i] = d.Depth[k]
		}
	} else {
		o.Depth = append([]float64{}, d.Depth...)
	}
	for name, v := range d.vars {
		data := v.Data
		if a := v.Axis(TimeDim); a >= 0 && timeIdx != nil {
			data = takeAxis(data, a, timeIdx)
		}
		if a := v.Axis(DepthDim); a >= 0 && depthIdx != nil {
			data = takeAxis(data, a, depthIdx)
		}
		if data == v.Data {
			data = copyDense(data)
		}
		o.vars[name] = &Variable{
			Name:       name,
			Dims:       append([]string{}, v.Dims...),
			Attributes: copyAttributes(v.Attributes),
			Data:       data,
		}
	}
	return o
}

// takeAxis returns the elements of a at the given indices along axis.
func takeAxis(a *sparse.DenseArray, axis int, idx []int) *sparse.DenseArray {
	shape := append([]int{}, a.Shape...)
	outer, inner := 1, 1
	for _, n := range shape[:axis] {
		outer *= n
	}
	for _, n := range shape[axis+1:] {
		inner *= n
	}
	n := shape[axis]
	shape[axis] = len(idx)
	o := sparse.ZerosDense(shape...)
	for i := 0; i < outer; i++ {
		for j, jj := range idx {
			copy(o.Elements[(i*len(idx)+j)*inner:(i*len(idx)+j+1)*inner],
				a.Elements[(i*n+jj)*inner:(i*n+jj+1)*inner])
		}
	}
	return o
}

func copyDense(a *sparse.DenseArray) *sparse.DenseArray {
	o := sparse.ZerosDense(a.Shape...)
	copy(o.Elements, a.Elements)
	return o
}

func copyAttributes(a map[string]interface{}) map[string]interface{} {
	o := make(map[string]interface{}, len(a))
	for k, v := range a {
		o[k] = v
	}
	return o
}
