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
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// FillValue is the _FillValue written for missing data when a variable
// does not already define one.
const FillValue = 99999.0

var (
	cdfMagic  = []byte("CDF")
	hdf5Magic = []byte("\x89HDF\r\n\x1a\n")
)

// Open reads the netCDF file at path into memory. Classic netCDF
// (versions 1 and 2) and netCDF-4 (HDF5) files are supported. The file
// is closed before Open returns.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("amdotext: opening dataset: %v", err)
	}
	defer f.Close()

	magic := make([]byte, len(hdf5Magic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("amdotext: reading %s: %v", path, err)
	}
	switch {
	case bytes.HasPrefix(magic, cdfMagic):
		fi, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("amdotext: reading %s: %v", path, err)
		}
		d, err := OpenCDF(f, fi.Size())
		if err != nil {
			return nil, fmt.Errorf("amdotext: reading %s: %v", path, err)
		}
		return d, nil
	case bytes.Equal(magic, hdf5Magic):
		return openNetCDF4(path)
	default:
		return nil, fmt.Errorf("amdotext: %s is not a netCDF file", path)
	}
}

// OpenCDF reads a classic netCDF dataset of the given size in bytes into
// memory. The size is needed to find the number of records along an
// unlimited dimension. The file must have a TIME coordinate variable and
// may have a DEPTH coordinate variable. Character variables are skipped.
func OpenCDF(rw cdf.ReaderWriterAt, size int64) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("amdotext: %v", err)
	}
	nrec := int(f.Header.NumRecs(size))
	timeVals, _, timeAttrs, err := readCDFVar(f, TimeDim, nrec)
	if err != nil {
		return nil, err
	}
	if timeVals == nil {
		return nil, &UnknownVariableError{Name: TimeDim}
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
	if hasVariable(f.Header.Variables(), DepthDim) {
		depths, _, depthAttrs, err = readCDFVar(f, DepthDim, nrec)
		if err != nil {
			return nil, err
		}
	}

	d := NewDataset(times, depths)
	d.TimeAttributes = timeAttrs
	d.DepthAttributes = depthAttrs
	d.Attributes = cdfAttributes(f.Header, "")

	for _, name := range f.Header.Variables() {
		if name == TimeDim || name == DepthDim {
			continue
		}
		data, shape, attrs, err := readCDFVar(f, name, nrec)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		a := sparse.ZerosDense(shape...)
		copy(a.Elements, data)
		if err := d.AddVariable(name, f.Header.Dimensions(name), a, attrs); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func hasVariable(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// readCDFVar reads a numeric variable from a classic netCDF file, with
// missing values set to NaN and packed values unpacked. nrec is the number
// of records along the unlimited dimension, if any. It returns nil data if
// the variable is not numeric.
func readCDFVar(f *cdf.File, name string, nrec int) ([]float64, []int, map[string]interface{}, error) {
	if !hasVariable(f.Header.Variables(), name) {
		return nil, nil, nil, &UnknownVariableError{Name: name}
	}
	if _, ok := f.Header.ZeroValue(name, 0).(string); ok {
		return nil, nil, nil, nil
	}
	shape := append([]int{}, f.Header.Lengths(name)...)
	if f.Header.IsRecordVariable(name) {
		shape[0] = nrec
	}
	n := 1
	for _, l := range shape {
		n *= l
	}
	attrs := cdfAttributes(f.Header, name)
	if n == 0 {
		return []float64{}, shape, attrs, nil
	}

	start := make([]int, len(shape))
	end := make([]int, len(shape))
	for i, l := range shape {
		end[i] = l - 1
	}
	r := f.Reader(name, start, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return nil, nil, nil, fmt.Errorf("amdotext: reading variable %s: %v", name, err)
	}
	data, ok := toFloat64s(buf)
	if !ok {
		return nil, nil, nil, nil
	}
	unpack(data, attrs)
	return data, shape, attrs, nil
}

func cdfAttributes(h *cdf.Header, name string) map[string]interface{} {
	o := make(map[string]interface{})
	for _, a := range h.Attributes(name) {
		o[a] = h.GetAttribute(name, a)
	}
	return o
}

// unpack replaces missing values with NaN and applies the CF
// scale_factor and add_offset attributes, which are then removed.
func unpack(data []float64, attrs map[string]interface{}) {
	var missing []float64
	for _, a := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloats(attrs[a]); ok {
			missing = append(missing, v...)
		}
	}
	scale, offset := 1.0, 0.0
	if v, ok := attrFloats(attrs["scale_factor"]); ok && len(v) > 0 {
		scale = v[0]
	}
	if v, ok := attrFloats(attrs["add_offset"]); ok && len(v) > 0 {
		offset = v[0]
	}
	for i, v := range data {
		for _, m := range missing {
			if v == m {
				v = math.NaN()
				break
			}
		}
		data[i] = v*scale + offset
	}
	delete(attrs, "scale_factor")
	delete(attrs, "add_offset")
}

// toFloat64s converts a numeric slice to []float64.
func toFloat64s(buf interface{}) ([]float64, bool) {
	switch b := buf.(type) {
	case []float64:
		return b, true
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, true
	case []int64:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, true
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, true
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, true
	case []int8:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, true
	case []uint8:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, true
	default:
		return nil, false
	}
}

// attrFloats converts a numeric attribute value to []float64.
func attrFloats(a interface{}) ([]float64, bool) {
	switch v := a.(type) {
	case nil, string:
		return nil, false
	case float64:
		return []float64{v}, true
	case float32:
		return []float64{float64(v)}, true
	case int64:
		return []float64{float64(v)}, true
	case int32:
		return []float64{float64(v)}, true
	case int16:
		return []float64{float64(v)}, true
	case int8:
		return []float64{float64(v)}, true
	case uint8:
		return []float64{float64(v)}, true
	case int:
		return []float64{float64(v)}, true
	default:
		return toFloat64s(a)
	}
}

// cdfAttribute converts an attribute value to a type that can be
// written to a classic netCDF file.
func cdfAttribute(a interface{}) (interface{}, bool) {
	switch v := a.(type) {
	case string, []float64, []float32, []int32, []int16, []uint8:
		return v, true
	case []int64, []int8, int64, int32, int16, int8, uint8, int:
		f, _ := attrFloats(v)
		o := make([]int32, len(f))
		for i, x := range f {
			o[i] = int32(x)
		}
		return o, true
	case float64, float32:
		f, _ := attrFloats(v)
		return f, true
	default:
		return nil, false
	}
}

func addAttributes(h *cdf.Header, name string, attrs map[string]interface{}) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := cdfAttribute(attrs[k]); ok {
			h.AddAttribute(name, k, v)
		}
	}
}

// WriteNetCDF writes d to w as a classic netCDF file. All variables are
// written as doubles, with missing values stored as the variable's
// _FillValue, or FillValue if it has none.
func (d *Dataset) WriteNetCDF(w *os.File) error {
	names := d.Variables()

	// A TIME length of zero makes TIME the unlimited dimension, so no other
	// dimension may be empty.
	dims := []string{TimeDim}
	lengths := []int{len(d.Time)}
	hasDepth := len(d.Depth) > 0
	for _, name := range names {
		hasDepth = hasDepth || d.vars[name].Axis(DepthDim) >= 0
	}
	if hasDepth {
		dims = append(dims, DepthDim)
		lengths = append(lengths, len(d.Depth))
	}
	for _, name := range names {
		v := d.vars[name]
		for i, dim := range v.Dims {
			if !hasVariable(dims, dim) {
				dims = append(dims, dim)
				lengths = append(lengths, v.Data.Shape[i])
			}
		}
	}
	for i, l := range lengths[1:] {
		if l == 0 {
			return &EmptySelectionError{Reason: fmt.Sprintf("dimension %s is empty", dims[i+1])}
		}
	}
	h := cdf.NewHeader(dims, lengths)
	addAttributes(h, "", d.Attributes)

	timeUnits, _ := d.TimeAttributes["units"].(string)
	if timeUnits == "" {
		timeUnits = DefaultTimeUnits
	}
	timeVals, err := encodeTimes(d.Time, timeUnits)
	if err != nil {
		return err
	}
	timeAttrs := copyAttributes(d.TimeAttributes)
	timeAttrs["units"] = timeUnits
	delete(timeAttrs, "_FillValue")
	h.AddVariable(TimeDim, []string{TimeDim}, []float64{0})
	addAttributes(h, TimeDim, timeAttrs)

	if hasDepth {
		h.AddVariable(DepthDim, []string{DepthDim}, []float64{0})
		depthAttrs := copyAttributes(d.DepthAttributes)
		delete(depthAttrs, "_FillValue")
		addAttributes(h, DepthDim, depthAttrs)
	}

	fills := make(map[string]float64, len(names))
	for _, name := range names {
		v := d.vars[name]
		attrs := copyAttributes(v.Attributes)
		fill := FillValue
		if f, ok := attrFloats(attrs["_FillValue"]); ok && len(f) > 0 {
			fill = f[0]
		}
		attrs["_FillValue"] = []float64{fill}
		delete(attrs, "missing_value")
		fills[name] = fill
		h.AddVariable(name, v.Dims, []float64{0})
		addAttributes(h, name, attrs)
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("amdotext: creating netCDF file: %v", err)
	}
	if err := writeNCF(f, TimeDim, timeVals); err != nil {
		return err
	}
	if hasDepth {
		if err := writeNCF(f, DepthDim, d.Depth); err != nil {
			return err
		}
	}
	for _, name := range names {
		v := d.vars[name]
		data := make([]float64, len(v.Data.Elements))
		for i, e := range v.Data.Elements {
			if math.IsNaN(e) {
				e = fills[name]
			}
			data[i] = e
		}
		if err := writeNCF(f, name, data); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, name string, data []float64) error {
	if len(data) == 0 {
		return nil
	}
	end := f.Header.Lengths(name)
	n := 1
	for _, l := range end {
		n *= l
	}
	if n != len(data) {
		return fmt.Errorf("amdotext: writing variable %s: dims are %d but array length is %d", name, n, len(data))
	}
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("amdotext: writing variable %s: %v", name, err)
	}
	return nil
}
