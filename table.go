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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// Table is a two-dimensional view of a dataset with one row per
// timestamp and one column per variable and depth.
type Table struct {
	Time    []time.Time
	Columns []string

	// Values holds the data in column-major order: Values[column][row].
	Values [][]float64
}

// Table returns the named variables of d as a table. If no names are
// given, all variables with a TIME dimension are included. Variables
// with a DEPTH dimension get one column per depth, named for example
// "TEMP 2m", unless d holds a single depth.
func (d *Dataset) Table(names ...string) (*Table, error) {
	if len(names) == 0 {
		for _, name := range d.Variables() {
			if d.vars[name].Axis(TimeDim) >= 0 && d.vars[name].pointwise() == nil {
				names = append(names, name)
			}
		}
	}
	t := &Table{Time: append([]time.Time{}, d.Time...)}
	for _, name := range names {
		v, err := d.Var(name)
		if err != nil {
			return nil, err
		}
		if v.Axis(TimeDim) < 0 {
			return nil, fmt.Errorf("amdotext: variable %s has no TIME dimension", name)
		}
		if err := v.pointwise(); err != nil {
			return nil, err
		}
		if v.Axis(DepthDim) < 0 || len(d.Depth) == 1 {
			t.Columns = append(t.Columns, name)
			t.Values = append(t.Values, column(v, len(d.Time), 0))
			continue
		}
		for k, depth := range d.Depth {
			t.Columns = append(t.Columns, fmt.Sprintf("%s %gm", name, depth))
			t.Values = append(t.Values, column(v, len(d.Time), k))
		}
	}
	return t, nil
}

func column(v *Variable, n, k int) []float64 {
	o := make([]float64, n)
	for t := range o {
		o[t] = v.at(t, k)
	}
	return o
}

// Rename returns a copy of t with columns renamed according to names,
// which maps old column names to new ones. Two columns may not end up
// with the same name.
func (t *Table) Rename(names map[string]string) (*Table, error) {
	o := &Table{
		Time:    append([]time.Time{}, t.Time...),
		Columns: make([]string, len(t.Columns)),
		Values:  make([][]float64, len(t.Values)),
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		if n, ok := names[c]; ok {
			c = n
		}
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("amdotext: renaming would create two columns named %q", c)
		}
		seen[c] = struct{}{}
		o.Columns[i] = c
		o.Values[i] = append([]float64{}, t.Values[i]...)
	}
	return o, nil
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	for i, c := range t.Columns {
		if c == name {
			return t.Values[i], nil
		}
	}
	return nil, &UnknownVariableError{Name: name}
}

// MergeTables joins a and b on TIME, keeping only the timestamps present
// in both.
func MergeTables(a, b *Table) (*Table, error) {
	seen := make(map[string]struct{}, len(a.Columns))
	for _, c := range a.Columns {
		seen[c] = struct{}{}
	}
	for _, c := range b.Columns {
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("amdotext: merging tables: duplicate column %q", c)
		}
	}
	bRows := make(map[int64]int, len(b.Time))
	for i, t := range b.Time {
		bRows[t.UnixNano()] = i
	}
	o := &Table{
		Columns: append(append([]string{}, a.Columns...), b.Columns...),
		Values:  make([][]float64, len(a.Columns)+len(b.Columns)),
	}
	for i, t := range a.Time {
		j, ok := bRows[t.UnixNano()]
		if !ok {
			continue
		}
		o.Time = append(o.Time, t)
		for c := range a.Columns {
			o.Values[c] = append(o.Values[c], a.Values[c][i])
		}
		for c := range b.Columns {
			o.Values[len(a.Columns)+c] = append(o.Values[len(a.Columns)+c], b.Values[c][j])
		}
	}
	return o, nil
}

// WriteCSV writes t as comma-separated values with a header row. The
// first column is TIME; missing values are written as empty cells.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{TimeDim}, t.Columns...)); err != nil {
		return err
	}
	row := make([]string, len(t.Columns)+1)
	for i, tt := range t.Time {
		row[0] = tt.Format(timeFormat)
		for c := range t.Columns {
			row[c+1] = formatFloat(t.Values[c][i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var eventHeader = []string{
	"EVENT", "DEPTH", "INDEX", "TYPE", "START", "END", "SAMPLES",
	"CATEGORY", "CATEGORY_LABEL", "DURATION",
	"INTENSITY_MEAN", "INTENSITY_MAX", "INTENSITY_CUMULATIVE",
}

func eventRow(e Event) []string {
	category := ""
	if !math.IsNaN(e.Category) {
		category = strconv.Itoa(int(e.Category))
	}
	return []string{
		strconv.Itoa(e.Number),
		formatFloat(e.Depth),
		strconv.Itoa(e.Index),
		e.IndexLabel(),
		e.Start.Format(timeFormat),
		e.End.Format(timeFormat),
		strconv.Itoa(e.Samples),
		category,
		e.CategoryLabel(),
		formatFloat(e.Duration),
		formatFloat(e.IntensityMean),
		formatFloat(e.IntensityMax),
		formatFloat(e.IntensityCumulative),
	}
}

// WriteEventsCSV writes an event summary as comma-separated values.
func WriteEventsCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return err
	}
	for _, e := range events {
		if err := cw.Write(eventRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
