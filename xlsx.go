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
	"io"
	"math"

	"github.com/tealeg/xlsx"
)

// WriteXLSX writes t to w as an Excel workbook with a single sheet.
// Missing values are left as empty cells.
func (t *Table) WriteXLSX(w io.Writer, sheet string) error {
	f := xlsx.NewFile()
	s, err := f.AddSheet(sheet)
	if err != nil {
		return fmt.Errorf("amdotext: creating sheet %s: %v", sheet, err)
	}
	addStringRow(s, append([]string{TimeDim}, t.Columns...))
	for i, tt := range t.Time {
		row := s.AddRow()
		row.AddCell().SetString(tt.Format(timeFormat))
		for c := range t.Columns {
			addFloatCell(row, t.Values[c][i])
		}
	}
	return f.Write(w)
}

// WriteEventsXLSX writes an event summary to w as an Excel workbook.
func WriteEventsXLSX(w io.Writer, sheet string, events []Event) error {
	f := xlsx.NewFile()
	s, err := f.AddSheet(sheet)
	if err != nil {
		return fmt.Errorf("amdotext: creating sheet %s: %v", sheet, err)
	}
	addStringRow(s, eventHeader)
	for _, e := range events {
		row := s.AddRow()
		row.AddCell().SetInt(e.Number)
		row.AddCell().SetFloat(e.Depth)
		row.AddCell().SetInt(e.Index)
		row.AddCell().SetString(e.IndexLabel())
		row.AddCell().SetString(e.Start.Format(timeFormat))
		row.AddCell().SetString(e.End.Format(timeFormat))
		row.AddCell().SetInt(e.Samples)
		addFloatCell(row, e.Category)
		row.AddCell().SetString(e.CategoryLabel())
		for _, v := range []float64{e.Duration, e.IntensityMean, e.IntensityMax, e.IntensityCumulative} {
			addFloatCell(row, v)
		}
	}
	return f.Write(w)
}

func addStringRow(s *xlsx.Sheet, values []string) {
	row := s.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// addFloatCell adds a cell holding v, or an empty cell if v is missing.
func addFloatCell(row *xlsx.Row, v float64) {
	cell := row.AddCell()
	if !math.IsNaN(v) {
		cell.SetFloat(v)
	}
}
