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
	"testing"
	"time"

	"gonum.org/v1/plot/vg"
)

func TestPlot(t *testing.T) {
	d := testDataset(t)
	tbl, err := d.Table(Temp, TempPer90, MHWEventDuration)
	if err != nil {
		t.Fatal(err)
	}
	p, err := tbl.Plot("PH100", "Temperature (°C)")
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := SavePNG(p, &b, 6*vg.Inch, 4*vg.Inch); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG image")
	}
}

func TestPlotNothing(t *testing.T) {
	tbl := &Table{
		Time:    []time.Time{day(1)},
		Columns: []string{"A"},
		Values:  [][]float64{{nan}},
	}
	if _, err := tbl.Plot("", ""); err == nil {
		t.Error("expected an error for a table with no valid data")
	}
}
