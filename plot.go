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

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot returns a time-series line plot with one line per column of t.
// Missing values are skipped.
func (t *Table) Plot(title, ylabel string) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	p.X.Label.Text = "Time"
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true

	var lines []interface{}
	for c, name := range t.Columns {
		var n int
		for _, v := range t.Values[c] {
			if !math.IsNaN(v) {
				n++
			}
		}
		if n == 0 {
			continue
		}
		xy := make(plotter.XYs, n)
		j := 0
		for i, v := range t.Values[c] {
			if math.IsNaN(v) {
				continue
			}
			xy[j].X = float64(t.Time[i].Unix())
			xy[j].Y = v
			j++
		}
		lines = append(lines, name, xy)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("amdotext: nothing to plot")
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, err
	}
	return p, nil
}

// SavePNG writes p to w as a PNG image of the given size.
func SavePNG(p *plot.Plot, w io.Writer, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
