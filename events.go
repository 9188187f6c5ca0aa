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
	"time"
)

// EventVariables names the variables that describe an event class.
type EventVariables struct {
	Index, Category, Duration                        string
	IntensityMean, IntensityMax, IntensityCumulative string
}

// DefaultHeatwaveVariables are the marine heatwave variables of the data
// products.
var DefaultHeatwaveVariables = EventVariables{
	Index:               TempExtremeIndex,
	Category:            MHWEventCat,
	Duration:            MHWEventDuration,
	IntensityMean:       MHWEventIntensityMean,
	IntensityMax:        MHWEventIntensityMax,
	IntensityCumulative: MHWEventIntensityCumulative,
}

// DefaultColdSpellVariables are the marine cold spell variables of the
// data products.
var DefaultColdSpellVariables = EventVariables{
	Index:               TempExtremeIndex,
	Category:            MCSEventCat,
	Duration:            MCSEventDuration,
	IntensityMean:       MCSEventIntensityMean,
	IntensityMax:        MCSEventIntensityMax,
	IntensityCumulative: MCSEventIntensityCumulative,
}

// Event is a maximal run of consecutive timestamps that share the same
// non-zero event index at one depth. Its attributes are read from the
// first timestamp of the run.
type Event struct {
	Number     int
	Depth      float64
	Index      int
	Start, End time.Time

	// Samples is the number of timestamps in the run.
	Samples int

	Category                                         float64
	Duration                                         float64
	IntensityMean, IntensityMax, IntensityCumulative float64
}

// IndexLabel returns the flag meaning of e.Index.
func (e Event) IndexLabel() string { return IndexLabels[e.Index] }

// CategoryLabel returns the flag meaning of e.Category.
func (e Event) CategoryLabel() string {
	if math.IsNaN(e.Category) {
		return ""
	}
	return CategoryLabels[int(e.Category)]
}

// Events returns the events in d, which must hold a single depth.
// The index variable is required; attribute variables that d does not
// contain are reported as NaN.
func (d *Dataset) Events(vars EventVariables) ([]Event, error) {
	if len(d.Depth) != 1 {
		return nil, fmt.Errorf("amdotext: events need a single depth but dataset has %d", len(d.Depth))
	}
	index, err := d.Var(vars.Index)
	if err != nil {
		return nil, err
	}
	if err := index.pointwise(); err != nil {
		return nil, err
	}
	attr := func(name string, t int) float64 {
		v, ok := d.vars[name]
		if !ok || v.pointwise() != nil {
			return math.NaN()
		}
		return v.at(t, 0)
	}

	// A gap in TIME, as left by Filter, also ends a run.
	step, _ := d.SamplingInterval()

	var o []Event
	var cur *Event
	prev := math.NaN()
	for t := range d.Time {
		flag := index.at(t, 0)
		if math.IsNaN(flag) || flag == NoEvent {
			cur, prev = nil, flag
			continue
		}
		if cur != nil && flag == prev && d.Time[t].Sub(d.Time[t-1]) <= step {
			cur.End = d.Time[t]
			cur.Samples++
			continue
		}
		o = append(o, Event{
			Number:              len(o) + 1,
			Depth:               d.Depth[0],
			Index:               int(flag),
			Start:               d.Time[t],
			End:                 d.Time[t],
			Samples:             1,
			Category:            attr(vars.Category, t),
			Duration:            attr(vars.Duration, t),
			IntensityMean:       attr(vars.IntensityMean, t),
			IntensityMax:        attr(vars.IntensityMax, t),
			IntensityCumulative: attr(vars.IntensityCumulative, t),
		})
		cur = &o[len(o)-1]
		prev = flag
	}
	return o, nil
}
