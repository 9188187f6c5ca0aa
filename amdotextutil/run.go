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

package amdotextutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/amdotext"
	"gonum.org/v1/plot/vg"
)

// datasetCache holds recently loaded datasets so that repeated commands
// from the browser interface do not download and read them again.
var datasetCache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
	return load(ctx, request.(string))
}, runtime.GOMAXPROCS(-1), requestcache.Memory(4))

// Load downloads the dataset at path if it is remote and reads it
// into memory. The returned dataset is shared with other callers
// loading the same path and must not be modified.
func Load(ctx context.Context, path string) (*amdotext.Dataset, error) {
	r := datasetCache.NewRequest(ctx, path, path)
	d, err := r.Result()
	if err != nil {
		return nil, err
	}
	return d.(*amdotext.Dataset), nil
}

func load(ctx context.Context, path string) (*amdotext.Dataset, error) {
	local, err := maybeDownload(ctx, path, Log)
	if err != nil {
		return nil, err
	}
	d, err := amdotext.Open(local)
	if err != nil {
		return nil, err
	}
	start, end := d.TimeRange()
	Log.WithFields(logrus.Fields{
		"dataset":   path,
		"records":   d.Len(),
		"depths":    d.Depth,
		"start":     start,
		"end":       end,
		"variables": len(d.Variables()),
	}).Info("amdotext: loaded dataset")
	return d, nil
}

// siteName returns the site code of d, or the base name of path if d
// has none.
func siteName(d *amdotext.Dataset, path string) string {
	if s, ok := d.Attributes["site_code"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Slice exports the given variables of d between start and end,
// inclusive, with table columns renamed according to rename.
func Slice(d *amdotext.Dataset, start, end time.Time, vars []string, rename map[string]string, e *exporter) error {
	s, err := d.SelectTime(start, end)
	if err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"start":   start,
		"end":     end,
		"records": s.Len(),
	}).Info("amdotext: selected time range")
	t, err := s.Table(vars...)
	if err != nil {
		return err
	}
	suffix := fmt.Sprintf("%s_%s", start.Format("20060102"), end.Format("20060102"))
	if t, err = t.Rename(rename); err != nil {
		return err
	}
	if err := e.table(t, suffix); err != nil {
		return err
	}
	return e.dataset(s, suffix)
}

// Filter selects the records of d at depth where all of preds hold,
// writes a summary of the selection to w, and exports it. The summary
// includes the means of the stats variables, rounded to digits decimal
// places, and the mean of the duration variable in days.
//
// A selection with no records is reported and is not an error.
func Filter(w io.Writer, d *amdotext.Dataset, depth float64, preds []amdotext.Predicate, stats []string, duration string, digits int, e *exporter) error {
	s, err := d.Filter(depth, preds...)
	var empty *amdotext.EmptySelectionError
	if errors.As(err, &empty) {
		Log.WithField("reason", empty.Reason).Warn("amdotext: no qualifying records")
		fmt.Fprintf(w, "%s %gm: no records match %s.\n", e.name, depth, predicateString(preds))
		return nil
	} else if err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"depth":      depth,
		"conditions": predicateString(preds),
		"records":    s.Len(),
	}).Info("amdotext: filtered dataset")

	summary, err := s.Summarize(digits, stats...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %gm: %d records match %s.\n", e.name, depth, s.Len(), predicateString(preds))
	if duration != "" {
		days, err := s.MeanDurationDays(duration)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Events last on average %d days.\n", int(days))
	}
	for _, st := range summary {
		fmt.Fprintf(w, "Mean %s: %g %s\n", st.Variable, st.Mean, st.Units)
	}

	suffix := fmt.Sprintf("%gm_filtered", depth)
	t, err := s.Table()
	if err != nil {
		return err
	}
	if err := e.table(t, suffix); err != nil {
		return err
	}
	return e.dataset(s, suffix)
}

// Longest finds the longest of the events at depth selected by preds and
// exports the given variables of d over the time window of that event.
// The window is applied to d at all depths.
func Longest(w io.Writer, d *amdotext.Dataset, depth float64, preds []amdotext.Predicate, duration string, vars []string, rename map[string]string, e *exporter) error {
	f, err := d.Filter(depth, preds...)
	if err != nil {
		return err
	}
	win, err := f.LongestEventWindow(duration)
	if err != nil {
		return err
	}
	s, err := d.SelectTime(win.Start, win.End)
	if err != nil {
		return err
	}
	step, _ := d.SamplingInterval()
	Log.WithFields(logrus.Fields{
		"start":    win.Start,
		"end":      win.End,
		"duration": win.MaxDuration,
	}).Info("amdotext: found longest event")
	fmt.Fprintf(w, "%s %gm: the longest event is between %s and %s (%g days).\n",
		e.name, depth, win.Start.Format("2006-01-02 15:04:05"),
		win.End.Format("2006-01-02 15:04:05"), win.Days(step))

	t, err := s.Table(vars...)
	if err != nil {
		return err
	}
	suffix := fmt.Sprintf("%gm_longest", depth)
	if t, err = t.Rename(rename); err != nil {
		return err
	}
	if err := e.table(t, suffix); err != nil {
		return err
	}
	return e.dataset(s, suffix)
}

// Events lists the events in d at depth and exports the list.
func Events(w io.Writer, d *amdotext.Dataset, depth float64, vars amdotext.EventVariables, e *exporter) error {
	s, err := d.SelectDepth(depth)
	if err != nil {
		return err
	}
	events, err := s.Events(vars)
	if err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"depth":  depth,
		"events": len(events),
	}).Info("amdotext: found events")
	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.IndexLabel()]++
	}
	fmt.Fprintf(w, "%s %gm: %d events", e.name, depth, len(events))
	for _, i := range []int{amdotext.MarineHeatwave, amdotext.HeatSpike, amdotext.MarineColdSpell, amdotext.ColdSpike} {
		if n := counts[amdotext.IndexLabels[i]]; n > 0 {
			fmt.Fprintf(w, ", %d %s", n, amdotext.IndexLabels[i])
		}
	}
	fmt.Fprintln(w, ".")
	return e.events(events, fmt.Sprintf("%gm_events", depth))
}

// Plot saves a time-series plot of the given variables of d between
// start and end.
func Plot(d *amdotext.Dataset, start, end time.Time, vars []string, rename map[string]string, width, height vg.Length, e *exporter) error {
	s, err := d.SelectTime(start, end)
	if err != nil {
		return err
	}
	t, err := s.Table(vars...)
	if err != nil {
		return err
	}
	ylabel := ""
	if len(vars) > 0 {
		if v, err := s.Var(vars[0]); err == nil {
			ylabel = v.Units()
		}
	}
	if t, err = t.Rename(rename); err != nil {
		return err
	}
	p, err := t.Plot(e.name, ylabel)
	if err != nil {
		return err
	}
	return e.plot(p, fmt.Sprintf("%s_%s", start.Format("20060102"), end.Format("20060102")), width, height)
}

func predicateString(preds []amdotext.Predicate) string {
	if len(preds) == 0 {
		return "no conditions"
	}
	s := make([]string, len(preds))
	for i, p := range preds {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, " and ")
}
