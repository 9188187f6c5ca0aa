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
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// SelectTime returns the records of d whose TIME falls within
// [start, end], inclusive at both ends.
//
// If no timestamps are in range, the returned dataset is empty but valid
// and the error is an *EmptySelectionError, so callers can decide whether
// an empty range is fatal.
func (d *Dataset) SelectTime(start, end time.Time) (*Dataset, error) {
	var idx []int
	for i, t := range d.Time {
		if !t.Before(start) && !t.After(end) {
			idx = append(idx, i)
		}
	}
	o := d.derive(nonNil(idx), nil)
	if len(idx) == 0 {
		return o, &EmptySelectionError{
			Reason: fmt.Sprintf("no timestamps between %s and %s", start.Format(timeFormat), end.Format(timeFormat)),
		}
	}
	return o, nil
}

// SelectDepth returns the records of d at the given depth. The DEPTH
// dimension is kept with length 1. If depth is not one of d.Depth, the
// returned dataset has no depths and no timestamps and the error is an
// *EmptySelectionError.
func (d *Dataset) SelectDepth(depth float64) (*Dataset, error) {
	k, ok := d.depthIndex(depth)
	if !ok {
		return d.derive([]int{}, []int{}), &EmptySelectionError{
			Reason: fmt.Sprintf("depth %g m not in dataset (depths: %v)", depth, d.Depth),
		}
	}
	return d.derive(nil, []int{k}), nil
}

// Filter returns the records of d at the given depth where every
// predicate holds. Each predicate is evaluated as an independent mask and
// the masks are combined with a logical AND, so their order does not
// affect the result.
//
// An *UnknownVariableError is returned before any evaluation if a
// predicate reads a variable that d does not contain. As with SelectTime,
// a selection with no timestamps is returned together with an
// *EmptySelectionError; whether that means "no qualifying events" or a
// hard failure is up to the caller.
func (d *Dataset) Filter(depth float64, predicates ...Predicate) (*Dataset, error) {
	vars := make(map[string]*Variable)
	for _, p := range predicates {
		for _, name := range p.Variables() {
			v, err := d.Var(name)
			if err != nil {
				return nil, err
			}
			if err := v.pointwise(); err != nil {
				return nil, err
			}
			vars[name] = v
		}
	}

	k, ok := d.depthIndex(depth)
	if !ok {
		return d.derive([]int{}, []int{}), &EmptySelectionError{
			Reason: fmt.Sprintf("depth %g m not in dataset (depths: %v)", depth, d.Depth),
		}
	}

	// Each predicate is evaluated at every timestamp and the masks are
	// combined with AND.
	mask := make([]bool, len(d.Time))
	for t := range mask {
		mask[t] = true
	}
	values := make(map[string]float64, len(vars))
	for _, p := range predicates {
		for t := range d.Time {
			for _, name := range p.Variables() {
				values[name] = vars[name].at(t, k)
			}
			m, err := p.Match(values)
			if err != nil {
				return nil, err
			}
			mask[t] = mask[t] && m
		}
	}

	var idx []int
	for t, m := range mask {
		if m {
			idx = append(idx, t)
		}
	}
	o := d.derive(nonNil(idx), []int{k})
	if len(idx) == 0 {
		return o, &EmptySelectionError{
			Reason: fmt.Sprintf("no timestamps at depth %g m match %v", depth, predicates),
		}
	}
	return o, nil
}

// nonNil returns idx, or an empty non-nil slice so that derive selects
// nothing rather than everything.
func nonNil(idx []int) []int {
	if idx == nil {
		return []int{}
	}
	return idx
}
