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
	"testing"
	"time"
)

func TestDecodeTimes(t *testing.T) {
	times, err := decodeTimes([]float64{0, 1.5, 24106}, DefaultTimeUnits)
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Time{
		time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1950, 1, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), // 24106 days
	}
	for i := range want {
		if !times[i].Equal(want[i]) {
			t.Errorf("%d: %v != %v", i, times[i], want[i])
		}
	}
	if _, err := decodeTimes([]float64{nan}, DefaultTimeUnits); err == nil {
		t.Error("expected an error for a missing time")
	}
}

func TestTimeUnits(t *testing.T) {
	for _, test := range []struct {
		units string
		step  time.Duration
		ref   time.Time
		err   bool
	}{
		{units: "hours since 2000-01-01T00:00:00Z", step: time.Hour, ref: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{units: "seconds since 1970-01-01", step: time.Second, ref: time.Unix(0, 0).UTC()},
		{units: "days since 1950-01-01 00:00:00 UTC", step: 24 * time.Hour, ref: time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)},
		{units: "days", err: true},
		{units: "fortnights since 1950-01-01", err: true},
		{units: "days since yesterday", err: true},
	} {
		t.Run(test.units, func(t *testing.T) {
			step, ref, err := parseTimeUnits(test.units)
			if test.err {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if step != test.step || !ref.Equal(test.ref) {
				t.Errorf("%v since %v", step, ref)
			}
		})
	}
}

func TestEncodeTimes(t *testing.T) {
	v, err := encodeTimes([]time.Time{time.Date(2000, 1, 2, 6, 0, 0, 0, time.UTC)}, "hours since 2000-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if v[0] != 30 {
		t.Errorf("%g", v[0])
	}
}
