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

// Package amdotext opens, slices, summarizes and exports ocean temperature
// extremes data products: daily mooring temperature records with marine
// heatwave (MHW) and marine cold spell (MCS) event flags, distributed as
// netCDF files.
//
// A Dataset is read once and never modified. SelectTime, SelectDepth and
// Filter return new, independent datasets, and the longest event of a
// filtered selection can be extracted with LongestEvent. Summary statistics
// are available from Mean, Summarize and MeanDurationDays, and selections
// can be exported with Table (CSV and Excel) and WriteNetCDF.
package amdotext

// Version gives the version number.
const Version = "1.0.0"

// Names of the dataset dimensions.
const (
	TimeDim  = "TIME"
	DepthDim = "DEPTH"
)

// Names of the variables in the temperature extremes data products.
const (
	Temp             = "TEMP"
	TempPer90        = "TEMP_PER90"
	TempPer10        = "TEMP_PER10"
	TempExtremeIndex = "TEMP_EXTREME_INDEX"

	MHWEventCat                 = "MHW_EVENT_CAT"
	MHWEventDuration            = "MHW_EVENT_DURATION"
	MHWEventIntensityMean       = "MHW_EVENT_INTENSITY_MEAN"
	MHWEventIntensityMax        = "MHW_EVENT_INTENSITY_MAX"
	MHWEventIntensityCumulative = "MHW_EVENT_INTENSITY_CUMULATIVE"

	MCSEventCat                 = "MCS_EVENT_CAT"
	MCSEventDuration            = "MCS_EVENT_DURATION"
	MCSEventIntensityMean       = "MCS_EVENT_INTENSITY_MEAN"
	MCSEventIntensityMax        = "MCS_EVENT_INTENSITY_MAX"
	MCSEventIntensityCumulative = "MCS_EVENT_INTENSITY_CUMULATIVE"
)

// Values of the TEMP_EXTREME_INDEX flag.
const (
	NoEvent         = 0
	ColdSpike       = 1
	MarineColdSpell = 2
	HeatSpike       = 11
	MarineHeatwave  = 12
)

// Values of the MHW_EVENT_CAT and MCS_EVENT_CAT flags.
const (
	CategoryNone     = 0
	CategoryModerate = 1
	CategoryStrong   = 2
	CategorySevere   = 3
	CategoryExtreme  = 4
)

// IndexLabels holds the flag meanings of TEMP_EXTREME_INDEX.
var IndexLabels = map[int]string{
	NoEvent:         "no_event",
	ColdSpike:       "cold_spike",
	MarineColdSpell: "marine_cold_spell",
	HeatSpike:       "heat_spike",
	MarineHeatwave:  "marine_heatwave",
}

// CategoryLabels holds the flag meanings of the event category variables.
var CategoryLabels = map[int]string{
	CategoryNone:     "no_event",
	CategoryModerate: "moderate",
	CategoryStrong:   "strong",
	CategorySevere:   "severe",
	CategoryExtreme:  "extreme",
}
