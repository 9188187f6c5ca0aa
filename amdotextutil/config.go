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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/amdotext"
	"github.com/spf13/cast"
)

// checkDataset makes sure that a dataset is specified and expands any
// environment variables.
func checkDataset(path string) (string, error) {
	path = os.ExpandEnv(strings.TrimSpace(path))
	if path == "" {
		return "", fmt.Errorf(`you need to specify a dataset configuration variable (for example: Dataset="PH100_TEMP_EXTREMES_1953-2022_v1.nc")`)
	}
	return path, nil
}

// checkOutputDir makes sure that the output directory exists and expands
// any environment variables.
func checkOutputDir(ctx context.Context, dir string) (string, error) {
	dir = os.ExpandEnv(dir)
	if dir == "" {
		dir = "."
	}
	if IsBlob(dir) {
		u, err := url.Parse(dir)
		if err != nil {
			return dir, err
		}
		if _, err = OpenBucket(ctx, u.Scheme+"://"+u.Host); err != nil {
			return dir, fmt.Errorf("amdotext: error when checking OutputDir location: %v", err)
		}
		return dir, nil
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return dir, fmt.Errorf("amdotext: the OutputDir directory doesn't exist: %v", err)
	}
	if !fi.IsDir() {
		return dir, fmt.Errorf("amdotext: OutputDir %s is not a directory", dir)
	}
	return dir, nil
}

// checkFormats lowercases the output formats, removes duplicates, and
// ensures that only supported formats are specified.
func checkFormats(formats []string) ([]string, error) {
	var o []string
	seen := make(map[string]bool)
	for _, f := range formats {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f == "" || seen[f] {
			continue
		}
		switch f {
		case "csv", "xlsx", "nc":
		default:
			return nil, fmt.Errorf("the Formats configuration variable contains `%s`, but "+
				"only csv, xlsx, and nc are supported", f)
		}
		seen[f] = true
		o = append(o, f)
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("there are no output formats specified. Please fill in " +
			"the Formats configuration and try again")
	}
	return o, nil
}

var timeFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime parses a time in one of the accepted formats. Times without
// a time zone are in UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(os.ExpandEnv(s))
	for _, f := range timeFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("amdotext: invalid time %q; use a format such as \"2016-01-16 00:00:00\"", s)
}

// timeRange parses the start and end of a time range.
func timeRange(start, end string) (time.Time, time.Time, error) {
	s, err := parseTime(start)
	if err != nil {
		return s, s, fmt.Errorf("amdotext: Start: %v", err)
	}
	e, err := parseTime(end)
	if err != nil {
		return s, e, fmt.Errorf("amdotext: End: %v", err)
	}
	if e.Before(s) {
		return s, e, fmt.Errorf("amdotext: End (%s) is before Start (%s)", end, start)
	}
	return s, e, nil
}

// parsePredicates parses the Where conditions.
func parsePredicates(where []string) ([]amdotext.Predicate, error) {
	var o []amdotext.Predicate
	for _, w := range expandStringSlice(where) {
		if strings.TrimSpace(w) == "" {
			continue
		}
		p, err := amdotext.ParsePredicate(w)
		if err != nil {
			return nil, err
		}
		o = append(o, p)
	}
	return o, nil
}

// checkEventType returns the event variables for the given event type.
func checkEventType(t string) (amdotext.EventVariables, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "mhw", "heatwave", "marine_heatwave":
		return amdotext.DefaultHeatwaveVariables, nil
	case "mcs", "coldspell", "marine_cold_spell":
		return amdotext.DefaultColdSpellVariables, nil
	default:
		return amdotext.EventVariables{}, fmt.Errorf("the EventType configuration variable "+
			"needs to be set to either mhw or mcs, but is currently set to `%s`", t)
	}
}

// checkPlotSize returns the plot width and height in inches. The value
// may be a JSON array if it was set from a command line argument.
func checkPlotSize(i interface{}) ([]float64, error) {
	var size []interface{}
	switch v := i.(type) {
	case string:
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&size); err != nil {
			return nil, fmt.Errorf("amdotext: invalid PlotSize %q: %v", v, err)
		}
	case []float64:
		for _, f := range v {
			size = append(size, f)
		}
	default:
		var err error
		if size, err = cast.ToSliceE(i); err != nil {
			return nil, fmt.Errorf("amdotext: invalid PlotSize: %v", err)
		}
	}
	if len(size) != 2 {
		return nil, fmt.Errorf("amdotext: PlotSize must have two values but has %d", len(size))
	}
	o := make([]float64, 2)
	for j, v := range size {
		var err error
		if o[j], err = cast.ToFloat64E(v); err != nil {
			return nil, fmt.Errorf("amdotext: invalid PlotSize: %v", err)
		}
		if o[j] <= 0 {
			return nil, fmt.Errorf("amdotext: PlotSize values must be positive")
		}
	}
	return o, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("amdotext: invalid %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for getStringMapString variable %s: %#v", varName, i)
	}
}
