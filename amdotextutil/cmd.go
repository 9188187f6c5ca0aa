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

// Package amdotextutil contains the amdotext command-line interface.
package amdotextutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/amdotext"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/plot/vg"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives progress and warning messages.
var Log logrus.FieldLogger = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to amdotext.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum level of log messages to print.
              Valid levels are panic, fatal, error, warning, info, and debug.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Dataset",
			usage: `
              Dataset specifies the location of the temperature extremes
              netCDF file. It can be a local path, an http(s) URL including
              THREDDS OPeNDAP and file server URLs, or a blob storage location
              starting with file://, gs://, or s3://.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), filterCmd.Flags(), longestCmd.Flags(), eventsCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir specifies the directory that output files are saved in.
              It can be a local directory or a blob storage location.`,
			shorthand:  "o",
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), filterCmd.Flags(), longestCmd.Flags(), eventsCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "OutputName",
			usage: `
              OutputName is the start of the names of the output files. If
              it is empty, the site code of the dataset is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), filterCmd.Flags(), longestCmd.Flags(), eventsCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Formats",
			usage: `
              Formats specifies the output file formats. Valid formats are
              csv, xlsx, and nc.`,
			defaultVal: []string{"csv"},
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), filterCmd.Flags(), longestCmd.Flags(), eventsCmd.Flags()},
		},
		{
			name: "Start",
			usage: `
              Start is the first time (inclusive) to select, in the format
              "2006-01-02", "2006-01-02 15:04:05", or RFC 3339.`,
			defaultVal: "2016-01-16 00:00:00",
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "End",
			usage: `
              End is the last time (inclusive) to select.`,
			defaultVal: "2016-05-03 00:00:00",
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Variables",
			usage: `
              Variables lists the variables to export or plot. Variables with
              a DEPTH dimension give one column per depth.`,
			defaultVal: []string{amdotext.Temp, amdotext.TempPer90},
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), longestCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Rename",
			usage: `
              Rename maps output column names to new names, for example
              {"TEMP_PER90 2m": "PER90 2m"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags(), longestCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Depth",
			usage: `
              Depth is the depth in meters to select events at. It must be
              one of the depths in the dataset.`,
			defaultVal: 22.0,
			flagsets:   []*pflag.FlagSet{filterCmd.Flags(), longestCmd.Flags(), eventsCmd.Flags()},
		},
		{
			name: "Where",
			usage: `
              Where lists the conditions that selected timestamps must meet.
              Conditions are either of the form NAME==VALUE or boolean
              expressions such as "MHW_EVENT_CAT >= 2". All conditions must hold.`,
			shorthand:  "w",
			defaultVal: []string{"TEMP_EXTREME_INDEX==12", "MHW_EVENT_CAT==2"},
			flagsets:   []*pflag.FlagSet{filterCmd.Flags(), longestCmd.Flags()},
		},
		{
			name: "Statistics",
			usage: `
              Statistics lists the variables whose means are reported for
              the selected events.`,
			defaultVal: []string{
				amdotext.MHWEventIntensityMean,
				amdotext.MHWEventIntensityMax,
				amdotext.MHWEventIntensityCumulative,
			},
			flagsets: []*pflag.FlagSet{filterCmd.Flags()},
		},
		{
			name: "DurationVariable",
			usage: `
              DurationVariable is the event duration variable used for the
              mean event duration and for finding the longest event.`,
			defaultVal: amdotext.MHWEventDuration,
			flagsets:   []*pflag.FlagSet{filterCmd.Flags(), longestCmd.Flags()},
		},
		{
			name: "Digits",
			usage: `
              Digits is the number of decimal places reported statistics are
              rounded to.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{filterCmd.Flags()},
		},
		{
			name: "EventType",
			usage: `
              EventType selects the event variables to summarize: "mhw" for
              marine heatwaves or "mcs" for marine cold spells.`,
			defaultVal: "mhw",
			flagsets:   []*pflag.FlagSet{eventsCmd.Flags()},
		},
		{
			name: "PlotSize",
			usage: `
              PlotSize is the width and height of plots in inches.`,
			defaultVal: []float64{8, 4},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("AMDOTEXT")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				set.Int(option.name, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64(option.name, option.defaultVal.(float64), option.usage)
			case []float64:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(option.defaultVal)
				set.String(option.name, b.String(), option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(option.defaultVal)
				set.String(option.name, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(sliceCmd)
	Root.AddCommand(filterCmd)
	Root.AddCommand(longestCmd)
	Root.AddCommand(eventsCmd)
	Root.AddCommand(plotCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("amdotext: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("amdotext: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "amdotext",
	Short: "Select and export ocean temperature extremes.",
	Long: `amdotext opens mooring temperature extremes data products, selects
marine heatwaves and cold spells by time, depth, and event characteristics,
summarizes them, and exports the selections as CSV, Excel, or netCDF files.

Use the subcommands specified below to access the functionality. Configuration
can be changed by using a configuration file (and providing the path to the
file using the --config flag), by using command-line arguments, or by setting
environment variables in the format 'AMDOTEXT_var' where 'var' is the name of
the variable to be set.

Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of amdotext.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("amdotext v%s\n", amdotext.Version)
	},
	DisableAutoGenTag: true,
}

var sliceCmd = &cobra.Command{
	Use:   "slice",
	Short: "Export a time range",
	Long: `slice selects the records between Start and End (inclusive) and exports
the listed Variables, with one column per depth, as a table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		start, end, err := timeRange(Cfg.GetString("Start"), Cfg.GetString("End"))
		if err != nil {
			return err
		}
		rename, err := GetStringMapString("Rename", Cfg)
		if err != nil {
			return err
		}
		d, e, err := setup(ctx, true)
		if err != nil {
			return err
		}
		if err := Slice(d, start, end, expandStringSlice(Cfg.GetStringSlice("Variables")), rename, e); err != nil {
			return err
		}
		return e.finish(ctx)
	},
	DisableAutoGenTag: true,
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Select and summarize events",
	Long: `filter selects the records at Depth where all of the Where conditions
hold, reports the mean of each of the Statistics variables and the mean event
duration, and exports the selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		preds, err := parsePredicates(Cfg.GetStringSlice("Where"))
		if err != nil {
			return err
		}
		d, e, err := setup(ctx, true)
		if err != nil {
			return err
		}
		err = Filter(cmd.OutOrStdout(), d, Cfg.GetFloat64("Depth"), preds,
			expandStringSlice(Cfg.GetStringSlice("Statistics")),
			Cfg.GetString("DurationVariable"), Cfg.GetInt("Digits"), e)
		if err != nil {
			return err
		}
		return e.finish(ctx)
	},
	DisableAutoGenTag: true,
}

var longestCmd = &cobra.Command{
	Use:   "longest",
	Short: "Export the longest event",
	Long: `longest selects the records at Depth where all of the Where conditions
hold, finds the time window of the longest of the selected events, and
exports the listed Variables over that window at all depths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		preds, err := parsePredicates(Cfg.GetStringSlice("Where"))
		if err != nil {
			return err
		}
		rename, err := GetStringMapString("Rename", Cfg)
		if err != nil {
			return err
		}
		d, e, err := setup(ctx, true)
		if err != nil {
			return err
		}
		err = Longest(cmd.OutOrStdout(), d, Cfg.GetFloat64("Depth"), preds,
			Cfg.GetString("DurationVariable"),
			expandStringSlice(Cfg.GetStringSlice("Variables")), rename, e)
		if err != nil {
			return err
		}
		return e.finish(ctx)
	},
	DisableAutoGenTag: true,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Summarize events",
	Long: `events lists the marine heatwaves (EventType "mhw") or marine cold
spells (EventType "mcs") at Depth, one row per event, and exports the list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		vars, err := checkEventType(Cfg.GetString("EventType"))
		if err != nil {
			return err
		}
		d, e, err := setup(ctx, true)
		if err != nil {
			return err
		}
		if err := Events(cmd.OutOrStdout(), d, Cfg.GetFloat64("Depth"), vars, e); err != nil {
			return err
		}
		return e.finish(ctx)
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot a time range",
	Long: `plot draws the listed Variables between Start and End as time series
and saves the plot as a PNG image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		start, end, err := timeRange(Cfg.GetString("Start"), Cfg.GetString("End"))
		if err != nil {
			return err
		}
		rename, err := GetStringMapString("Rename", Cfg)
		if err != nil {
			return err
		}
		size, err := checkPlotSize(Cfg.Get("PlotSize"))
		if err != nil {
			return err
		}
		d, e, err := setup(ctx, false)
		if err != nil {
			return err
		}
		err = Plot(d, start, end, expandStringSlice(Cfg.GetStringSlice("Variables")), rename,
			vg.Length(size[0])*vg.Inch, vg.Length(size[1])*vg.Inch, e)
		if err != nil {
			return err
		}
		return e.finish(ctx)
	},
	DisableAutoGenTag: true,
}

// setup opens the configured dataset and prepares the output location.
// If formats is false, the Formats option is not used.
func setup(ctx context.Context, formats bool) (*amdotext.Dataset, *exporter, error) {
	var fmts []string
	if formats {
		var err error
		fmts, err = checkFormats(Cfg.GetStringSlice("Formats"))
		if err != nil {
			return nil, nil, err
		}
	}
	dir, err := checkOutputDir(ctx, Cfg.GetString("OutputDir"))
	if err != nil {
		return nil, nil, err
	}
	path, err := checkDataset(Cfg.GetString("Dataset"))
	if err != nil {
		return nil, nil, err
	}
	d, err := Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	name := os.ExpandEnv(Cfg.GetString("OutputName"))
	if name == "" {
		name = siteName(d, path)
	}
	return d, newExporter(dir, name, fmts), nil
}
