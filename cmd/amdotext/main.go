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

// Command amdotext is a command-line interface for selecting and exporting
// ocean temperature extremes data products.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/amdotext/amdotextutil"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableSorting:  true,
	})

	if len(os.Args) == 1 { // If no command was supplied, start the GUI server.
		if err := amdotextutil.StartWebServer(); err != nil {
			logrus.Fatal(err)
		}
		return
	}

	if err := amdotextutil.Root.Execute(); err != nil {
		os.Exit(1)
	}
}
