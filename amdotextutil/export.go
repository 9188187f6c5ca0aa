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
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cloud/blob"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/amdotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// exporter writes output files named <name>_<suffix>.<format> to an
// output directory. If the directory is a blob storage location, the
// files are written to a temporary directory and uploaded by finish.
type exporter struct {
	dir     string
	name    string
	formats []string

	// uploads is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	uploads [][2]string
	tmp     string

	// written lists the output locations.
	written []string
}

func newExporter(dir, name string, formats []string) *exporter {
	return &exporter{dir: dir, name: name, formats: formats}
}

func (e *exporter) hasFormat(f string) bool {
	for _, ff := range e.formats {
		if ff == f {
			return true
		}
	}
	return false
}

// create creates the output file with the given suffix and extension.
func (e *exporter) create(suffix, ext string) (*os.File, error) {
	base := fmt.Sprintf("%s_%s.%s", e.name, suffix, ext)
	base = strings.Replace(base, " ", "_", -1)
	dest := strings.TrimSuffix(e.dir, "/") + "/" + base
	local := filepath.Join(e.dir, base)
	if IsBlob(e.dir) {
		if e.tmp == "" {
			var err error
			e.tmp, err = ioutil.TempDir("", "amdotext")
			if err != nil {
				return nil, fmt.Errorf("amdotext: creating temporary output directory: %v", err)
			}
		}
		local = filepath.Join(e.tmp, base)
		e.uploads = append(e.uploads, [2]string{local, dest})
	} else {
		dest = local
	}
	f, err := os.Create(local)
	if err != nil {
		return nil, fmt.Errorf("amdotext: creating output file: %v", err)
	}
	e.written = append(e.written, dest)
	Log.WithField("file", dest).Info("amdotext: writing output")
	return f, nil
}

// write creates an output file and fills it using w.
func (e *exporter) write(suffix, ext string, w func(io.Writer) error) error {
	f, err := e.create(suffix, ext)
	if err != nil {
		return err
	}
	if err := w(f); err != nil {
		f.Close()
		return fmt.Errorf("amdotext: writing %s: %v", f.Name(), err)
	}
	return f.Close()
}

// table writes t in the csv and xlsx formats, if requested.
func (e *exporter) table(t *amdotext.Table, suffix string) error {
	if e.hasFormat("csv") {
		if err := e.write(suffix, "csv", t.WriteCSV); err != nil {
			return err
		}
	}
	if e.hasFormat("xlsx") {
		err := e.write(suffix, "xlsx", func(w io.Writer) error {
			return t.WriteXLSX(w, e.name)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// dataset writes d in the nc format, if requested.
func (e *exporter) dataset(d *amdotext.Dataset, suffix string) error {
	if !e.hasFormat("nc") {
		return nil
	}
	f, err := e.create(suffix, "nc")
	if err != nil {
		return err
	}
	if err := d.WriteNetCDF(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// events writes an event list in the csv and xlsx formats, if requested.
func (e *exporter) events(events []amdotext.Event, suffix string) error {
	if e.hasFormat("csv") {
		err := e.write(suffix, "csv", func(w io.Writer) error {
			return amdotext.WriteEventsCSV(w, events)
		})
		if err != nil {
			return err
		}
	}
	if e.hasFormat("xlsx") {
		err := e.write(suffix, "xlsx", func(w io.Writer) error {
			return amdotext.WriteEventsXLSX(w, e.name, events)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// plot writes p as a PNG image.
func (e *exporter) plot(p *plot.Plot, suffix string, width, height vg.Length) error {
	return e.write(suffix, "png", func(w io.Writer) error {
		return amdotext.SavePNG(p, w, width, height)
	})
}

// finish uploads any files destined for blob storage.
func (e *exporter) finish(ctx context.Context) error {
	if e.tmp != "" {
		defer os.RemoveAll(e.tmp)
	}
	for _, files := range e.uploads {
		if err := upload(ctx, files[0], files[1]); err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{
			"from": files[0],
			"to":   files[1],
		}).Debug("amdotext: uploaded output")
	}
	e.uploads = nil
	return nil
}

// upload copies the local file to the blob storage location dest.
func upload(ctx context.Context, local, dest string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("amdotext: opening file '%s' for upload: %s", local, err)
	}
	defer r.Close()
	u, err := url.Parse(dest)
	if err != nil {
		return fmt.Errorf("amdotext: parsing url '%s' for upload: %s", dest, err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return fmt.Errorf("amdotext: opening bucket to upload file '%s': %s", dest, err)
	}
	w, err := bucket.NewWriter(ctx, strings.TrimPrefix(u.Path, "/"), &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("amdotext: opening writer to upload file '%s': %s", dest, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("amdotext: uploading file '%s' to '%s': %s", local, dest, err)
	}
	return w.Close()
}
