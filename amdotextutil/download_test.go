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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/amdotext"
)

func testLog(t *testing.T) logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func TestMaybeDownloadLocal(t *testing.T) {
	for _, path := range []string{"/dev/null", "/blah/test/"} {
		k, err := maybeDownload(context.Background(), path, testLog(t))
		if err != nil {
			t.Fatal(err)
		}
		if k != path {
			t.Errorf("expected %s, got %s", path, k)
		}
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	writeTestDataset(t, dir)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	k, err := maybeDownload(context.Background(), srv.URL+"/PH100_TEMP_EXTREMES.nc", testLog(t))
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(filepath.Dir(k))
	if !strings.HasSuffix(k, "PH100_TEMP_EXTREMES.nc") || strings.HasPrefix(k, dir) {
		t.Errorf("expected tempDir/PH100_TEMP_EXTREMES.nc, got %s", k)
	}
	d, err := amdotext.Open(k)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 8 {
		t.Errorf("downloaded dataset has %d records", d.Len())
	}
}

func TestMaybeDownloadThredds(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	writeTestDataset(t, dir)
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		http.ServeFile(w, r, filepath.Join(dir, "PH100_TEMP_EXTREMES.nc"))
	}))
	defer srv.Close()

	k, err := maybeDownload(context.Background(), srv.URL+"/thredds/dodsC/IMOS/PH100_TEMP_EXTREMES.nc.html", testLog(t))
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(filepath.Dir(k))
	if requested != "/thredds/fileServer/IMOS/PH100_TEMP_EXTREMES.nc" {
		t.Errorf("requested %s", requested)
	}
	if filepath.Base(k) != "PH100_TEMP_EXTREMES.nc" {
		t.Errorf("downloaded to %s", k)
	}
}

func TestMaybeDownloadRetry(t *testing.T) {
	var n int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("CDF"))
	}))
	defer srv.Close()

	k, err := maybeDownload(context.Background(), srv.URL+"/x.nc", testLog(t))
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(filepath.Dir(k))
	if got := atomic.LoadInt32(&n); got != 2 {
		t.Errorf("%d requests, want 2", got)
	}
	b, err := ioutil.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "CDF" {
		t.Errorf("downloaded %q", b)
	}
}

func TestMaybeDownloadNotFound(t *testing.T) {
	var n int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := maybeDownload(context.Background(), srv.URL+"/missing.nc", testLog(t)); err == nil {
		t.Error("expected an error")
	}
	if got := atomic.LoadInt32(&n); got != 1 {
		t.Errorf("client errors should not be retried, but there were %d requests", got)
	}
}

func TestThreddsFileURL(t *testing.T) {
	for _, test := range []struct{ in, want string }{
		{
			in:   "http://thredds.aodn.org.au/thredds/dodsC/IMOS/ANMN/PH100.nc",
			want: "http://thredds.aodn.org.au/thredds/fileServer/IMOS/ANMN/PH100.nc",
		},
		{
			in:   "http://thredds.aodn.org.au/thredds/dodsC/IMOS/ANMN/PH100.nc.html?TEMP",
			want: "http://thredds.aodn.org.au/thredds/fileServer/IMOS/ANMN/PH100.nc",
		},
		{
			in:   "https://example.com/data/PH100.nc",
			want: "https://example.com/data/PH100.nc",
		},
	} {
		if have := threddsFileURL(test.in); have != test.want {
			t.Errorf("%s: have %s, want %s", test.in, have, test.want)
		}
	}
}

func TestMaybeDownloadBlob(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(oldwd)
	if err := os.Mkdir("bucket", 0755); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := upload(ctx, writeTestDataset(t, "."), "file://bucket/PH100_TEMP_EXTREMES.nc"); err != nil {
		t.Fatal(err)
	}

	k, err := maybeDownload(ctx, "file://bucket/PH100_TEMP_EXTREMES.nc", testLog(t))
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(filepath.Dir(k))
	d, err := amdotext.Open(k)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := d.Attributes["site_code"].(string); s != "PH100" {
		t.Errorf("site_code: %q", s)
	}
}

func TestIsBlob(t *testing.T) {
	for path, want := range map[string]bool{
		"gs://bucket/f.nc": true,
		"s3://bucket/f.nc": true,
		"file://dir/f.nc":  true,
		"http://host/f.nc": false,
		"/data/f.nc":       false,
	} {
		if IsBlob(path) != want {
			t.Errorf("%s: want %v", path, want)
		}
	}
}
