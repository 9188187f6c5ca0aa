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
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maxRetries is the number of times a failed download is retried.
const maxRetries = 5

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file and returns the path to the
// downloaded file.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, threddsFileURL(path), log)
	}

	if IsBlob(path) {
		return downloadBlob(ctx, path, log)
	}

	return path, nil
}

// threddsFileURL rewrites a THREDDS OPeNDAP URL, or the URL of its
// access form, to the URL that the THREDDS file server provides the whole
// file at. Other URLs are returned unchanged.
func threddsFileURL(rawurl string) string {
	const dods = "/thredds/dodsC/"
	u, err := url.Parse(rawurl)
	if err != nil || !strings.Contains(u.Path, dods) {
		return rawurl
	}
	u.Path = strings.Replace(u.Path, dods, "/thredds/fileServer/", 1)
	u.Path = strings.TrimSuffix(u.Path, ".html")
	u.RawQuery = ""
	return u.String()
}

// downloadHTTP downloads a file from the specified URL, retrying on
// network and server errors, and returns the path to the downloaded file.
func downloadHTTP(ctx context.Context, rawurl string, log logrus.FieldLogger) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("amdotext: invalid dataset URL: %v", err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "dataset.nc"
	}

	// Prepare a temporary directory for the downloads.
	dir, err := ioutil.TempDir("", "amdotext")
	if err != nil {
		return "", fmt.Errorf("amdotext: failed creating temporary download directory: %v", err)
	}
	fname := filepath.Join(dir, name)

	log.WithFields(logrus.Fields{
		"url":  rawurl,
		"file": fname,
	}).Info("amdotext: downloading dataset")

	err = backoff.RetryNotify(
		func() error {
			return get(ctx, rawurl, fname)
		},
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx),
		func(err error, d time.Duration) {
			log.WithField("url", rawurl).Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("amdotext: downloading %s: %v", rawurl, err)
	}
	return fname, nil
}

// get saves the response body from a GET request to rawurl to fname.
// Client errors are permanent.
func get(ctx context.Context, rawurl, fname string) error {
	req, err := http.NewRequest(http.MethodGet, rawurl, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}
	w, err := os.Create(fname)
	if err != nil {
		return backoff.Permanent(err)
	}
	if _, err = io.Copy(w, resp.Body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (where name is a directory), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("amdotext: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("amdotext: invalid storage provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "ap-southeast-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("amdotext: invalid dataset location: %v", err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return "", err
	}
	dir, err := ioutil.TempDir("", "amdotext")
	if err != nil {
		return "", fmt.Errorf("amdotext: failed creating temporary download directory: %v", err)
	}
	fname := filepath.Join(dir, filepath.Base(u.Path))
	log.WithFields(logrus.Fields{
		"blob": path,
		"file": fname,
	}).Info("amdotext: downloading dataset")

	r, err := bucket.NewReader(ctx, strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("amdotext: opening %s: %v", path, err)
	}
	defer r.Close()
	w, err := os.Create(fname)
	if err != nil {
		return "", fmt.Errorf("amdotext: failed creating file for download: %v", err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("amdotext: downloading %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fname, nil
}
