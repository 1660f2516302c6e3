// Package fetcher retrieves campaign export documents from the locations a
// dashboard tenant can point at: local paths, HTTP(S) endpoints, and partner
// FTP drops. The export format parsers (CSV, JSON, XLSX) live here as well so
// the source layer stays thin.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a remote campaign export.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Client resolves export locations across the supported schemes.
type Client struct {
	HTTP *HTTPFetcher
	FTP  *FTPFetcher
}

// NewClient builds a Client with one HTTP fetcher and one FTP fetcher sharing
// the configured timeout.
func NewClient(opts HTTPOptions) *Client {
	return &Client{
		HTTP: NewHTTPFetcher(opts),
		FTP:  NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}),
	}
}

// Open returns a reader for an export location. Locations with an http(s) or
// ftp scheme are downloaded; anything else is treated as a local file path.
func (c *Client) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch locationScheme(location) {
	case "http", "https":
		return c.HTTP.Download(ctx, location)
	case "ftp":
		return c.FTP.Download(ctx, location)
	default:
		f, err := os.Open(location)
		if err != nil {
			return nil, eris.Wrapf(err, "open export %s", location)
		}
		return f, nil
	}
}

// Materialize makes the export available as a file on disk and returns its
// path. Local locations pass through untouched; remote ones are downloaded
// into dir. Needed for formats whose parser requires a seekable file.
func (c *Client) Materialize(ctx context.Context, location, dir string) (string, error) {
	var f Fetcher
	switch locationScheme(location) {
	case "http", "https":
		f = c.HTTP
	case "ftp":
		f = c.FTP
	default:
		return location, nil
	}

	name := "export"
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name = base
		}
	}
	dest := filepath.Join(dir, name)
	if _, err := f.DownloadToFile(ctx, location, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func locationScheme(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Scheme
}
