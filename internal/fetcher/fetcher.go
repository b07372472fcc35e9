// Package fetcher retrieves layer data from local files, HTTP(S), FTP and ZIP sources.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Sources opens layer sources by scheme. Plain paths and file:// URLs are
// read from disk; http, https and ftp URLs go through the matching fetcher.
type Sources struct {
	HTTP Fetcher
	FTP  Fetcher
}

// NewSources builds a Sources with an HTTP and an FTP fetcher.
func NewSources(httpOpts HTTPOptions, ftpOpts FTPOptions) *Sources {
	return &Sources{
		HTTP: NewHTTPFetcher(httpOpts),
		FTP:  NewFTPFetcher(ftpOpts),
	}
}

// Open returns a reader for the given source.
func (s *Sources) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	scheme, target, err := splitSource(source)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("fetcher: opening source",
		zap.String("scheme", scheme),
		zap.String("source", source),
	)

	switch scheme {
	case "file":
		f, err := os.Open(target)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", target)
		}
		return f, nil
	case "http", "https":
		if s.HTTP == nil {
			return nil, eris.Errorf("fetcher: no http fetcher for %s", source)
		}
		return s.HTTP.Download(ctx, source)
	case "ftp":
		if s.FTP == nil {
			return nil, eris.Errorf("fetcher: no ftp fetcher for %s", source)
		}
		return s.FTP.Download(ctx, source)
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", scheme)
	}
}

// Localize makes the source available as a file on disk and returns its path.
// Local sources are returned as is; remote sources are downloaded into dir.
func (s *Sources) Localize(ctx context.Context, source, dir string) (string, error) {
	scheme, target, err := splitSource(source)
	if err != nil {
		return "", err
	}
	if scheme == "file" {
		return target, nil
	}

	var f Fetcher
	switch scheme {
	case "http", "https":
		f = s.HTTP
	case "ftp":
		f = s.FTP
	}
	if f == nil {
		return "", eris.Errorf("fetcher: cannot localize %s", source)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create temp dir")
	}

	name := filepath.Base(target)
	if name == "." || name == "/" || name == "" {
		name = "download"
	}
	dest := filepath.Join(dir, name)

	n, err := f.DownloadToFile(ctx, source, dest)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", source)
	}

	zap.L().Info("fetcher: source downloaded",
		zap.String("source", source),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}

// splitSource returns the scheme ("file" for plain paths) and, for local
// files, the filesystem path.
func splitSource(source string) (string, string, error) {
	if source == "" {
		return "", "", eris.New("fetcher: empty source")
	}
	if !strings.Contains(source, "://") {
		return "file", source, nil
	}

	u, err := url.Parse(source)
	if err != nil {
		return "", "", eris.Wrap(err, "fetcher: parse source")
	}

	return strings.ToLower(u.Scheme), u.Path, nil
}
