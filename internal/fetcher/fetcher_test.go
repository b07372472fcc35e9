package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSource(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantScheme string
		wantPath   string
		wantErr    bool
	}{
		{name: "plain path", source: "geojson/kommuner.geojson", wantScheme: "file", wantPath: "geojson/kommuner.geojson"},
		{name: "file url", source: "file:///data/kommuner.geojson", wantScheme: "file", wantPath: "/data/kommuner.geojson"},
		{name: "https", source: "HTTPS://example.no/skoler.geojson", wantScheme: "https", wantPath: "/skoler.geojson"},
		{name: "ftp", source: "ftp://ftp.example.no/adm/kommuner.zip", wantScheme: "ftp", wantPath: "/adm/kommuner.zip"},
		{name: "empty", source: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, path, err := splitSource(tt.source)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScheme, scheme)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestSourcesOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kommuner.geojson")
	require.NoError(t, writeTestFile(path, `{"type":"FeatureCollection","features":[]}`))

	s := NewSources(HTTPOptions{}, FTPOptions{})
	rc, err := s.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
}

func TestSourcesOpen_MissingFile(t *testing.T) {
	s := NewSources(HTTPOptions{}, FTPOptions{})
	_, err := s.Open(context.Background(), filepath.Join(t.TempDir(), "nope.geojson"))
	require.Error(t, err)
}

func TestSourcesOpen_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	s := &Sources{HTTP: newTestFetcher()}
	rc, err := s.Open(context.Background(), srv.URL+"/skoler.geojson")
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
}

func TestSourcesOpen_UnsupportedScheme(t *testing.T) {
	s := NewSources(HTTPOptions{}, FTPOptions{})
	_, err := s.Open(context.Background(), "s3://bucket/kommuner.geojson")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestSourcesOpen_NoFetcher(t *testing.T) {
	s := &Sources{}
	_, err := s.Open(context.Background(), "https://example.no/x.geojson")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no http fetcher")

	_, err = s.Open(context.Background(), "ftp://example.no/x.geojson")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ftp fetcher")
}

func TestSourcesLocalize_Local(t *testing.T) {
	s := NewSources(HTTPOptions{}, FTPOptions{})
	got, err := s.Localize(context.Background(), "geojson/kommuner.geojson", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "geojson/kommuner.geojson", got)
}

func TestSourcesLocalize_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zipbytes"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "cache")
	s := &Sources{HTTP: newTestFetcher()}
	got, err := s.Localize(context.Background(), srv.URL+"/data/kommuner.zip", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kommuner.zip"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "zipbytes", string(data))
}

func TestSourcesLocalize_Unsupported(t *testing.T) {
	s := &Sources{}
	_, err := s.Localize(context.Background(), "gopher://example.no/x", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot localize")
}
