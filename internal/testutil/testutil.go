// Package testutil provides helpers for HTTP-level tests of the finlens server.
package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"finlens/internal/config"
)

// TestServer wraps httptest.Server with convenience methods.
// Its client does not follow redirects so tests can inspect them.
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	Client  *http.Client
	t       *testing.T
}

// ProjectRoot returns the directory holding go.mod
func ProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("could not get caller info")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// TestDataDir returns the path to the testdata directory
func TestDataDir() string {
	return filepath.Join(ProjectRoot(), "testdata")
}

// Config returns a configuration using the repository's web assets and
// sample statement, with uploads in a per-test temporary directory.
func Config(t *testing.T) *config.Config {
	t.Helper()
	root := ProjectRoot()
	data := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.DataDirectory = data
	cfg.UploadsDirectory = filepath.Join(data, "uploads")
	cfg.TemplatesDirectory = filepath.Join(root, "web", "templates")
	cfg.StaticDirectory = filepath.Join(root, "web", "static")
	cfg.CategoriesFile = filepath.Join(TestDataDir(), "categories.yaml")
	cfg.SampleStatement = filepath.Join(TestDataDir(), "sample_statement.csv")
	cfg.AnalysisTTL = time.Hour
	return cfg
}

// NewTestServer starts router on a local test server that closes with the test
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		t: t,
	}
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()

	resp, err := ts.Client.Get(ts.BaseURL + path)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// POST performs a POST request to the given path
func (ts *TestServer) POST(path string, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()

	resp, err := ts.Client.Post(ts.BaseURL+path, contentType, body)
	if err != nil {
		ts.t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// Upload posts content as a multipart form file field named "file".
// An empty filename sends the form without a file.
func (ts *TestServer) Upload(path, filename string, content []byte) *http.Response {
	ts.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			ts.t.Fatalf("create form file: %v", err)
		}
		part.Write(content)
	} else {
		mw.WriteField("note", "no file")
	}
	if err := mw.Close(); err != nil {
		ts.t.Fatalf("close multipart writer: %v", err)
	}

	return ts.POST(path, mw.FormDataContentType(), &body)
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}
