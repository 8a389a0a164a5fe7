package pypi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/pydigger/pkg/cache"
	perrors "github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/integrations"
)

const flaskDoc = `{
  "info": {
    "name": "Flask",
    "version": "3.0.0",
    "summary": "A simple framework for building complex web applications.",
    "license": null,
    "license_expression": "BSD-3-Clause",
    "home_page": "",
    "download_url": null,
    "maintainer": null,
    "author": "Armin Ronacher",
    "project_urls": {
      "Source": "https://github.com/pallets/flask/",
      "Funding": null,
      "Donate": "https://palletsprojects.com/donate"
    },
    "classifiers": ["Framework :: Flask"]
  },
  "urls": [],
  "vulnerabilities": []
}`

func testClient(t *testing.T, handler http.Handler) (*Client, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(fc, time.Hour).WithBaseURL(server.URL + "/pypi/")
	c.SetHTTPClient(server.Client())
	return c, &hits
}

func TestClient_FetchDocument(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pypi/flask/3.0.0/json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(flaskDoc))
	}))

	doc, err := c.FetchDocument(context.Background(), "flask", "3.0.0", false)
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}

	info := doc.Info
	if info.Name != "Flask" || info.Version != "3.0.0" {
		t.Errorf("identity = %s %s", info.Name, info.Version)
	}
	if info.License != "" || info.Maintainer != "" || info.DownloadURL != "" {
		t.Errorf("null fields should decode empty: %+v", info)
	}
	if info.LicenseExpression != "BSD-3-Clause" {
		t.Errorf("LicenseExpression = %q", info.LicenseExpression)
	}
	if len(info.ProjectURLs) != 2 || info.ProjectURLs["Source"] != "https://github.com/pallets/flask/" {
		t.Errorf("ProjectURLs = %v", info.ProjectURLs)
	}
}

func TestClient_FetchDocumentLatest(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pypi/tiny/json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"info": {"name": "tiny", "version": "0.1", "project_urls": null}}`))
	}))

	doc, err := c.FetchDocument(context.Background(), "tiny", "", false)
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if doc.Info.ProjectURLs == nil {
		t.Error("ProjectURLs should be an empty map, not nil")
	}
}

func TestClient_FetchDocumentCachesVersions(t *testing.T) {
	c, hits := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(flaskDoc))
	}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.FetchDocument(ctx, "flask", "3.0.0", false); err != nil {
			t.Fatal(err)
		}
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}

	if _, err := c.FetchDocument(ctx, "flask", "3.0.0", true); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(hits); got != 2 {
		t.Errorf("refresh should refetch, hits = %d", got)
	}

	// Latest-version documents change over time and are never cached.
	for i := 0; i < 2; i++ {
		if _, err := c.FetchDocument(ctx, "flask", "", false); err != nil {
			t.Fatal(err)
		}
	}
	if got := atomic.LoadInt32(hits); got != 4 {
		t.Errorf("hits = %d, want 4", got)
	}
}

func TestClient_FetchDocumentErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		code     perrors.Code
		sentinel error
	}{
		{
			name:     "not found",
			handler:  http.NotFound,
			code:     perrors.ErrCodeNotFound,
			sentinel: integrations.ErrNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			code:     perrors.ErrCodeNetwork,
			sentinel: integrations.ErrNetwork,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"info": [`))
			},
			code:     perrors.ErrCodeParse,
			sentinel: integrations.ErrDecode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, tt.handler)
			_, err := c.FetchDocument(context.Background(), "pkg", "1.0", true)
			if !perrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want sentinel %v", err, tt.sentinel)
			}
		})
	}
}

func TestClient_FetchDocumentRejectsBadNames(t *testing.T) {
	c := NewClient(cache.NewNullCache(), 0)
	_, err := c.FetchDocument(context.Background(), "../etc", "1", false)
	if !perrors.Is(err, perrors.ErrCodeInvalidPackage) {
		t.Errorf("error = %v, want INVALID_PACKAGE", err)
	}
}

func TestDocumentURL(t *testing.T) {
	c := NewClient(cache.NewNullCache(), 0)
	if got := c.DocumentURL("requests", "2.32.3"); got != "https://pypi.org/pypi/requests/2.32.3/json" {
		t.Errorf("DocumentURL = %q", got)
	}
	if got := c.DocumentURL("requests", ""); got != "https://pypi.org/pypi/requests/json" {
		t.Errorf("DocumentURL(latest) = %q", got)
	}
}
