package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastHTTP() HTTPConfig {
	return HTTPConfig{Timeout: 5 * time.Second, Retries: 3, RetryDelay: time.Millisecond}
}

const samplePypiJSON = `{
  "info": {"name": "requests", "version": "2.32.3"},
  "releases": {
    "2.31.0": [{"filename": "requests-2.31.0.tar.gz", "yanked": false}],
    "2.32.0": [{"filename": "requests-2.32.0.tar.gz", "yanked": true}],
    "2.32.3": [{"filename": "requests-2.32.3-py3-none-any.whl", "yanked": false}],
    "2.33.0b1": [{"filename": "requests-2.33.0b1.tar.gz", "yanked": false}],
    "0.0.1": []
  }
}`

func TestPypiJSONIndexAdapterLookup(t *testing.T) {
	tests := []struct {
		name       string
		includePre bool
		wantNewest string
	}{
		{name: "stable only", wantNewest: "2.32.3"},
		{name: "with pre-releases", includePre: true, wantNewest: "2.33.0b1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(samplePypiJSON))
			}))
			defer server.Close()

			adapter := NewPypiJSONIndexAdapter(server.URL+"/simple/", tt.includePre, fastHTTP())
			record, err := adapter.Lookup(t.Context(), "Requests")
			require.NoError(t, err)
			assert.Equal(t, "/pypi/requests/json", gotPath)
			assert.Equal(t, "Requests", record.Name)
			assert.Equal(t, tt.wantNewest, record.Newest)
			if diff := cmp.Diff([]string{"2.31.0", "2.32.3", "2.33.0b1"}, record.Versions); diff != "" {
				t.Fatalf("unexpected versions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPypiJSONIndexAdapterFallsBackToInfoVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"info": {"version": "1.0"}, "releases": {}}`))
	}))
	defer server.Close()

	record, err := NewPypiJSONIndexAdapter(server.URL, false, fastHTTP()).Lookup(t.Context(), "thing")
	require.NoError(t, err)
	assert.Equal(t, "1.0", record.Newest)
}

func TestIndexAdaptersHTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errbuilder.ErrCode
	}{
		{name: "not found", status: http.StatusNotFound, wantCode: errbuilder.CodeNotFound},
		{name: "server error", status: http.StatusBadGateway, wantCode: errbuilder.CodeInternal},
		{name: "forbidden", status: http.StatusForbidden, wantCode: errbuilder.CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewPypiJSONIndexAdapter(server.URL, false, fastHTTP()).Lookup(t.Context(), "demo")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errbuilder.CodeOf(err))

			_, err = NewPipSimpleIndexAdapter(server.URL, false, fastHTTP()).Lookup(t.Context(), "demo")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errbuilder.CodeOf(err))

			_, err = NewNpmRegistryIndexAdapter(server.URL, false, fastHTTP()).Lookup(t.Context(), "demo")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errbuilder.CodeOf(err))
		})
	}
}

func TestFetchIndexDocumentRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := fetchIndexDocument(t.Context(), server.URL, "", normalizeHTTPConfig(fastHTTP()))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchIndexDocumentStopsRetryingWhenCanceled(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	cfg := normalizeHTTPConfig(HTTPConfig{Timeout: 5 * time.Second, Retries: 3, RetryDelay: 10 * time.Second})

	start := time.Now()
	_, err := fetchIndexDocument(ctx, server.URL, "", cfg)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchIndexDocumentBasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		cfg      HTTPConfig
		wantUser string
		wantPass string
		wantAuth bool
	}{
		{name: "anonymous"},
		{name: "token only", cfg: HTTPConfig{Token: "secret"}, wantUser: "__token__", wantPass: "secret", wantAuth: true},
		{name: "user and token", cfg: HTTPConfig{User: "ci", Token: "secret"}, wantUser: "ci", wantPass: "secret", wantAuth: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotPass string
			var gotAuth bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, gotPass, gotAuth = r.BasicAuth()
				_, _ = w.Write([]byte("{}"))
			}))
			defer server.Close()

			cfg := tt.cfg
			cfg.RetryDelay = time.Millisecond
			_, err := fetchIndexDocument(t.Context(), server.URL, "", normalizeHTTPConfig(cfg))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuth, gotAuth)
			assert.Equal(t, tt.wantUser, gotUser)
			assert.Equal(t, tt.wantPass, gotPass)
		})
	}
}

func TestPipSimpleIndexAdapterLookup(t *testing.T) {
	var gotPath, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`<html><body>
<a href="../../packages/zope_interface-6.1-cp312-cp312-manylinux.whl#sha256=abc">zope_interface-6.1</a>
<a href="../../packages/zope.interface-6.2.tar.gz" data-requires-python="&gt;=3.7">zope.interface-6.2.tar.gz</a>
<a href="../../packages/zope.interface-6.3.tar.gz" data-yanked="broken">zope.interface-6.3.tar.gz</a>
<a href="../../packages/zope.interface-7.0a1.tar.gz">zope.interface-7.0a1.tar.gz</a>
</body></html>`))
	}))
	defer server.Close()

	record, err := NewPipSimpleIndexAdapter(server.URL, false, fastHTTP()).Lookup(t.Context(), "zope.interface")
	require.NoError(t, err)
	assert.Equal(t, "/simple/zope-interface/", gotPath)
	assert.Equal(t, "text/html", gotAccept)
	assert.Equal(t, "6.2", record.Newest)
	if diff := cmp.Diff([]string{"6.1", "6.2", "7.0a1"}, record.Versions); diff != "" {
		t.Fatalf("unexpected versions (-want +got):\n%s", diff)
	}
}

func TestParsePipVersionFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "wheel", filename: "demo-1.2.3-py3-none-any.whl", want: "1.2.3"},
		{name: "wheel with build tag", filename: "demo-1.2.3-1-py3-none-any.whl", want: "1.2.3"},
		{name: "sdist", filename: "demo-4.5.6.tar.gz", want: "4.5.6"},
		{name: "zip sdist", filename: "demo-0.9.zip", want: "0.9"},
		{name: "missing version", filename: "demo.whl", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parsePipVersionFromFilename(tt.filename)); diff != "" {
				t.Fatalf("unexpected version (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizePipSimpleIndex(t *testing.T) {
	assert.Equal(t, "https://pypi.org/simple/", normalizePipSimpleIndex("https://pypi.org"))
	assert.Equal(t, "https://pypi.org/simple/", normalizePipSimpleIndex("https://pypi.org/simple/"))
	assert.Equal(t, "https://proget.local/pypi/internal/simple/", normalizePipSimpleIndex(" https://proget.local/pypi/internal/simple "))
}

func TestNormalizePypiJSONBase(t *testing.T) {
	assert.Equal(t, DefaultPypiIndex, normalizePypiJSONBase(""))
	assert.Equal(t, "https://pypi.org", normalizePypiJSONBase("https://pypi.org/simple/"))
	assert.Equal(t, "https://pypi.org", normalizePypiJSONBase("https://pypi.org/pypi"))
}

func TestPipCommandIndexAdapterLookup(t *testing.T) {
	runner := &fakeCommandRunner{output: []byte("requests (2.32.3)\nAvailable versions: 2.32.3, 2.31.0, 2.30.0\n  INSTALLED: 2.31.0\n")}
	adapter := NewPipCommandIndexAdapter(runner, "/work", "https://pypi.example.com", true)

	record, err := adapter.Lookup(t.Context(), "requests")
	require.NoError(t, err)
	assert.Equal(t, "2.32.3", record.Newest)
	if diff := cmp.Diff([]string{"2.30.0", "2.31.0", "2.32.3"}, record.Versions); diff != "" {
		t.Fatalf("unexpected versions (-want +got):\n%s", diff)
	}
	assert.Equal(t, "uvx pip index versions requests --index-url https://pypi.example.com/simple/ --pre", strings.Join(runner.calls[0], " "))
}

func TestPipCommandIndexAdapterErrors(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		err      error
		wantCode errbuilder.ErrCode
	}{
		{
			name:     "unknown package",
			err:      errors.New("ERROR: No matching distribution found for nothere: exit status 1"),
			wantCode: errbuilder.CodeNotFound,
		},
		{name: "command failure", err: errors.New("uvx: not found"), wantCode: errbuilder.CodeInternal},
		{name: "unexpected output", output: "something else\n", wantCode: errbuilder.CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeCommandRunner{output: []byte(tt.output), err: tt.err}
			_, err := NewPipCommandIndexAdapter(runner, "", "", false).Lookup(t.Context(), "nothere")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errbuilder.CodeOf(err))
		})
	}
}

func TestNpmRegistryIndexAdapterLookup(t *testing.T) {
	var gotPath, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{
  "name": "@types/node",
  "dist-tags": {"latest": "20.11.5", "next": "21.0.0-rc.1"},
  "versions": {"20.9.0": {}, "20.11.5": {}, "20.10.0": {}, "21.0.0-rc.1": {}}
}`))
	}))
	defer server.Close()

	record, err := NewNpmRegistryIndexAdapter(server.URL+"/", false, fastHTTP()).Lookup(t.Context(), "@types/node")
	require.NoError(t, err)
	assert.Equal(t, "/@types%2Fnode", gotPath)
	assert.Equal(t, npmAbbreviatedMetadata, gotAccept)
	assert.Equal(t, "20.11.5", record.Newest)
	if diff := cmp.Diff([]string{"20.9.0", "20.10.0", "20.11.5", "21.0.0-rc.1"}, record.Versions); diff != "" {
		t.Fatalf("unexpected versions (-want +got):\n%s", diff)
	}
}

func TestNpmCommandIndexAdapterLookup(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantNewest string
	}{
		{name: "many versions", output: `{"versions": ["1.0.0", "1.2.0", "1.10.0"], "version": "1.10.0"}`, wantNewest: "1.10.0"},
		{name: "single version", output: `{"versions": "0.1.0", "version": "0.1.0"}`, wantNewest: "0.1.0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeCommandRunner{output: []byte(tt.output)}
			record, err := NewNpmCommandIndexAdapter(runner, "/work", "", false).Lookup(t.Context(), "pkg")
			require.NoError(t, err)
			assert.Equal(t, tt.wantNewest, record.Newest)
			assert.Equal(t, "npm view pkg versions version --json", strings.Join(runner.calls[0], " "))
		})
	}
}

func TestNpmCommandIndexAdapterNotFound(t *testing.T) {
	runner := &fakeCommandRunner{err: errors.New("npm ERR! code E404: exit status 1")}
	_, err := NewNpmCommandIndexAdapter(runner, "", "https://npm.example.com", false).Lookup(t.Context(), "nothere")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.Contains(t, strings.Join(runner.calls[0], " "), "--registry https://npm.example.com")
}
