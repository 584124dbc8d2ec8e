package provision

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const artifactBody = `{"model_type":"decision_tree"}`

func TestDriveFetcherDirectDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "file-1", r.URL.Query().Get("id"))
		assert.Equal(t, "download", r.URL.Query().Get("export"))
		w.Header().Set("Content-Type", "application/octet-stream")
		fmt.Fprint(w, artifactBody)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	var progressed int64
	n, err := NewDriveFetcher(srv.URL, srv.Client()).Fetch(context.Background(), "file-1", &buf, func(written, _ int64) {
		progressed = written
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(artifactBody)), n)
	assert.Equal(t, artifactBody, buf.String())
	assert.Equal(t, n, progressed)
}

func TestDriveFetcherFollowsConfirmationCookie(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("confirm") == "" {
			http.SetCookie(w, &http.Cookie{Name: "download_warning_123", Value: "t0k3n"})
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html>can't scan this file for viruses</html>")
			return
		}
		assert.Equal(t, "t0k3n", r.URL.Query().Get("confirm"))
		w.Header().Set("Content-Type", "application/octet-stream")
		fmt.Fprint(w, artifactBody)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	_, err := NewDriveFetcher(srv.URL, srv.Client()).Fetch(context.Background(), "big", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, artifactBody, buf.String())
	assert.Equal(t, 2, calls)
}

func TestDriveFetcherFollowsConfirmationInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") == "" {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<a href="/uc?export=download&amp;confirm=AbC_9&amp;id=big">Download anyway</a>`)
			return
		}
		assert.Equal(t, "AbC_9", r.URL.Query().Get("confirm"))
		fmt.Fprint(w, artifactBody)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	_, err := NewDriveFetcher(srv.URL, srv.Client()).Fetch(context.Background(), "big", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, artifactBody, buf.String())
}

const downloadFormPage = `<!DOCTYPE html><html><head><title>Google Drive - Virus scan warning</title></head>
<body><div class="uc-main"><p class="uc-warning-subcaption">Google Drive can't scan this file for viruses.</p>
<form id="download-form" action="%s" method="get">
<input type="submit" id="uc-download-link" class="goog-inline-block jfk-button jfk-button-action" value="Download anyway"/>
<input type="hidden" name="id" value="big">
<input type="hidden" name="export" value="download">
<input type="hidden" name="confirm" value="t">
<input type="hidden" name="uuid" value="4f2c9a1e-77b0-4d5e-9a63-1c1b2e0f8d11">
</form></div></body></html>`

func TestDriveFetcherFollowsDownloadForm(t *testing.T) {
	var downloads int
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/download" || q.Get("confirm") != "t" || q.Get("uuid") == "" || q.Get("id") != "big" {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html>not confirmed</html>")
			return
		}
		downloads++
		assert.Equal(t, "download", q.Get("export"))
		w.Header().Set("Content-Type", "application/octet-stream")
		fmt.Fprint(w, artifactBody)
	}))
	defer files.Close()

	drive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, downloadFormPage, files.URL+"/download")
	}))
	defer drive.Close()

	var buf bytes.Buffer
	n, err := NewDriveFetcher(drive.URL+"/uc", drive.Client()).Fetch(context.Background(), "big", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(artifactBody)), n)
	assert.Equal(t, artifactBody, buf.String())
	assert.Equal(t, 1, downloads)
}

func TestDriveFetcherDownloadFormRelativeAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/download" && r.URL.Query().Get("confirm") == "t" {
			assert.Equal(t, "4f2c9a1e-77b0-4d5e-9a63-1c1b2e0f8d11", r.URL.Query().Get("uuid"))
			fmt.Fprint(w, artifactBody)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, downloadFormPage, "/download")
	}))
	defer srv.Close()

	var buf bytes.Buffer
	_, err := NewDriveFetcher(srv.URL+"/uc", srv.Client()).Fetch(context.Background(), "big", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, artifactBody, buf.String())
}

func TestParseDownloadFormIgnoresOtherForms(t *testing.T) {
	_, _, ok := parseDownloadForm([]byte(`<form id="search" action="/s"><input name="q" value="x"></form>`))
	assert.False(t, ok)

	action, params, ok := parseDownloadForm([]byte(fmt.Sprintf(downloadFormPage, "https://drive.usercontent.google.com/download")))
	require.True(t, ok)
	assert.Equal(t, "https://drive.usercontent.google.com/download", action)
	assert.Equal(t, "t", params.Get("confirm"))
	assert.Equal(t, "big", params.Get("id"))
	assert.Len(t, params, 4)
}

func TestDriveFetcherRevokedIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewDriveFetcher(srv.URL, srv.Client()).Fetch(context.Background(), "gone", &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestDriveFetcherHTMLWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>Sorry, you can't view or download this file at this time.</html>")
	}))
	defer srv.Close()

	_, err := NewDriveFetcher(srv.URL, srv.Client()).Fetch(context.Background(), "quota", &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestDriveFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewDriveFetcher(srv.URL, srv.Client()).Fetch(context.Background(), "x", &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
}

func TestLogProgressSteps(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	progress := LogProgress(zap.New(core))
	for written := int64(0); written <= 100; written += 5 {
		progress(written, 100)
	}
	assert.Equal(t, 11, logs.Len())
}
