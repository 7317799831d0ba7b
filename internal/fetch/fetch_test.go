package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/report.pdf", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4\n% test document\n%%EOF\n"))
	})
	mux.HandleFunc("/files/page.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not a pdf</html>"))
	})
	mux.HandleFunc("/files/big.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(append([]byte("%PDF-1.4\n"), make([]byte, 4096)...))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	f := New(Options{Timeout: 5 * time.Second, MaxFileSize: 1024, CacheSize: 4}, testLogger())

	result, err := f.Fetch(context.Background(), srv.URL+"/files/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", result.Name)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Contains(t, string(result.Data), "%PDF-1.4")

	again, err := f.Fetch(context.Background(), srv.URL+"/files/report.pdf")
	require.NoError(t, err)
	assert.Same(t, result, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	stats := f.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Size)
}

func TestFetcher_FetchErrors(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	f := New(Options{Timeout: 5 * time.Second, MaxFileSize: 1024, CacheSize: 4}, testLogger())

	tests := []struct {
		name     string
		url      string
		wantType pdferrors.ErrorType
	}{
		{name: "unsupported scheme", url: "ftp://example.com/a.pdf", wantType: pdferrors.ErrorTypeInvalidArgument},
		{name: "not a url", url: "::", wantType: pdferrors.ErrorTypeInvalidArgument},
		{name: "not found", url: srv.URL + "/files/missing.pdf", wantType: pdferrors.ErrorTypeFetchFailed},
		{name: "not a pdf", url: srv.URL + "/files/page.html", wantType: pdferrors.ErrorTypeFetchFailed},
		{name: "too large", url: srv.URL + "/files/big.pdf", wantType: pdferrors.ErrorTypeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.url)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, pdferrors.Classify(err))
		})
	}
	assert.Equal(t, 0, f.Stats().Size)
}

func TestFetcher_ContextCancelled(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	f := New(Options{Timeout: 5 * time.Second, MaxFileSize: 1024}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, srv.URL+"/files/report.pdf")
	assert.Equal(t, pdferrors.ErrorTypeFetchFailed, pdferrors.Classify(err))
}

func TestNameFromURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "https://example.com/docs/sample-1.pdf", want: "sample-1.pdf"},
		{raw: "https://example.com/docs/my%20file.pdf", want: "my file.pdf"},
		{raw: "https://example.com/", want: DefaultName},
		{raw: "https://example.com", want: DefaultName},
		{raw: "https://example.com/download?id=3", want: "download"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, NameFromURL(u))
		})
	}
}
