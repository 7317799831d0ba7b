package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-workdesk/internal/fetch"
	"github.com/a3tai/pdf-workdesk/internal/pdf"
	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
	"github.com/a3tai/pdf-workdesk/internal/pdf/pdftest"
	"github.com/a3tai/pdf-workdesk/internal/session"
)

const testMaxSessions = 8

type testAPI struct {
	t       *testing.T
	srv     *httptest.Server
	service *pdf.Service
}

func newTestAPI(t *testing.T, maxFileSize int64) *testAPI {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := pdf.NewService(pdf.Options{MaxFileSize: maxFileSize, PreviewDPI: 72}, logger)
	fetcher := fetch.New(fetch.Options{Timeout: 5 * time.Second, MaxFileSize: maxFileSize, CacheSize: 4}, logger)
	api := NewServer(service, session.NewStore(time.Hour, testMaxSessions, logger), fetcher, logger)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, service: service}
}

func (a *testAPI) do(method, path, contentType string, body io.Reader) *http.Response {
	a.t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(a.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) postJSON(path string, v any) *http.Response {
	a.t.Helper()
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		require.NoError(a.t, err)
		body = bytes.NewReader(data)
	}
	return a.do(http.MethodPost, path, "application/json", body)
}

func (a *testAPI) upload(path, name string, data []byte, password string) *http.Response {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(a.t, err)
	_, err = fw.Write(data)
	require.NoError(a.t, err)
	if password != "" {
		require.NoError(a.t, mw.WriteField("password", password))
	}
	require.NoError(a.t, mw.Close())
	return a.do(http.MethodPost, path, mw.FormDataContentType(), &buf)
}

func (a *testAPI) createSession() string {
	a.t.Helper()
	resp := a.postJSON("/api/sessions", nil)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	var body struct {
		ID string `json:"id"`
	}
	decode(a.t, resp, &body)
	require.NotEmpty(a.t, body.ID)
	return body.ID
}

// sessionWithDocument creates a session holding a generated document
func (a *testAPI) sessionWithDocument(pages int) string {
	a.t.Helper()
	id := a.createSession()
	resp := a.upload("/api/sessions/"+id+"/document", "report.pdf", pdftest.Generate(pdftest.Texts(pages), ""), "")
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	return id
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type apiError struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func assertError(t *testing.T, resp *http.Response, status int, errType string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)
	var body apiError
	decode(t, resp, &body)
	assert.Equal(t, errType, body.Type)
	assert.NotEmpty(t, body.Error)
}

func TestHealthAndPaperSizes(t *testing.T) {
	api := newTestAPI(t, 1<<20)

	resp := api.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		Status     string `json:"status"`
		FetchCache struct {
			Capacity int `json:"capacity"`
		} `json:"fetch_cache"`
	}
	decode(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 4, health.FetchCache.Capacity)

	resp = api.do(http.MethodGet, "/api/paper-sizes", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sizes struct {
		PaperSizes []string `json:"paper_sizes"`
		Default    string   `json:"default"`
	}
	decode(t, resp, &sizes)
	assert.Contains(t, sizes.PaperSizes, "A4")
	assert.Equal(t, "A4", sizes.Default)

	resp = api.do(http.MethodGet, "/api/encryption-algorithms", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.createSession()

	resp := api.do(http.MethodGet, "/api/sessions/"+id+"/metadata", "", nil)
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = api.do(http.MethodDelete, "/api/sessions/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = api.do(http.MethodDelete, "/api/sessions/"+id, "", nil)
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = api.postJSON("/api/sessions/"+id+"/rotate", map[string]int{"angle": 90})
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestSessionLimit(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	ids := make([]string, 0, testMaxSessions)
	for range testMaxSessions {
		ids = append(ids, api.createSession())
	}

	resp := api.postJSON("/api/sessions", nil)
	assertError(t, resp, http.StatusServiceUnavailable, "LIMIT_EXCEEDED")

	resp = api.do(http.MethodDelete, "/api/sessions/"+ids[0], "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	api.createSession()
}

func TestUploadAndMetadata(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.createSession()

	resp := api.upload("/api/sessions/"+id+"/document", "report.pdf", pdftest.Generate(pdftest.Texts(3), ""), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc documentResponse
	decode(t, resp, &doc)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, 3, doc.PageCount)
	assert.False(t, doc.Encrypted)

	resp = api.do(http.MethodGet, "/api/sessions/"+id+"/metadata", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var md struct {
		Rows []pdf.Row `json:"rows"`
	}
	decode(t, resp, &md)
	require.NotEmpty(t, md.Rows)
	assert.Equal(t, pdf.Row{Key: "Number of pages", Value: "3"}, md.Rows[0])
}

func TestUploadErrors(t *testing.T) {
	api := newTestAPI(t, 2048)
	id := api.createSession()
	path := "/api/sessions/" + id + "/document"

	resp := api.upload(path, "notes.pdf", []byte("not a pdf"), "")
	assertError(t, resp, http.StatusBadRequest, "INVALID_DOCUMENT")

	resp = api.upload(path, "big.pdf", append([]byte("%PDF-1.4\n"), make([]byte, 4096)...), "")
	assertError(t, resp, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE")

	resp = api.postJSON(path, map[string]string{})
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = api.do(http.MethodPost, path, "application/json", strings.NewReader("{broken"))
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestUploadFromURL(t *testing.T) {
	data := pdftest.Generate(pdftest.Texts(2), "")
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/remote.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(data)
	}))
	defer remote.Close()

	api := newTestAPI(t, 1<<20)
	id := api.createSession()

	resp := api.postJSON("/api/sessions/"+id+"/document", map[string]string{"url": remote.URL + "/files/remote.pdf"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc documentResponse
	decode(t, resp, &doc)
	assert.Equal(t, "remote.pdf", doc.Name)
	assert.Equal(t, 2, doc.PageCount)

	resp = api.postJSON("/api/sessions/"+id+"/document", map[string]string{"url": remote.URL + "/files/missing.pdf"})
	assertError(t, resp, http.StatusBadGateway, "FETCH_FAILED")
}

func TestExtractText(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.sessionWithDocument(3)
	path := "/api/sessions/" + id + "/text"

	resp := api.postJSON(path, map[string]string{"pages": "2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Text      string           `json:"text"`
		Pages     []int            `json:"pages"`
		Truncated *bool            `json:"truncated"`
		Artifact  artifactResponse `json:"artifact"`
	}
	decode(t, resp, &body)
	assert.Contains(t, body.Text, "Page 2 Text")
	assert.Equal(t, []int{2}, body.Pages)
	require.NotNil(t, body.Truncated)
	assert.False(t, *body.Truncated)
	assert.Equal(t, "report.txt", body.Artifact.Name)

	resp = api.do(http.MethodGet, body.Artifact.URL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	downloaded, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body.Text, string(downloaded))

	resp = api.postJSON(path, map[string]string{"pages": "5"})
	assertError(t, resp, http.StatusBadRequest, "PAGE_OUT_OF_RANGE")

	resp = api.postJSON(path, map[string]string{"pages": "3-1"})
	assertError(t, resp, http.StatusBadRequest, "INVALID_PAGE_SPEC")

	resp = api.postJSON(path, map[string]string{"mode": "fancy"})
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestRotateAndDownload(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.sessionWithDocument(2)

	resp := api.postJSON("/api/sessions/"+id+"/rotate", map[string]int{"angle": 90})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var artifact artifactResponse
	decode(t, resp, &artifact)
	assert.Equal(t, "report_rotated_90.pdf", artifact.Name)
	assert.Equal(t, pdf.MIMETypePDF, artifact.MIMEType)

	resp = api.do(http.MethodGet, artifact.URL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pdf.MIMETypePDF, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "report_rotated_90.pdf")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	resp = api.do(http.MethodGet, "/api/sessions/"+id+"/artifacts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(http.MethodGet, "/api/sessions/"+id+"/artifacts/missing.pdf", "", nil)
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = api.postJSON("/api/sessions/"+id+"/rotate", map[string]int{"angle": 45})
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestMerge(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.sessionWithDocument(2)

	resp := api.postJSON("/api/sessions/"+id+"/merge", nil)
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = api.upload("/api/sessions/"+id+"/merge-document", "appendix.pdf", pdftest.Generate(pdftest.Texts(1), ""), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.postJSON("/api/sessions/"+id+"/merge", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var artifact artifactResponse
	decode(t, resp, &artifact)
	assert.Equal(t, "merged.pdf", artifact.Name)
}

func TestPasswordFlow(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.sessionWithDocument(1)

	resp := api.postJSON("/api/sessions/"+id+"/decrypt", nil)
	assertError(t, resp, http.StatusBadRequest, "UNSUPPORTED_OPERATION")

	resp = api.postJSON("/api/sessions/"+id+"/encrypt", map[string]string{"password": ""})
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = api.postJSON("/api/sessions/"+id+"/encrypt", map[string]string{"password": "secret", "algorithm": "AES-128"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var artifact artifactResponse
	decode(t, resp, &artifact)
	assert.Equal(t, "protected_report.pdf", artifact.Name)

	resp = api.do(http.MethodGet, artifact.URL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	protected, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	other := api.createSession()
	path := "/api/sessions/" + other + "/document"

	resp = api.upload(path, "locked.pdf", protected, "")
	assertError(t, resp, http.StatusUnauthorized, "PASSWORD_REQUIRED")

	resp = api.upload(path, "locked.pdf", protected, "wrong")
	assertError(t, resp, http.StatusUnauthorized, "INVALID_PASSWORD")

	resp = api.upload(path, "locked.pdf", protected, "secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc documentResponse
	decode(t, resp, &doc)
	assert.True(t, doc.Encrypted)

	resp = api.postJSON("/api/sessions/"+other+"/decrypt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &artifact)
	assert.Equal(t, "unprotected_locked.pdf", artifact.Name)
}

func TestReduce(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.sessionWithDocument(2)

	resp := api.postJSON("/api/sessions/"+id+"/reduce", map[string]any{})
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = api.postJSON("/api/sessions/"+id+"/reduce", map[string]any{"remove_duplication": true, "lossless": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Artifact     artifactResponse `json:"artifact"`
		OriginalSize int64            `json:"original_size"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "report_reduced.pdf", body.Artifact.Name)
	assert.Positive(t, body.OriginalSize)

	resp = api.postJSON("/api/sessions/"+id+"/reduce", map[string]any{"unknown_option": true})
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestPreview(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := api.sessionWithDocument(2)

	resp := api.do(http.MethodGet, "/api/sessions/"+id+"/preview/3", "", nil)
	assertError(t, resp, http.StatusBadRequest, "PAGE_OUT_OF_RANGE")

	resp = api.do(http.MethodGet, "/api/sessions/"+id+"/preview/first", "", nil)
	assertError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = api.do(http.MethodGet, "/api/sessions/"+id+"/preview/1", "", nil)
	if !api.service.PreviewAvailable() {
		assertError(t, resp, http.StatusBadRequest, "UNSUPPORTED_OPERATION")
		return
	}
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pdf.MIMETypePNG, resp.Header.Get("Content-Type"))
}

func TestStatusFor(t *testing.T) {
	tests := map[pdferrors.ErrorType]int{
		pdferrors.ErrorTypeInvalidPageSpec:      http.StatusBadRequest,
		pdferrors.ErrorTypePageOutOfRange:       http.StatusBadRequest,
		pdferrors.ErrorTypePasswordRequired:     http.StatusUnauthorized,
		pdferrors.ErrorTypeInvalidPassword:      http.StatusUnauthorized,
		pdferrors.ErrorTypeNotFound:             http.StatusNotFound,
		pdferrors.ErrorTypeFileTooLarge:         http.StatusRequestEntityTooLarge,
		pdferrors.ErrorTypeFetchFailed:          http.StatusBadGateway,
		pdferrors.ErrorTypeLimitExceeded:        http.StatusServiceUnavailable,
		pdferrors.ErrorTypeConversionFailed:     http.StatusInternalServerError,
		pdferrors.ErrorTypeUnknown:              http.StatusInternalServerError,
		pdferrors.ErrorTypeUnsupportedOperation: http.StatusBadRequest,
	}
	for errType, want := range tests {
		assert.Equal(t, want, statusFor(errType), errType.String())
	}
}
