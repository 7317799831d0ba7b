// Package fetch downloads PDFs from URLs.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/sirupsen/logrus"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// DefaultName is used when a URL path has no usable last segment
const DefaultName = "document.pdf"

// Options configures a Fetcher
type Options struct {
	Timeout     time.Duration
	MaxFileSize int64
	CacheSize   int
	Client      *http.Client
}

// Result is a downloaded document
type Result struct {
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
	Data        []byte    `json:"-"`
}

// Fetcher downloads PDFs and remembers recent downloads by URL
type Fetcher struct {
	client  *http.Client
	maxSize int64
	cache   *Cache[*Result]
	logger  *logrus.Logger
}

// New creates a new Fetcher
func New(opts Options, logger *logrus.Logger) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:  client,
		maxSize: opts.MaxFileSize,
		cache:   NewCache[*Result](opts.CacheSize),
		logger:  logger,
	}
}

// Fetch downloads rawURL. Repeated fetches of the same URL are served from
// the cache.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument, "invalid URL %q", rawURL)
	}

	if cached, ok := f.cache.Get(rawURL); ok {
		f.logger.WithField("url", rawURL).Debug("fetch served from cache")
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidArgument, "invalid URL", err)
	}
	req.Header.Set("Accept", "application/pdf, */*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeFetchFailed, "download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeFetchFailed, "download failed: %s", resp.Status)
	}
	if f.maxSize > 0 && resp.ContentLength > f.maxSize {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeFileTooLarge,
			"file too large: %d bytes (max: %d bytes)", resp.ContentLength, f.maxSize)
	}

	body := io.Reader(resp.Body)
	if f.maxSize > 0 {
		body = io.LimitReader(resp.Body, f.maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeFetchFailed, "download interrupted", err)
	}
	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeFileTooLarge, "file too large (max: %d bytes)", f.maxSize)
	}
	if !bytes.Contains(head(data, 1024), []byte("%PDF-")) {
		return nil, pdferrors.New(pdferrors.ErrorTypeFetchFailed, "response is not a PDF")
	}

	result := &Result{
		URL:         rawURL,
		Name:        NameFromURL(u),
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   time.Now(),
		Data:        data,
	}
	f.cache.Put(rawURL, result)

	f.logger.WithFields(logrus.Fields{
		"url":      rawURL,
		"size":     len(data),
		"duration": time.Since(start).String(),
	}).Info("document fetched")

	return result, nil
}

// Stats returns statistics of the fetch cache
func (f *Fetcher) Stats() CacheStats {
	return f.cache.Stats()
}

// NameFromURL returns the last path segment of u as a file name
func NameFromURL(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return DefaultName
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

func head(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}

