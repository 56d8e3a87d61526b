package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// webFetcher fetches a URL and extracts readable text from its HTML.
type webFetcher struct {
	client *http.Client
}

func init() {
	RegisterFetcher(&webFetcher{client: &http.Client{Timeout: 30 * time.Second}})
}

func (*webFetcher) Kind() Kind { return WebPage }

func (f *webFetcher) Fetch(ctx context.Context, locator string, progress ProgressFunc) (Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Content{}, fmt.Errorf("%w: %s returned %s", ErrSourceUnavailable, locator, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !textLike(ct) {
		return Content{}, fmt.Errorf("%w: unsupported content type %q", ErrDecodeFailed, ct)
	}

	body := io.Reader(resp.Body)
	if progress != nil && resp.ContentLength > 0 {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, progress: progress}
	}

	doc, err := html.Parse(body)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return extractContent(doc), nil
}

func textLike(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.Contains(ct, "html") ||
		strings.Contains(ct, "xml")
}

// progressReader reports bytes consumed against a known total, leaving
// headroom so the parser owns the final 1.0.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.total > 0 {
		p.progress(0.9 * float64(p.read) / float64(p.total))
	}
	return n, err
}
