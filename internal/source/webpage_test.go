package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testWebFetcher() *webFetcher {
	return &webFetcher{client: &http.Client{}}
}

func TestWebFetch(t *testing.T) {
	page := `<html><body><h1>News</h1><p>alpha beta gamma.</p><p>delta epsilon.</p></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	var progressed bool
	c, err := testWebFetcher().Fetch(context.Background(), srv.URL, func(float64) { progressed = true })
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := []string{"News", "alpha", "beta", "gamma.", "delta", "epsilon."}
	if len(c.Tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", c.Tokens, want)
	}
	if len(c.Boundaries) != 2 || c.Boundaries[0] != 1 || c.Boundaries[1] != 4 {
		t.Errorf("boundaries = %v, want [1 4]", c.Boundaries)
	}
	if len(c.Sections) != 1 || c.Sections[0].Title != "News" {
		t.Errorf("sections = %+v, want the h1", c.Sections)
	}
	if !progressed {
		t.Error("no progress reported for a response with Content-Length")
	}
}

func TestWebFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := testWebFetcher().Fetch(context.Background(), srv.URL+"/gone", nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Fetch 404 = %v, want ErrSourceUnavailable", err)
	}
}

func TestWebFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testWebFetcher().Fetch(context.Background(), url, nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Fetch on closed server = %v, want ErrSourceUnavailable", err)
	}
}

func TestWebFetchUnsupportedContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer srv.Close()

	_, err := testWebFetcher().Fetch(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("Fetch image = %v, want ErrDecodeFailed", err)
	}
}
