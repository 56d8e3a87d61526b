package source

import "context"

// Content is the decoded output of a fetch: the token stream, the positions
// where new sections (paragraphs/chapters) begin, and optional section titles.
type Content struct {
	Tokens     []string
	Boundaries []int
	Sections   []Section
}

// Section names a region of the token stream starting at Start.
type Section struct {
	Title string
	Start int
}

// ProgressFunc reports fetch/decode progress in [0,1].
type ProgressFunc func(ratio float64)

// Fetcher fetches and decodes one source kind into Content.
type Fetcher interface {
	Kind() Kind
	Fetch(ctx context.Context, locator string, progress ProgressFunc) (Content, error)
}

var fetchers = make(map[Kind]Fetcher)

// RegisterFetcher adds a fetcher for its kind. Later registrations win,
// which lets tests substitute a fetcher.
func RegisterFetcher(f Fetcher) {
	fetchers[f.Kind()] = f
}

func fetcherFor(k Kind) (Fetcher, bool) {
	f, ok := fetchers[k]
	return f, ok
}
