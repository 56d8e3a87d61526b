package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fileFetcher decodes plain text and Markdown files from disk. Blank lines
// separate paragraphs; Markdown headers additionally name sections.
type fileFetcher struct{}

func init() {
	RegisterFetcher(fileFetcher{})
}

func (fileFetcher) Kind() Kind { return LocalFile }

// headerRegex matches markdown headers (# to ######).
var headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func (fileFetcher) Fetch(_ context.Context, locator string, progress ProgressFunc) (Content, error) {
	data, err := os.ReadFile(locator)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if progress != nil {
		progress(0.5)
	}
	if !utf8.Valid(data) {
		return Content{}, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrDecodeFailed, locator)
	}

	markdown := false
	switch strings.ToLower(filepath.Ext(locator)) {
	case ".md", ".markdown":
		markdown = true
	}
	return splitText(string(data), markdown), nil
}

// splitText tokenizes line-oriented text. A run of blank lines starts a new
// paragraph (a boundary); in markdown mode a header line also opens a named
// section, with its words kept in the stream.
func splitText(text string, markdown bool) Content {
	var c Content
	pendingBreak := false

	appendWords := func(words []string) {
		if len(words) == 0 {
			return
		}
		if pendingBreak && len(c.Tokens) > 0 {
			c.Boundaries = append(c.Boundaries, len(c.Tokens))
		}
		pendingBreak = false
		c.Tokens = append(c.Tokens, words...)
	}

	for _, line := range strings.Split(text, "\n") {
		if markdown {
			if match := headerRegex.FindStringSubmatch(line); match != nil {
				title := strings.TrimSpace(match[2])
				pendingBreak = true
				start := len(c.Tokens)
				appendWords(strings.Fields(title))
				c.Sections = append(c.Sections, Section{Title: title, Start: start})
				continue
			}
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			pendingBreak = true
			continue
		}
		appendWords(words)
	}
	return c
}
