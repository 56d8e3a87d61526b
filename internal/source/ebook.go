package source

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// epubFetcher decodes EPUB e-books: one section per spine document, with
// titles resolved from the NCX navigation map when present.
type epubFetcher struct{}

func init() {
	RegisterFetcher(epubFetcher{})
}

func (epubFetcher) Kind() Kind { return EBook }

func (epubFetcher) Fetch(ctx context.Context, locator string, progress ProgressFunc) (Content, error) {
	rc, err := epub.OpenReader(locator)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Content{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		return Content{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return Content{}, fmt.Errorf("%w: no rootfiles found in epub", ErrDecodeFailed)
	}
	book := rc.Rootfiles[0]
	titles := ncxTitlesByHref(locator, book)

	var c Content
	total := len(book.Spine.Itemrefs)
	for i, ref := range book.Spine.Itemrefs {
		if ctx.Err() != nil {
			return Content{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
		}
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		doc, err := html.Parse(r)
		r.Close()
		if err != nil {
			continue
		}

		chapter := extractContent(doc)
		if len(chapter.Tokens) == 0 {
			continue
		}

		start := len(c.Tokens)
		if start > 0 {
			c.Boundaries = append(c.Boundaries, start)
		}
		for _, b := range chapter.Boundaries {
			c.Boundaries = append(c.Boundaries, start+b)
		}
		c.Tokens = append(c.Tokens, chapter.Tokens...)

		title := fmt.Sprintf("Section %d", i+1)
		if t := lookupTitle(titles, ref.Item.HREF); t != "" {
			title = t
		}
		c.Sections = append(c.Sections, Section{Title: title, Start: start})

		if progress != nil && total > 0 {
			progress(0.95 * float64(i+1) / float64(total))
		}
	}
	return c, nil
}

// NCX XML structures for parsing toc.ncx.
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	Label    navLabel   `xml:"navLabel"`
	Content  navContent `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// ncxTitlesByHref maps spine document hrefs (with and without fragments or
// directories) to their navigation titles. Missing or malformed NCX just
// yields an empty map; titles are optional.
func ncxTitlesByHref(filename string, book *epub.Rootfile) map[string]string {
	result := make(map[string]string)

	data, err := readNCX(filename, book)
	if err != nil {
		return result
	}
	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return result
	}

	var collect func(points []navPoint)
	collect = func(points []navPoint) {
		for _, np := range points {
			title := strings.TrimSpace(np.Label.Text)
			for _, key := range hrefKeys(np.Content.Src) {
				if _, exists := result[key]; !exists {
					result[key] = title
				}
			}
			collect(np.Children)
		}
	}
	collect(toc.NavMap.NavPoints)
	return result
}

func hrefKeys(href string) []string {
	base := href
	if idx := strings.Index(base, "#"); idx != -1 {
		base = base[:idx]
	}
	keys := []string{href, base, path.Base(base)}
	return keys
}

func lookupTitle(titles map[string]string, href string) string {
	if t, ok := titles[href]; ok {
		return t
	}
	return titles[path.Base(href)]
}

// readNCX locates the NCX document inside the archive, first via the
// manifest media type, then by extension.
func readNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX file found in epub")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("NCX file %s not found in archive", ncxPath)
}

// EPUBCover returns the raw bytes of the book's cover image: the manifest
// image whose id or href mentions "cover", else the first image item.
func EPUBCover(locator string) ([]byte, error) {
	rc, err := epub.OpenReader(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("%w: no rootfiles found in epub", ErrDecodeFailed)
	}
	book := rc.Rootfiles[0]

	var fallback *epub.Item
	for i := range book.Manifest.Items {
		item := &book.Manifest.Items[i]
		if !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}
		lower := strings.ToLower(item.ID + " " + item.HREF)
		if strings.Contains(lower, "cover") {
			return readItem(item)
		}
		if fallback == nil {
			fallback = item
		}
	}
	if fallback != nil {
		return readItem(fallback)
	}
	return nil, fmt.Errorf("%w: epub has no images", ErrDecodeFailed)
}

func readItem(item *epub.Item) ([]byte, error) {
	r, err := item.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
