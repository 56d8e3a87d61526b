// Package source turns heterogeneous read sources (local files, web pages,
// e-books) into position-addressable word streams with section boundaries.
package source

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Kind identifies how a source locator should be fetched and decoded.
type Kind int

const (
	LocalFile Kind = iota
	WebPage
	EBook
)

// String returns the stable name used in the registry and on the CLI.
func (k Kind) String() string {
	switch k {
	case LocalFile:
		return "file"
	case WebPage:
		return "web"
	case EBook:
		return "ebook"
	}
	return "unknown"
}

// ParseKind converts a stored kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "file":
		return LocalFile, nil
	case "web":
		return WebPage, nil
	case "ebook":
		return EBook, nil
	}
	return 0, fmt.Errorf("unknown source kind %q", s)
}

// InferKind guesses the kind from a locator: URL schemes map to WebPage,
// .epub files to EBook, everything else to LocalFile.
func InferKind(locator string) Kind {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return WebPage
	}
	if strings.EqualFold(filepath.Ext(locator), ".epub") {
		return EBook
	}
	return LocalFile
}

// Descriptor identifies one read: where its content comes from and how far
// the user has gotten through it.
type Descriptor struct {
	Name         string
	Kind         Kind
	Locator      string
	CreatedAt    time.Time
	LastAccessed time.Time
	Completion   float64
}
