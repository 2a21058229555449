// Package documents defines the document store the recovery engine and
// document tools write through.
package documents

import (
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned when a path resolves to no stored document.
var ErrNotFound = errors.New("document not found")

// Store is the narrow contract the orchestrator consumes. Implementations
// must apply NormalizePath semantics to every path argument.
type Store interface {
	Read(path string) (string, error)
	Modify(path, content string) error
	Append(path, content string) error
	// ActiveDocument returns the path of the document currently in focus,
	// if any.
	ActiveDocument() (string, bool)
}

// NormalizePath canonicalizes a document path: leading slashes are
// stripped, a missing extension infers ".md", and extension case is
// folded to lower.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return p
	}

	ext := path.Ext(p)
	if ext == "" {
		return p + ".md"
	}
	return strings.TrimSuffix(p, ext) + strings.ToLower(ext)
}
