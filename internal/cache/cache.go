// Package cache persists the previously emitted diagram so re-runs can
// skip rewriting outputs that did not change. Comparison happens after
// XML normalization: volatile timestamp-like attributes are stripped,
// inter-tag whitespace collapsed, and line endings normalized.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// cacheFileName holds the last emitted diagram next to the outputs.
const cacheFileName = ".archlens-cache.xml"

// volatileAttrs strips attributes that change on every emission.
var volatileAttrs = regexp.MustCompile(`\s+(modified|timestamp|etag)="[^"]*"`)

// interTagSpace collapses whitespace runs between tags.
var interTagSpace = regexp.MustCompile(`>\s+<`)

// Cache reads and writes the diagram cache in one output directory.
type Cache struct {
	dir string
}

// New creates a Cache rooted at the output directory.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, cacheFileName)
}

// Load returns the previously stored diagram, or "" when none exists.
func (c *Cache) Load() string {
	data, err := os.ReadFile(c.path())
	if err != nil {
		return ""
	}
	return string(data)
}

// Store writes the emitted diagram for the next run's comparison.
func (c *Cache) Store(diagram string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(c.path(), []byte(diagram), 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Changed reports whether two diagram documents differ after
// normalization.
func Changed(prev, cur string) bool {
	return Normalize(prev) != Normalize(cur)
}

// Normalize strips volatile attributes, collapses inter-tag whitespace,
// and normalizes line endings.
func Normalize(doc string) string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = volatileAttrs.ReplaceAllString(doc, "")
	doc = interTagSpace.ReplaceAllString(doc, "><")
	return strings.TrimSpace(doc)
}
