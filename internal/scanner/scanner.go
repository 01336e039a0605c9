// Package scanner discovers candidate source files under a project root,
// applying the configured extension and ignore-glob filters.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/internal/logging"
	"github.com/archlens/archlens/pkg/types"
)

// skipDirs lists directory names never worth walking into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
}

// langByExtension maps file extensions to language tags.
var langByExtension = map[string]types.Language{
	".ts":   types.LangTypeScript,
	".tsx":  types.LangTypeScript,
	".mts":  types.LangTypeScript,
	".cts":  types.LangTypeScript,
	".js":   types.LangJavaScript,
	".jsx":  types.LangJavaScript,
	".mjs":  types.LangJavaScript,
	".cjs":  types.LangJavaScript,
	".py":   types.LangPython,
	".pyw":  types.LangPython,
	".pyi":  types.LangPython,
	".go":   types.LangGo,
	".java": types.LangJava,
}

// Scanner discovers source files in a directory tree.
type Scanner struct {
	cfg *config.ProjectConfig
}

// New creates a Scanner for the given configuration.
func New(cfg *config.ProjectConfig) *Scanner {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Scanner{cfg: cfg}
}

// Scan walks rootDir recursively and returns the source files to parse,
// sorted by root-relative path. A file is included iff its extension
// (case-folded) is configured and no ignore glob matches its relative
// path. Symlinks are not followed; unreadable directories are skipped
// with a debug log.
func (s *Scanner) Scan(rootDir string) ([]types.SourceFile, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	// Honor a root .gitignore when present.
	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
		}
	}

	extensions := s.cfg.ExtensionSet()
	var files []types.SourceFile

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Logger().WithField("path", path).Debugf("skipping unreadable entry: %v", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// Never follow symlinks.
		if d.Type()&fs.ModeSymlink != 0 {
			logging.Logger().WithField("path", path).Debug("skipping symlink")
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path == rootDir {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !extensions[ext] {
			return nil
		}

		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			logging.Logger().WithField("path", path).Debugf("skipping: cannot compute relative path: %v", err)
			return nil
		}
		relSlash := filepath.ToSlash(rel)

		if s.ignored(relSlash) {
			logging.Logger().WithField("path", relSlash).Debug("ignored by pattern")
			return nil
		}
		if gitIgnore != nil && gitIgnore.MatchesPath(relSlash) {
			logging.Logger().WithField("path", relSlash).Debug("ignored by .gitignore")
			return nil
		}

		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}

		files = append(files, types.SourceFile{
			Path:     path,
			RelPath:  relSlash,
			Size:     size,
			Language: langByExtension[ext],
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// ignored reports whether any configured ignore glob matches relSlash.
// Glob semantics: * matches within one path segment, ** crosses segments.
// A pattern is anchored at the start unless it begins with **, and at the
// end unless it ends with * or **, so `src/*` also matches files in
// subdirectories of src.
func (s *Scanner) ignored(relSlash string) bool {
	for _, pattern := range s.cfg.Ignore {
		if pattern == "" {
			continue
		}
		ok, err := doublestar.Match(pattern, relSlash)
		if err != nil {
			logging.Logger().Warnf("invalid ignore pattern %q: %v", pattern, err)
			continue
		}
		if !ok && strings.HasSuffix(pattern, "*") && !strings.HasSuffix(pattern, "**") {
			ok, _ = doublestar.Match(pattern+"/**", relSlash)
		}
		if ok {
			return true
		}
	}
	return false
}

// LanguageForExtension returns the language tag for a file extension,
// or an empty Language when the extension is not recognized.
func LanguageForExtension(ext string) types.Language {
	return langByExtension[strings.ToLower(ext)]
}
