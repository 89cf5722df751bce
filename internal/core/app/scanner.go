package app

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"exportlint/internal/core/config"
	"exportlint/internal/engine/parser"

	"github.com/gobwas/glob"
)

// Scanner walks the project root and collects the source files a run
// analyzes. Includes are matched against the slash-separated path relative
// to the root; dir and file excludes match the base name, mirroring how
// ignore lists behave in most lint tools.
type Scanner struct {
	root         string
	loader       *parser.GrammarLoader
	includeGlobs []glob.Glob
	dirGlobs     []glob.Glob
	fileGlobs    []glob.Glob
}

func NewScanner(cfg *config.Config) (*Scanner, error) {
	s := &Scanner{
		root:   cfg.Paths.ProjectRoot,
		loader: parser.NewGrammarLoader(includesJavaScript(cfg)),
	}

	for _, p := range cfg.Paths.Include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		s.includeGlobs = append(s.includeGlobs, g)
	}
	for _, p := range cfg.Exclude.Dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		s.dirGlobs = append(s.dirGlobs, g)
	}
	for _, p := range cfg.Exclude.Files {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		s.fileGlobs = append(s.fileGlobs, g)
	}

	return s, nil
}

func (s *Scanner) Scan() ([]string, error) {
	var files []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path == s.root {
				return nil
			}
			for _, g := range s.dirGlobs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !s.loader.IsSupportedPath(path) {
			return nil
		}
		for _, g := range s.fileGlobs {
			if g.Match(base) {
				return nil
			}
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			rel = path
		}
		if !s.matchesInclude(filepath.ToSlash(rel)) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) matchesInclude(rel string) bool {
	if len(s.includeGlobs) == 0 {
		return true
	}
	for _, g := range s.includeGlobs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// includesJavaScript reports whether the include patterns reach plain
// JavaScript sources, which decides if the JS grammar is loaded at all.
func includesJavaScript(cfg *config.Config) bool {
	for _, p := range cfg.Paths.Include {
		switch filepath.Ext(p) {
		case ".js", ".jsx", ".mjs", ".cjs":
			return true
		}
	}
	return false
}
