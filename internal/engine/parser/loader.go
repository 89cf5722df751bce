package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// GrammarLoader owns the tree-sitter language bindings for the ECMAScript
// family. Only grammars that can produce export statements are loaded.
type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

func NewGrammarLoader(includeJS bool) *GrammarLoader {
	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language),
		extensions: make(map[string]string),
	}

	gl.languages["typescript"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	gl.languages["tsx"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	gl.extensions[".ts"] = "typescript"
	gl.extensions[".mts"] = "typescript"
	gl.extensions[".cts"] = "typescript"
	gl.extensions[".tsx"] = "tsx"

	if includeJS {
		gl.languages["javascript"] = sitter.NewLanguage(tree_sitter_javascript.Language())
		gl.extensions[".js"] = "javascript"
		gl.extensions[".jsx"] = "javascript"
		gl.extensions[".mjs"] = "javascript"
		gl.extensions[".cjs"] = "javascript"
	}

	return gl
}

// LanguageFor returns the grammar for a path, or nil when unsupported.
func (gl *GrammarLoader) LanguageFor(path string) *sitter.Language {
	lang := gl.DetectLanguage(path)
	if lang == "" {
		return nil
	}
	return gl.languages[lang]
}

func (gl *GrammarLoader) DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return gl.extensions[ext]
}

func (gl *GrammarLoader) IsSupportedPath(path string) bool {
	return gl.DetectLanguage(path) != ""
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(gl.extensions))
	for ext := range gl.extensions {
		exts = append(exts, ext)
	}
	return exts
}
