package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	librarySvc "sanctum/internal/domain/services/library"
)

// Document is a converted file ready to become a MARKDOWN node
type Document struct {
	Name    string
	Content string
}

// Registry routes files to converters by extension. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]librarySvc.ContentConverter
}

// NewRegistry creates a registry with the markdown, text, and HTML converters.
func NewRegistry() *Registry {
	r := &Registry{converters: make(map[string]librarySvc.ContentConverter)}
	r.Register(NewMarkdownConverter())
	r.Register(NewTextConverter())
	r.Register(NewHTMLConverter())
	return r
}

// Register associates a converter with each of its extensions (case-insensitive).
func (r *Registry) Register(c librarySvc.ContentConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range c.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = c
	}
}

// Lookup returns the converter for ext, or nil
func (r *Registry) Lookup(ext string) librarySvc.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[strings.ToLower(ext)]
}

// Supports reports whether filename has a registered extension
func (r *Registry) Supports(filename string) bool {
	return r.Lookup(filepath.Ext(filename)) != nil
}

// ConvertFile converts content and names the result after the file with a .md extension.
func (r *Registry) ConvertFile(ctx context.Context, filename string, content []byte) (*Document, error) {
	ext := filepath.Ext(filename)
	c := r.Lookup(ext)
	if c == nil {
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}

	markdown, err := c.Convert(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s converter: %w", c.Name(), err)
	}

	base := strings.TrimSuffix(filepath.Base(filename), ext)
	return &Document{Name: base + ".md", Content: markdown}, nil
}

// SupportedExtensions returns the registered extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
