package treestore

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"sanctum/internal/domain/models/library"
)

// Classification is what an uploaded file becomes in the tree
type Classification struct {
	Kind library.Kind
	Name string

	// Content is set for Markdown, ExternalRef for Google links
	Content     string
	ExternalRef string

	// NeedsUpload means the bytes go through the Uploader, whose URL
	// becomes ExternalRef
	NeedsUpload bool
}

var googleExtensions = map[string]library.Kind{
	".gdoc":    library.KindGoogleDoc,
	".gsheet":  library.KindGoogleSheet,
	".gslides": library.KindGoogleSlide,
}

var googlePaths = map[string]library.Kind{
	"document":     library.KindGoogleDoc,
	"spreadsheets": library.KindGoogleSheet,
	"presentation": library.KindGoogleSlide,
}

// Classify decides a file's kind from its extension and, for text files, a
// sniffed {"url": ...} envelope pointing at a Google document.
func Classify(filename string, data []byte) Classification {
	ext := strings.ToLower(path.Ext(filename))
	if ext == ".pdf" {
		return Classification{Kind: library.KindPDF, Name: filename, NeedsUpload: true}
	}

	if kind, ref, ok := googleLink(ext, data); ok {
		name := cleanGoogleName(filename)
		if name == "" {
			name = filename
		}
		return Classification{Kind: kind, Name: name, ExternalRef: ref}
	}

	return Classification{Kind: library.KindMarkdown, Name: filename, Content: string(data)}
}

func googleLink(ext string, data []byte) (library.Kind, string, bool) {
	var envelope struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.URL == "" {
		return "", "", false
	}

	u, err := url.Parse(envelope.URL)
	if err != nil {
		return "", "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "docs.google.com" && host != "drive.google.com" {
		return "", "", false
	}

	if kind, ok := googleExtensions[ext]; ok {
		return kind, envelope.URL, true
	}
	if host != "docs.google.com" {
		return "", "", false
	}
	first := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	if kind, ok := googlePaths[first]; ok {
		return kind, envelope.URL, true
	}
	return "", "", false
}

// cleanGoogleName strips one Google sentinel extension, then a trailing .json
func cleanGoogleName(name string) string {
	lower := strings.ToLower(name)
	for ext := range googleExtensions {
		if strings.HasSuffix(lower, ext) {
			name = name[:len(name)-len(ext)]
			lower = lower[:len(lower)-len(ext)]
			break
		}
	}
	if strings.HasSuffix(lower, ".json") {
		name = name[:len(name)-len(".json")]
	}
	return name
}
