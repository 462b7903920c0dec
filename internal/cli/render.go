package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sanctum/internal/domain/models/library"
)

type treeStyles struct {
	Folder   lipgloss.Style
	Document lipgloss.Style
	Link     lipgloss.Style
	Muted    lipgloss.Style
}

func defaultTreeStyles() treeStyles {
	return treeStyles{
		Folder: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89b4fa")),
		Document: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cdd6f4")),
		Link: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a6e3a1")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")),
	}
}

var kindIcons = map[library.Kind]string{
	library.KindFolder:      "📁",
	library.KindMarkdown:    "📝",
	library.KindPDF:         "📕",
	library.KindGoogleDoc:   "📄",
	library.KindGoogleSheet: "📊",
	library.KindGoogleSlide: "📽",
}

// renderTree draws the subtree under id with box-drawing connectors, children
// in folder order
func renderTree(fs library.FileSystem, id string, showIDs bool, st treeStyles) string {
	n, ok := fs[id]
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderLabel(n, showIDs, st))
	b.WriteByte('\n')
	renderChildren(&b, fs, n, "", showIDs, st, map[string]bool{id: true})
	return b.String()
}

func renderChildren(b *strings.Builder, fs library.FileSystem, folder *library.Node, prefix string, showIDs bool, st treeStyles, seen map[string]bool) {
	kids := make([]*library.Node, 0, len(folder.Children))
	for _, cid := range folder.Children {
		if c, ok := fs[cid]; ok && !seen[cid] {
			kids = append(kids, c)
		}
	}

	for i, c := range kids {
		last := i == len(kids)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}

		b.WriteString(st.Muted.Render(prefix + connector))
		b.WriteString(renderLabel(c, showIDs, st))
		b.WriteByte('\n')

		if c.IsFolder() {
			seen[c.ID] = true
			renderChildren(b, fs, c, prefix+indent, showIDs, st, seen)
		}
	}
}

func renderLabel(n *library.Node, showIDs bool, st treeStyles) string {
	name := n.Name
	if n.IsRoot() {
		name = "/"
	}

	var label string
	switch {
	case n.IsFolder():
		label = st.Folder.Render(name)
	case n.Kind.HasExternalRef():
		label = st.Link.Render(name)
	default:
		label = st.Document.Render(name)
	}

	if icon, ok := kindIcons[n.Kind]; ok {
		label = icon + " " + label
	}
	if showIDs {
		label += " " + st.Muted.Render("("+n.ID+")")
	}
	return label
}
