package cli

import (
	"fmt"
	"strings"

	"sanctum/internal/domain"
	"sanctum/internal/domain/models/library"
)

// resolve turns a node reference into an id. A reference is either a node id
// or a slash-separated path of names below the root; "" and "/" are the root.
func resolve(fs library.FileSystem, ref string) (string, error) {
	trimmed := strings.Trim(ref, "/")
	if trimmed == "" || trimmed == library.RootID {
		return library.RootID, nil
	}
	if _, ok := fs[trimmed]; ok {
		return trimmed, nil
	}

	cur := library.RootID
	for _, name := range strings.Split(trimmed, "/") {
		child := fs.ChildByName(cur, name)
		if child == nil {
			return "", fmt.Errorf("%q: %w", ref, domain.ErrNotFound)
		}
		cur = child.ID
	}
	return cur, nil
}

// splitRef separates the last path element from its folder, e.g.
// "Research/Notes/todo.md" gives ("Research/Notes", "todo.md").
func splitRef(ref string) (folder, name string) {
	trimmed := strings.Trim(ref, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "", trimmed
	}
	return trimmed[:i], trimmed[i+1:]
}
