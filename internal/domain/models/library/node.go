package library

import (
	"encoding/json"
	"time"
)

// RootID is the identifier of the single distinguished root folder.
const RootID = "root"

// Kind is the closed set of node types.
type Kind string

const (
	KindFolder      Kind = "FOLDER"
	KindMarkdown    Kind = "MARKDOWN"
	KindPDF         Kind = "PDF"
	KindGoogleDoc   Kind = "GOOGLE_DOC"
	KindGoogleSheet Kind = "GOOGLE_SHEET"
	KindGoogleSlide Kind = "GOOGLE_SLIDE"
)

// Kinds lists every valid kind, in display order.
var Kinds = []Kind{KindFolder, KindMarkdown, KindPDF, KindGoogleDoc, KindGoogleSheet, KindGoogleSlide}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsGoogle reports whether k is one of the Google-linked kinds.
func (k Kind) IsGoogle() bool {
	return k == KindGoogleDoc || k == KindGoogleSheet || k == KindGoogleSlide
}

// HasContent reports whether nodes of this kind carry inline text.
func (k Kind) HasContent() bool {
	return k == KindMarkdown
}

// HasExternalRef reports whether nodes of this kind carry a URL.
func (k Kind) HasExternalRef() bool {
	return k == KindPDF || k.IsGoogle()
}

// Node is a single entry in the document tree.
//
// Children is only meaningful for folders and is derived on load by grouping
// on ParentID; it is never persisted. Expanded is UI state only.
type Node struct {
	ID          string
	ParentID    *string
	Name        string
	Kind        Kind
	Content     *string
	ExternalRef *string
	Children    []string
	Expanded    bool
	ModifiedAt  time.Time
	Version     int64
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// IsRoot reports whether the node is the tree root.
func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}

// Clone returns a copy of the node that shares no mutable state with n.
func (n *Node) Clone() *Node {
	c := *n
	if n.ParentID != nil {
		p := *n.ParentID
		c.ParentID = &p
	}
	if n.Content != nil {
		s := *n.Content
		c.Content = &s
	}
	if n.ExternalRef != nil {
		s := *n.ExternalRef
		c.ExternalRef = &s
	}
	if n.Children != nil {
		c.Children = make([]string, len(n.Children))
		copy(c.Children, n.Children)
	}
	return &c
}

// wireNode is the JSON shape shared with the browser client.
type wireNode struct {
	ID           string   `json:"id"`
	ParentID     *string  `json:"parentId"`
	Name         string   `json:"name"`
	Type         Kind     `json:"type"`
	Content      *string  `json:"content,omitempty"`
	URL          *string  `json:"url,omitempty"`
	Children     []string `json:"children,omitempty"`
	IsOpen       bool     `json:"isOpen,omitempty"`
	LastModified int64    `json:"lastModified"`
	Version      int64    `json:"version"`
}

// MarshalJSON encodes the node in the client's wire format (lastModified in unix millis).
func (n Node) MarshalJSON() ([]byte, error) {
	w := wireNode{
		ID:       n.ID,
		ParentID: n.ParentID,
		Name:     n.Name,
		Type:     n.Kind,
		Content:  n.Content,
		URL:      n.ExternalRef,
		Children: n.Children,
		IsOpen:   n.Expanded,
		Version:  n.Version,
	}
	if !n.ModifiedAt.IsZero() {
		w.LastModified = n.ModifiedAt.UnixMilli()
	}
	if n.Kind == KindFolder && w.Children == nil {
		w.Children = []string{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the client's wire format.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Node{
		ID:          w.ID,
		ParentID:    w.ParentID,
		Name:        w.Name,
		Kind:        w.Type,
		Content:     w.Content,
		ExternalRef: w.URL,
		Children:    w.Children,
		Expanded:    w.IsOpen,
		Version:     w.Version,
	}
	if w.LastModified > 0 {
		n.ModifiedAt = time.UnixMilli(w.LastModified)
	}
	return nil
}

// FileSystem is the flat id -> node mapping that forms the tree.
type FileSystem map[string]*Node

// Root returns the root node, or nil if the mapping has none.
func (fs FileSystem) Root() *Node {
	return fs[RootID]
}

// Clone returns a shallow copy of the mapping. Node values are shared; callers
// that change a node must replace it with a copy.
func (fs FileSystem) Clone() FileSystem {
	out := make(FileSystem, len(fs))
	for id, n := range fs {
		out[id] = n
	}
	return out
}

// NodePatch is a partial update. Nil fields are left unchanged.
type NodePatch struct {
	Name        *string `json:"name,omitempty"`
	Content     *string `json:"content,omitempty"`
	ParentID    *string `json:"parentId,omitempty"`
	Kind        *Kind   `json:"type,omitempty"`
	ExternalRef *string `json:"url,omitempty"`
	Version     int64   `json:"version,omitempty"`
}

// IsEmpty reports whether the patch changes no field.
func (p *NodePatch) IsEmpty() bool {
	return p.Name == nil && p.Content == nil && p.ParentID == nil && p.Kind == nil && p.ExternalRef == nil
}
