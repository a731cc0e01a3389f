package livedoc

import "fmt"

// Node is one node in the structured document tree the backend persists
// (the editor's ProseMirror-style JSON). The coordinator never interprets
// node semantics; it only validates shape at the storage boundary and
// carries the tree between the live document and the persistence tier.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Mark is a formatting mark attached to a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// IsEmpty reports whether the node carries no content worth persisting.
// A freshly-opened document that was never hydrated produces an empty
// tree; saving it would overwrite good data with nothing.
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	return len(n.Content) == 0 && n.Text == ""
}

// Validate checks the structural invariants of a content tree.
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("nil node")
	}
	if n.Type == "" {
		return fmt.Errorf("node missing type")
	}
	if n.Type == "text" && n.Text == "" {
		return fmt.Errorf("text node missing text")
	}
	for i := range n.Content {
		if err := n.Content[i].Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", n.Type, i, err)
		}
	}
	return nil
}
