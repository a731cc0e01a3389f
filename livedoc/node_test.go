package livedoc

import (
	"strings"
	"testing"
)

func TestNodeIsEmpty(t *testing.T) {
	var nilNode *Node
	if !nilNode.IsEmpty() {
		t.Error("nil node should be empty")
	}
	if !(&Node{Type: "doc"}).IsEmpty() {
		t.Error("node without content or text should be empty")
	}
	if (&Node{Type: "text", Text: "hi"}).IsEmpty() {
		t.Error("text node should not be empty")
	}
	withChild := &Node{Type: "doc", Content: []Node{{Type: "paragraph"}}}
	if withChild.IsEmpty() {
		t.Error("node with children should not be empty")
	}
}

func TestNodeValidate(t *testing.T) {
	valid := &Node{Type: "doc", Content: []Node{
		{Type: "paragraph", Content: []Node{
			{Type: "text", Text: "hello", Marks: []Mark{{Type: "bold"}}},
		}},
	}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid tree rejected: %v", err)
	}

	if err := (&Node{}).Validate(); err == nil {
		t.Error("node without type should be rejected")
	}

	var nilNode *Node
	if err := nilNode.Validate(); err == nil {
		t.Error("nil node should be rejected")
	}

	textless := &Node{Type: "doc", Content: []Node{
		{Type: "paragraph", Content: []Node{{Type: "text"}}},
	}}
	err := textless.Validate()
	if err == nil {
		t.Fatal("text node without text should be rejected")
	}
	if !strings.Contains(err.Error(), "paragraph[0]") {
		t.Errorf("error should locate the bad node, got: %v", err)
	}
}
