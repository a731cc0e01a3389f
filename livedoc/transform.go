package livedoc

// NativeTransformer converts between the backend's structured content
// representation and the live document's state. In this server the two
// encodings coincide, so hydration reduces to the apply-once seed and
// extraction to reading the current tree. A real synchronization engine
// substitutes its own transformer here.
type NativeTransformer struct{}

// Hydrate merges persisted content into a freshly-opened document. A
// document that was already hydrated keeps its live state.
func (NativeTransformer) Hydrate(doc *Document, content *Node) error {
	doc.ApplyInitial(content)
	return nil
}

// Extract reads the current content tree out of the live document.
func (NativeTransformer) Extract(doc *Document) *Node {
	return doc.Content()
}
