package livedoc

// Thread is a comment thread payload. Beyond its identifier the shape is
// owned by the front end, so it stays an open map.
type Thread map[string]any

// Identifier returns the thread's stable id. The backend sends either
// "threadId" or "id" depending on which service produced the record;
// check both before giving up.
func (t Thread) Identifier() (string, bool) {
	for _, key := range []string{"threadId", "id"} {
		if v, ok := t[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// ThreadSet is an insertion-ordered mapping from thread id to payload,
// mirroring the shared thread collection inside the live document.
type ThreadSet struct {
	order []string
	items map[string]Thread
}

func NewThreadSet() *ThreadSet {
	return &ThreadSet{items: make(map[string]Thread)}
}

// Set stores a thread under id, preserving the original insertion
// position when the id is already present.
func (ts *ThreadSet) Set(id string, t Thread) {
	if _, exists := ts.items[id]; !exists {
		ts.order = append(ts.order, id)
	}
	ts.items[id] = t
}

func (ts *ThreadSet) Get(id string) (Thread, bool) {
	t, ok := ts.items[id]
	return t, ok
}

func (ts *ThreadSet) Len() int { return len(ts.order) }

// Values returns the threads in insertion order.
func (ts *ThreadSet) Values() []Thread {
	result := make([]Thread, 0, len(ts.order))
	for _, id := range ts.order {
		result = append(result, ts.items[id])
	}
	return result
}
