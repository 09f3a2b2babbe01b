package tree

// Selection holds at most one selected key. The zero value selects nothing.
type Selection struct {
	key Key
	ok  bool
}

// Select replaces the selection with key.
func (s Selection) Select(key Key) Selection {
	return Selection{key: key, ok: true}
}

// Deselect clears the selection.
func (s Selection) Deselect() Selection {
	return Selection{}
}

// Key returns the selected key, if any.
func (s Selection) Key() (Key, bool) {
	return s.key, s.ok
}

// IsSelected reports whether key is the selected key.
func (s Selection) IsSelected(key Key) bool {
	return s.ok && s.key == key
}
