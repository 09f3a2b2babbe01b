package tree

import (
	"strings"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// Key addresses one (node, parent) occurrence in a flattened forest.
type Key string

// KeySeparator joins a raw id and its parent's id in composite keys.
const KeySeparator = "_"

// keyEscape marks a literal separator or escape inside an id.
const keyEscape = `\`

var (
	idEscaper   = strings.NewReplacer(keyEscape, keyEscape+keyEscape, KeySeparator, keyEscape+KeySeparator)
	idUnescaper = strings.NewReplacer(keyEscape+keyEscape, keyEscape, keyEscape+KeySeparator, KeySeparator)
)

// String returns the key as a plain string
func (k Key) String() string {
	return string(k)
}

// escapeID makes id safe to embed in a composite key. Ids without the
// separator or escape character are returned unchanged.
func escapeID(id model.NodeID) string {
	s := string(id)
	if !strings.ContainsAny(s, keyEscape+KeySeparator) {
		return s
	}
	return idEscaper.Replace(s)
}

// ResolveID derives the key for raw id under parentID. With unique set the
// key is "<id>_<parentID>" (parentID empty for roots), where a "_" or "\"
// inside either id is escaped with "\" so distinct pairs never collide;
// otherwise the raw id is used as is and the caller guarantees global
// uniqueness.
func ResolveID(id, parentID model.NodeID, unique bool) Key {
	if !unique {
		return Key(id)
	}
	return Key(escapeID(id) + KeySeparator + escapeID(parentID))
}

// Resolve derives the key for node under parent (nil for roots). A
// caller-supplied Value always wins over the derived key.
func Resolve(node, parent *model.Node, unique bool) Key {
	if node.Value != "" {
		return Key(node.Value)
	}
	var parentID model.NodeID
	if parent != nil {
		parentID = parent.ID
	}
	return ResolveID(node.ID, parentID, unique)
}

// ParseKey recovers the raw id from a composite key: everything before the
// first unescaped separator, unescaped. It cannot tell raw or Value keys
// apart from composite ones; Index.Get(key).ID is exact for every key.
func ParseKey(key Key) model.NodeID {
	s := string(key)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case keyEscape[0]:
			i++
		case KeySeparator[0]:
			return model.NodeID(idUnescaper.Replace(s[:i]))
		}
	}
	return model.NodeID(idUnescaper.Replace(s))
}
