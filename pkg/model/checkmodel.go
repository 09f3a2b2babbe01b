package model

import "fmt"

// CheckModelKind enumerates the check model variants.
type CheckModelKind uint8

const (
	// CheckLeaf: only leaves are checkable; parent state is derived.
	CheckLeaf CheckModelKind = iota
	// CheckAll: every node is checkable and contributes to its parent.
	CheckAll
	// CheckCustom: only nodes tagged with CheckModel.Tag are checkable.
	CheckCustom
)

// CheckModel selects which nodes are directly checkable and how ancestor
// state is derived.
type CheckModel struct {
	Kind CheckModelKind
	Tag  string // Only meaningful for CheckCustom
}

var (
	LeafModel = CheckModel{Kind: CheckLeaf}
	AllModel  = CheckModel{Kind: CheckAll}
)

// CustomModel returns a check model that only treats nodes whose type or
// node type equals tag as checkable.
func CustomModel(tag string) CheckModel {
	return CheckModel{Kind: CheckCustom, Tag: tag}
}

// ParseCheckModel maps "leaf" (or "") and "all" to the built-in models and
// any other string to a custom model with that tag.
func ParseCheckModel(s string) CheckModel {
	switch s {
	case "", "leaf":
		return LeafModel
	case "all":
		return AllModel
	default:
		return CustomModel(s)
	}
}

// String returns the config spelling of the model.
func (m CheckModel) String() string {
	switch m.Kind {
	case CheckLeaf:
		return "leaf"
	case CheckAll:
		return "all"
	case CheckCustom:
		return m.Tag
	default:
		return fmt.Sprintf("CheckModelKind(%d)", m.Kind)
	}
}

// IsCustom reports whether m is a custom (tag based) model.
func (m CheckModel) IsCustom() bool {
	return m.Kind == CheckCustom
}

// MarshalText implements encoding.TextMarshaler.
func (m CheckModel) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CheckModel) UnmarshalText(text []byte) error {
	*m = ParseCheckModel(string(text))
	return nil
}
