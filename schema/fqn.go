package schema

import "strings"

// EscapeName escapes one path component by doubling every occurrence of
// the reserved separator characters backslash, slash, dot and at-sign, so
// that a synthesized name never collides with a genuinely nested path.
func EscapeName(s string) string {
	if !strings.ContainsAny(s, `\/.@`) {
		return s
	}
	var b strings.Builder
	b.Grow(2 * len(s))
	for _, r := range s {
		switch r {
		case '\\', '/', '.', '@':
			b.WriteRune(r)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FieldFQN synthesizes a name for an anonymous composite type: the escaped
// path from the first enclosing group (exclusive) down to the node, joined
// with dots, plus a suffix. The result is unique within the owning group.
func FieldFQN(n *Node, suffix string) string {
	var path []*Node
	for x := n; x.Sort != SortGroup; x = x.Container {
		path = append(path, x)
	}
	var b strings.Builder
	for i := len(path) - 1; i >= 0; i-- {
		if i != len(path)-1 {
			b.WriteByte('.')
		}
		b.WriteString(EscapeName(path[i].Name))
	}
	b.WriteString(suffix)
	return b.String()
}

// FQN returns the absolute fully-qualified name of a node: group components
// joined by slashes from the dataset root, then any in-variable components
// joined by dots. The root group itself contributes only the leading slash.
func FQN(n *Node) string {
	var path []*Node
	for x := n; x != nil && !x.Root; x = x.Container {
		path = append(path, x)
	}
	if len(path) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(path) - 1; i >= 0; i-- {
		elem := path[i]
		if elem.Container != nil && elem.Container.Sort == SortGroup {
			b.WriteByte('/')
		} else {
			b.WriteByte('.')
		}
		b.WriteString(EscapeName(elem.Name))
	}
	return b.String()
}
