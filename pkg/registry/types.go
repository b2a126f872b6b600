package registry

import "strings"

// knownTypes is the closed set of value types the Interface grammar may
// declare, alone or combined with others via "|" (e.g. "string|int").
var knownTypes = map[string]bool{
	"string": true,
	"int":    true,
	"float":  true,
	"bool":   true,
	"dict":   true,
	"list":   true,
	"bytes":  true,
}

// ValidType reports whether typ is a single known type, or a "|"-joined
// union of only known types.
func ValidType(typ string) bool {
	if typ == "" {
		return false
	}
	for _, part := range strings.Split(typ, "|") {
		if !knownTypes[part] {
			return false
		}
	}
	return true
}

// maxWriteDepth bounds how deeply a Writes declaration may nest, per
// spec.md §4.2 ("max depth 5").
const maxWriteDepth = 5

// ReadDecl is one declared "Reads:" line: a key the node consumes from its
// own namespaced view of the shared store, plus its type.
type ReadDecl struct {
	Key     string
	Type    string
	Comment string
}

// WriteNode is one declared "Writes:" key, possibly with nested children
// (a dict's sub-keys). The template engine and the IR validator both
// consult this tree to check a reference path against a node's actual
// output shape.
type WriteNode struct {
	Key      string
	Type     string
	Children []*WriteNode
}

// ParamDecl is one declared "Params:" entry.
type ParamDecl struct {
	Name       string
	Type       string
	Default    string
	HasDefault bool
	Stdin      bool
}

// ActionDecl is one declared "Actions:" entry: an action name and the
// condition under which a node's post phase returns it.
type ActionDecl struct {
	Name string
	When string
}

// Interface is a node's static, declared contract, extracted once at
// registration time from its doc-comment "Interface:" block.
type Interface struct {
	Reads   []ReadDecl
	Writes  []*WriteNode
	Params  map[string]ParamDecl
	Actions []ActionDecl
}

// WriteNodeByKey returns the top-level Writes entry with the given key, or
// nil if the interface doesn't declare it.
func (i *Interface) WriteNodeByKey(key string) *WriteNode {
	for _, w := range i.Writes {
		if w.Key == key {
			return w
		}
	}
	return nil
}
