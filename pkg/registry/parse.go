package registry

import (
	"fmt"
	"strings"
)

// ParseInterface extracts a structured Interface from the "Interface:" doc
// block accompanying a node implementation, per the grammar in spec.md
// §4.2:
//
//	Interface:
//	- Reads: shared["<key>"]: <type>   # optional comment
//	- Writes: shared["<key>"]: <type>
//	    - <sub_key>: <type>            # nested, 2-space indent per level, max depth 5
//	- Params: <name>: <type>           # default <value>, stdin if piped
//	- Actions: <name> (<when>), ...
//
// Text before the "Interface:" header is ignored, so callers can pass the
// node's whole doc comment rather than pre-slicing it.
func ParseInterface(doc string) (*Interface, error) {
	iface := &Interface{Params: make(map[string]ParamDecl)}

	started := false
	var writeStack []*WriteNode
	var indentStack []int

	for lineNo, raw := range strings.Split(doc, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if !started {
			if strings.TrimSpace(raw) == "Interface:" {
				started = true
			}
			continue
		}

		indent := leadingSpaces(raw)
		body, comment := splitComment(strings.TrimSpace(raw))
		body = strings.TrimPrefix(body, "- ")

		switch {
		case strings.HasPrefix(body, "Reads:"):
			key, typ, err := parseKeyType(strings.TrimSpace(strings.TrimPrefix(body, "Reads:")))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			iface.Reads = append(iface.Reads, ReadDecl{Key: key, Type: typ, Comment: comment})
			writeStack, indentStack = nil, nil

		case strings.HasPrefix(body, "Writes:"):
			key, typ, err := parseKeyType(strings.TrimSpace(strings.TrimPrefix(body, "Writes:")))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			node := &WriteNode{Key: key, Type: typ}
			iface.Writes = append(iface.Writes, node)
			writeStack = []*WriteNode{node}
			indentStack = []int{indent}

		case strings.HasPrefix(body, "Params:"):
			pd, err := parseParam(strings.TrimSpace(strings.TrimPrefix(body, "Params:")), comment)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			iface.Params[pd.Name] = pd
			writeStack, indentStack = nil, nil

		case strings.HasPrefix(body, "Actions:"):
			actions, err := parseActions(strings.TrimPrefix(body, "Actions:"))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			iface.Actions = append(iface.Actions, actions...)
			writeStack, indentStack = nil, nil

		default:
			if len(writeStack) == 0 {
				return nil, fmt.Errorf("line %d: nested write line outside a Writes: block", lineNo+1)
			}
			for len(indentStack) > 0 && indent <= indentStack[len(indentStack)-1] {
				writeStack = writeStack[:len(writeStack)-1]
				indentStack = indentStack[:len(indentStack)-1]
			}
			if len(writeStack) == 0 {
				return nil, fmt.Errorf("line %d: write nesting does not match any open parent", lineNo+1)
			}
			if len(indentStack) >= maxWriteDepth {
				return nil, fmt.Errorf("line %d: write nesting exceeds max depth %d", lineNo+1, maxWriteDepth)
			}

			key, typ, err := parseChildKeyType(body)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			child := &WriteNode{Key: key, Type: typ}
			parent := writeStack[len(writeStack)-1]
			parent.Children = append(parent.Children, child)
			writeStack = append(writeStack, child)
			indentStack = append(indentStack, indent)
		}
	}

	if !started {
		return nil, fmt.Errorf("no Interface: block found")
	}
	return iface, nil
}

func leadingSpaces(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' {
			break
		}
		n++
	}
	return n
}

// splitComment splits "body # comment" into its two halves, trimmed. A
// trailing comma (for Actions lists) is left untouched.
func splitComment(line string) (body, comment string) {
	idx := strings.Index(line, "#")
	if idx < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}

// parseKeyType parses `shared["<key>"]: <type>`.
func parseKeyType(s string) (key, typ string, err error) {
	const prefix = `shared["`
	if !strings.HasPrefix(s, prefix) {
		return "", "", fmt.Errorf("expected %sKEY\"]: TYPE, got %q", prefix, s)
	}
	rest := s[len(prefix):]
	end := strings.Index(rest, `"]`)
	if end < 0 {
		return "", "", fmt.Errorf("unterminated shared[\"...\"] in %q", s)
	}
	key = rest[:end]
	tail := strings.TrimSpace(rest[end+2:])
	tail = strings.TrimPrefix(tail, ":")
	typ = strings.TrimSpace(tail)
	if key == "" {
		return "", "", fmt.Errorf("empty key in %q", s)
	}
	if !ValidType(typ) {
		return "", "", fmt.Errorf("unknown type %q in %q", typ, s)
	}
	return key, typ, nil
}

// parseChildKeyType parses a nested "<sub_key>: <type>" line (no
// shared[...] wrapper, since the parent Writes line already established
// the shared-store root).
func parseChildKeyType(body string) (key, typ string, err error) {
	parts := strings.SplitN(body, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected KEY: TYPE, got %q", body)
	}
	key = strings.TrimSpace(parts[0])
	typ = strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmt.Errorf("empty key in %q", body)
	}
	if !ValidType(typ) {
		return "", "", fmt.Errorf("unknown type %q in %q", typ, body)
	}
	return key, typ, nil
}

// parseParam parses "<name>: <type>" plus an optional "default <value>,
// stdin if piped" comment.
func parseParam(body, comment string) (ParamDecl, error) {
	parts := strings.SplitN(body, ":", 2)
	if len(parts) != 2 {
		return ParamDecl{}, fmt.Errorf("expected NAME: TYPE, got %q", body)
	}
	name := strings.TrimSpace(parts[0])
	typ := strings.TrimSpace(parts[1])
	if name == "" {
		return ParamDecl{}, fmt.Errorf("empty param name in %q", body)
	}
	if !ValidType(typ) {
		return ParamDecl{}, fmt.Errorf("unknown type %q in %q", typ, body)
	}

	pd := ParamDecl{Name: name, Type: typ}
	for _, clause := range strings.Split(comment, ",") {
		clause = strings.TrimSpace(clause)
		switch {
		case clause == "":
		case clause == "stdin if piped":
			pd.Stdin = true
		case strings.HasPrefix(clause, "default "):
			pd.Default = strings.TrimSpace(strings.TrimPrefix(clause, "default "))
			pd.HasDefault = true
		}
	}
	return pd, nil
}

// parseActions parses a comma-separated "<name> (<when>), ..." list.
func parseActions(s string) ([]ActionDecl, error) {
	var actions []ActionDecl
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		open := strings.IndexByte(part, '(')
		if open < 0 {
			actions = append(actions, ActionDecl{Name: part})
			continue
		}
		if !strings.HasSuffix(part, ")") {
			return nil, fmt.Errorf("unterminated action condition in %q", part)
		}
		name := strings.TrimSpace(part[:open])
		when := strings.TrimSpace(part[open+1 : len(part)-1])
		if name == "" {
			return nil, fmt.Errorf("empty action name in %q", part)
		}
		actions = append(actions, ActionDecl{Name: name, When: when})
	}
	return actions, nil
}
