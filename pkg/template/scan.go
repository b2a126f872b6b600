package template

import "strings"

// segment is one piece of a parsed param string: either literal text, or a
// reference body (the text between "${" and "}").
type segment struct {
	literal   string
	reference string // non-empty only when isRef is true
	isRef     bool
}

// scan splits s into literal and reference segments. Malformed references
// (an unterminated "${") are reported as an error; the template engine has
// no use for a partially-resolved string.
func scan(s string) ([]segment, error) {
	var segments []segment
	rest := s

	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			if rest != "" {
				segments = append(segments, segment{literal: rest})
			}
			return segments, nil
		}

		if start > 0 {
			segments = append(segments, segment{literal: rest[:start]})
		}

		end := strings.IndexByte(rest[start+2:], '}')
		if end < 0 {
			return nil, errUnterminatedReference(rest[start:])
		}
		body := rest[start+2 : start+2+end]
		segments = append(segments, segment{reference: body, isRef: true})
		rest = rest[start+2+end+1:]
	}
}

// isPureReference reports whether segments represent exactly one reference
// and nothing else: the entire original string was "${...}".
func isPureReference(segments []segment) (string, bool) {
	if len(segments) == 1 && segments[0].isRef {
		return segments[0].reference, true
	}
	return "", false
}
