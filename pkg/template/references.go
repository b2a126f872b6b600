package template

import "github.com/loomrun/loom/pkg/store"

// References returns every reference token found in s (the text between
// "${" and "}"), in order. Used by the IR validator to check template
// references against known node ids and declared output paths statically,
// without resolving anything against a store.
func References(s string) ([]string, error) {
	segments, err := scan(s)
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, seg := range segments {
		if seg.isRef {
			refs = append(refs, seg.reference)
		}
	}
	return refs, nil
}

// ParsePath exposes the package's path parser to callers outside the
// template engine (the IR validator) that need to walk a reference's path
// steps without resolving it against a store.
func ParsePath(body string) ([]store.PathStep, error) {
	return parsePath(body)
}
