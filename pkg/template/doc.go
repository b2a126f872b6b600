// Package template resolves "${p.q[0].r}" references against a node's
// params before the inner node sees them.
//
// A param string is either a pure reference — the whole string is exactly
// one "${...}" token, and the result keeps the referenced value's original
// type — or an interpolation, where every reference is stringified and
// concatenated with the surrounding literal text. Resolution is single
// pass: a resolved value is never re-scanned for further "${...}" tokens.
package template
