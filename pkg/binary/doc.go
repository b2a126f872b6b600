// Package binary implements the binary-data contract nodes use to pass
// non-text payloads through the namespaced store.
//
// A binary value travels as a base64-encoded string under its normal key,
// plus a sibling boolean flag named "<key>_is_binary" set to true and
// written into the same node's own output tree. A missing flag means the
// value is plain text. There is no dedicated wire type: this package only
// encodes, decodes, and flags values, leaving storage and namespacing to
// pkg/store.
package binary
