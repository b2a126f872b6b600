package binary

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// FlagSuffix is appended to a key name to form its sibling is-binary flag,
// e.g. the payload at "body" is flagged at "body_is_binary".
const FlagSuffix = "_is_binary"

// SoftSizeLimit is the threshold past which Encode reports a warning instead
// of failing outright; producers are expected to surface the warning to the
// trace, not to reject the payload.
const SoftSizeLimit = 50 * 1000 * 1000 // 50 MB

// FlagKey returns the sibling flag key for a given data key.
func FlagKey(key string) string {
	return key + FlagSuffix
}

// Encoded is a base64-encoded binary payload plus any warning raised while
// encoding it.
type Encoded struct {
	Value   string
	Warning string
}

// Encode base64-encodes raw bytes for storage under the binary-data
// contract. Callers write Value under the data key and true under
// FlagKey(key) in the same node's namespace.
func Encode(raw []byte) Encoded {
	enc := Encoded{Value: base64.StdEncoding.EncodeToString(raw)}
	if len(raw) > SoftSizeLimit {
		enc.Warning = "binary payload is " + humanize.Bytes(uint64(len(raw))) +
			", exceeding the " + humanize.Bytes(SoftSizeLimit) + " soft limit"
	}
	return enc
}

// Decode reverses Encode, returning the raw bytes carried by a base64 value.
func Decode(value string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(value)
}

// IsBinaryValue reports whether raw should be treated as binary rather than
// text: it is binary if it isn't valid UTF-8, or if it contains a NUL byte
// (which valid UTF-8 text from a well-behaved producer should never do).
func IsBinaryValue(raw []byte) bool {
	if !utf8.Valid(raw) {
		return true
	}
	for _, b := range raw {
		if b == 0 {
			return true
		}
	}
	return false
}

// Lookup resolves a value read from a node's output namespace against the
// binary-data contract: given the raw value at key and the sibling flag's
// value (nil if the flag key was absent), it reports whether the value
// should be treated as binary and, if so, decodes it.
//
// A missing or non-true flag means treat as text, per spec: backward
// compatibility with producers that never set the flag.
func Lookup(value any, flagValue any) (raw []byte, isBinary bool, err error) {
	flagged, _ := flagValue.(bool)
	if !flagged {
		return nil, false, nil
	}

	str, ok := value.(string)
	if !ok {
		return nil, true, nil
	}

	raw, err = Decode(str)
	if err != nil {
		return nil, true, err
	}
	return raw, true, nil
}
