package binary

import (
	"bytes"
	"strings"
	"testing"
)

func TestFlagKey(t *testing.T) {
	if got := FlagKey("body"); got != "body_is_binary" {
		t.Errorf("FlagKey(%q) = %q, want %q", "body", got, "body_is_binary")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFF, 0xFE, 'h', 'i'}

	enc := Encode(raw)
	if enc.Warning != "" {
		t.Errorf("unexpected warning for small payload: %q", enc.Warning)
	}

	decoded, err := Decode(enc.Value)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Errorf("Decode(Encode(raw)) = %v, want %v", decoded, raw)
	}
}

func TestEncode_SoftLimitWarning(t *testing.T) {
	raw := make([]byte, SoftSizeLimit+1)

	enc := Encode(raw)
	if enc.Warning == "" {
		t.Error("expected a warning for a payload past the soft size limit")
	}
	if !strings.Contains(enc.Warning, "50 MB") {
		t.Errorf("warning = %q, want it to mention the 50 MB limit", enc.Warning)
	}
}

func TestIsBinaryValue(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"plain text", []byte("hello world"), false},
		{"utf8 text with multibyte runes", []byte("héllo wörld"), false},
		{"invalid utf8", []byte{0xff, 0xfe, 0x00, 0x01}, true},
		{"contains NUL", []byte("hello\x00world"), true},
		{"empty", []byte{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryValue(tt.raw); got != tt.want {
				t.Errorf("IsBinaryValue(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLookup_MissingFlagTreatedAsText(t *testing.T) {
	raw, isBinary, err := Lookup("plain text", nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if isBinary {
		t.Error("missing flag should be treated as text")
	}
	if raw != nil {
		t.Error("text lookup should not return decoded bytes")
	}
}

func TestLookup_FalseFlagTreatedAsText(t *testing.T) {
	_, isBinary, err := Lookup("plain text", false)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if isBinary {
		t.Error("false flag should be treated as text")
	}
}

func TestLookup_BinaryFlagDecodes(t *testing.T) {
	want := []byte{0x00, 0x01, 0x02, 0xFF}
	enc := Encode(want)

	raw, isBinary, err := Lookup(enc.Value, true)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !isBinary {
		t.Error("true flag should be treated as binary")
	}
	if !bytes.Equal(raw, want) {
		t.Errorf("Lookup decoded = %v, want %v", raw, want)
	}
}

func TestLookup_BinaryFlagInvalidBase64(t *testing.T) {
	_, isBinary, err := Lookup("not-valid-base64!!!", true)
	if err == nil {
		t.Error("expected a decode error for invalid base64")
	}
	if !isBinary {
		t.Error("the flag should still report binary even when decode fails")
	}
}
