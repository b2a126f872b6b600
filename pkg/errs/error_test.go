package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "validation error without node",
			err:  New(CategoryValidation, "", "duplicate node id \"a\""),
			contains: []string{"[validation]", "duplicate node id"},
		},
		{
			name: "node-scoped error",
			err:  New(CategoryHTTP, "fetch-1", "request failed"),
			contains: []string{"[http]", "node fetch-1", "request failed"},
		},
		{
			name: "wrapped cause is appended",
			err:  Wrap(CategoryFile, "read-1", errors.New("permission denied")),
			contains: []string{"[file]", "permission denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Error() = %q, want substring %q", got, want)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CategoryInternal, "n1", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through to the wrapped cause")
	}
}

func TestWithSuggestion(t *testing.T) {
	base := New(CategoryTemplate, "n1", "unknown path a.b.c")
	if base.Fixable {
		t.Fatal("base error should not be fixable before WithSuggestion")
	}

	fixed := base.WithSuggestion("did you mean a.b.d?")
	if !fixed.Fixable {
		t.Error("WithSuggestion should mark the error fixable")
	}
	if fixed.Suggestion == "" {
		t.Error("WithSuggestion should set Suggestion")
	}
	if base.Fixable {
		t.Error("WithSuggestion must not mutate the receiver")
	}
}

func TestWithAvailableFields(t *testing.T) {
	base := New(CategoryTemplate, "n1", "unknown path a.b.c")
	fields := []string{"a.b.d", "a.b.e"}

	annotated := base.WithAvailableFields(fields)
	if len(annotated.AvailableFields) != 2 {
		t.Fatalf("AvailableFields len = %d, want 2", len(annotated.AvailableFields))
	}
	if len(base.AvailableFields) != 0 {
		t.Error("WithAvailableFields must not mutate the receiver")
	}
}

func TestNewShellError(t *testing.T) {
	cause := fmt.Errorf("exit status 127")
	err := NewShellError("shell-1", "curl http://x", 127, cause)

	if err.Category != CategoryShell {
		t.Errorf("Category = %v, want %v", err.Category, CategoryShell)
	}
	if err.ShellExitCode != 127 {
		t.Errorf("ShellExitCode = %d, want 127", err.ShellExitCode)
	}
	if err.ShellCommand != "curl http://x" {
		t.Errorf("ShellCommand = %q, want %q", err.ShellCommand, "curl http://x")
	}
	if !errors.Is(err, cause) {
		t.Error("NewShellError should preserve the cause for errors.Is")
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", New(CategoryLLM, "n1", "timed out"))

	got, ok := As(wrapped)
	if !ok {
		t.Fatal("As() should find the wrapped *Error through fmt.Errorf %w")
	}
	if got.Category != CategoryLLM {
		t.Errorf("Category = %v, want %v", got.Category, CategoryLLM)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("As() should return false for a plain error")
	}
}

func TestIsCategory(t *testing.T) {
	err := New(CategoryTimeout, "n1", "deadline exceeded")

	if !IsCategory(err, CategoryTimeout) {
		t.Error("IsCategory should match the error's own category")
	}
	if IsCategory(err, CategoryHTTP) {
		t.Error("IsCategory should not match an unrelated category")
	}
	if IsCategory(errors.New("plain"), CategoryTimeout) {
		t.Error("IsCategory should be false for a non-*Error")
	}
}

func TestCategory_Valid(t *testing.T) {
	tests := []struct {
		category Category
		valid    bool
	}{
		{CategoryValidation, true},
		{CategoryToolProtocol, true},
		{CategoryCancelled, true},
		{Category("bogus"), false},
		{Category(""), false},
	}

	for _, tt := range tests {
		if got := tt.category.Valid(); got != tt.valid {
			t.Errorf("Category(%q).Valid() = %v, want %v", tt.category, got, tt.valid)
		}
	}
}
