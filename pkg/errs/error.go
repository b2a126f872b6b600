package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the canonical shape every node, the compiler, and the executor
// wrap failures in before they cross a node boundary.
type Error struct {
	Category Category
	Message  string
	NodeID   string // empty outside node execution (e.g. validation errors)
	Fixable  bool
	Cause    error

	Suggestion      string   // human/agent-facing hint, optional
	ShellCommand    string   // set only for CategoryShell
	ShellExitCode   int      // set only for CategoryShell, 0 if not applicable
	AvailableFields []string // set when Message references an unknown field/path
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Category)
	if e.NodeID != "" {
		fmt.Fprintf(&b, " node %s:", e.NodeID)
	}
	fmt.Fprintf(&b, " %s", e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a non-fixable Error with no cause.
func New(category Category, nodeID, message string) *Error {
	return &Error{Category: category, NodeID: nodeID, Message: message}
}

// Wrap creates an Error around an existing error, preserving it as Cause so
// errors.Is/errors.As continue to see through to it.
func Wrap(category Category, nodeID string, cause error) *Error {
	return &Error{Category: category, NodeID: nodeID, Message: cause.Error(), Cause: cause}
}

// WithSuggestion returns a copy of e carrying a repair suggestion and marked
// fixable.
func (e *Error) WithSuggestion(suggestion string) *Error {
	out := *e
	out.Suggestion = suggestion
	out.Fixable = true
	return &out
}

// WithAvailableFields returns a copy of e annotated with the set of field
// names or paths that were in scope when the reference failed to resolve.
func (e *Error) WithAvailableFields(fields []string) *Error {
	out := *e
	out.AvailableFields = fields
	return &out
}

// NewShellError builds a CategoryShell error carrying the failing command and
// its exit code, as surfaced by the shell node's exec phase.
func NewShellError(nodeID, command string, exitCode int, cause error) *Error {
	return &Error{
		Category:      CategoryShell,
		NodeID:        nodeID,
		Message:       fmt.Sprintf("command exited with status %d", exitCode),
		Cause:         cause,
		ShellCommand:  command,
		ShellExitCode: exitCode,
	}
}

// NewTimeoutError builds a CategoryTimeout error for a node or execution that
// exceeded its deadline.
func NewTimeoutError(nodeID, message string) *Error {
	return &Error{Category: CategoryTimeout, NodeID: nodeID, Message: message}
}

// NewCancelledError builds a CategoryCancelled error for a node or execution
// that was aborted via context cancellation.
func NewCancelledError(nodeID string) *Error {
	return &Error{Category: CategoryCancelled, NodeID: nodeID, Message: "execution cancelled"}
}

// As reports whether err is, or wraps, an *Error, mirroring the standard
// errors.As call so node code doesn't need to import both packages for the
// common case of inspecting a category.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsCategory reports whether err is, or wraps, an *Error in the given
// category.
func IsCategory(err error, category Category) bool {
	e, ok := As(err)
	return ok && e.Category == category
}
