// Package shellnode implements the built-in "shell" node: it runs a single
// command through the system shell and reports stdout, stderr, and the exit
// code.
//
// No teacher example invokes os/exec directly — nodes_http.go's
// defer-based resource-cleanup discipline is the closest analogue, here
// generalized from an HTTP response body to a *exec.Cmd. Exit-status
// handling is grounded on errs.NewShellError, built specifically to carry
// a failing command and its exit code.
//
// Interface:
// - Writes: shared["stdout"]: string
// - Writes: shared["stdout_is_binary"]: bool
// - Writes: shared["stderr"]: string
// - Writes: shared["exit_code"]: int
// - Params: command: string
// - Params: stdin: string              # default, stdin if piped
// - Params: cwd: string                # default
// - Actions: default (exit code 0), error (exit code non-zero)
package shellnode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/loomrun/loom/pkg/binary"
	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

const interfaceDoc = `Interface:
- Writes: shared["stdout"]: string
- Writes: shared["stdout_is_binary"]: bool
- Writes: shared["stderr"]: string
- Writes: shared["exit_code"]: int
- Params: command: string
- Params: stdin: string # default, stdin if piped
- Params: cwd: string # default
- Actions: default (exit code 0), error (exit code non-zero)
`

// unsafePatterns are shell metacharacters that let a single command string
// smuggle in a second command. SHELL_STRICT rejects a resolved command
// containing any of these rather than trying to allowlist safe usage,
// since a node's command param is exactly the kind of string a template
// substitution (spec.md §4.3) can inject untrusted data into.
var unsafePatterns = []string{";", "&&", "||", "|", "`", "$(", ">", "<"}

// Register adds the "shell" node type to reg. strict mirrors the
// SHELL_STRICT environment variable (pkg/config.RuntimeEnv.ShellStrict):
// when true, a command containing shell metacharacters is rejected before
// it ever reaches exec.Command.
func Register(reg *registry.Registry, strict bool) error {
	return reg.Register("shell", interfaceDoc, func() registry.Node {
		return &shellNode{strict: strict}
	})
}

type shellNode struct {
	strict bool
}

type preparedCommand struct {
	command string
	stdin   string
	cwd     string
}

func (n *shellNode) Prep(shared *store.Namespace, params map[string]any) (any, error) {
	command, _ := params["command"].(string)
	if strings.TrimSpace(command) == "" {
		return nil, errs.New(errs.CategoryShell, shared.NodeID(), "shell node missing command")
	}

	if n.strict {
		for _, pattern := range unsafePatterns {
			if strings.Contains(command, pattern) {
				return nil, errs.New(errs.CategoryShell, shared.NodeID(),
					fmt.Sprintf("command rejected by SHELL_STRICT: contains %q", pattern)).
					WithSuggestion("remove shell metacharacters from the command, or run with SHELL_STRICT=false")
			}
		}
	}

	stdin, _ := params["stdin"].(string)
	cwd, _ := params["cwd"].(string)
	return preparedCommand{command: command, stdin: stdin, cwd: cwd}, nil
}

type commandResult struct {
	command  string
	stdout   []byte
	stderr   []byte
	exitCode int
}

func (n *shellNode) Exec(prep any) (any, error) {
	cmd := prep.(preparedCommand)

	execCmd := exec.CommandContext(context.Background(), "sh", "-c", cmd.command)
	if cmd.cwd != "" {
		execCmd.Dir = cmd.cwd
	}
	if cmd.stdin != "" {
		execCmd.Stdin = strings.NewReader(cmd.stdin)
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	runErr := execCmd.Run()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			// The shell itself never started (missing interpreter, I/O setup
			// failure) rather than running and exiting non-zero — this is
			// the one shellnode failure mode that is a Go error rather than
			// a semantic "error" action, since there is no exit code to
			// route on.
			return nil, errs.NewShellError("", cmd.command, -1, runErr)
		}
	}

	return commandResult{command: cmd.command, stdout: stdout.Bytes(), stderr: stderr.Bytes(), exitCode: exitCode}, nil
}

func (n *shellNode) Post(shared *store.Namespace, prep, exec any) (string, error) {
	result := exec.(commandResult)

	if binary.IsBinaryValue(result.stdout) {
		enc := binary.Encode(result.stdout)
		shared.Set("stdout", enc.Value)
		shared.Set("stdout_is_binary", true)
	} else {
		shared.Set("stdout", string(result.stdout))
		shared.Set("stdout_is_binary", false)
	}
	shared.Set("stderr", string(result.stderr))
	shared.Set("exit_code", result.exitCode)

	if result.exitCode != 0 {
		return "error", nil
	}
	return "default", nil
}
