package hooks

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"reflect"
	"runtime"
	"strings"
	"time"
)

const defaultCommandTimeout = 10 * time.Second

// Command replaces the value at a filter point with the output of a shell command.
//
// The command receives {"filter": <name>, "value": <current value>} as JSON on
// stdin. To replace the value it prints {"value": <new value>} on stdout and
// exits 0. Empty output, a non-zero exit status or a timeout keep the value.
type Command struct {
	Filter  string
	Command string

	// Timeout is the execution timeout in seconds (default: 10)
	Timeout int
}

// GetTimeout returns the timeout duration, defaulting to 10 seconds
func (c *Command) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultCommandTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

// CommandInput is written to the command's stdin.
type CommandInput struct {
	Filter string `json:"filter"`
	Value  any    `json:"value"`
}

// CommandOutput is read from the command's stdout.
type CommandOutput struct {
	Value json.RawMessage `json:"value"`
}

// Executor runs filter commands through the user's shell.
type Executor struct {
	workingDir string
	env        []string

	shell           string
	shellArgsPrefix []string
}

// NewExecutor creates an executor. A nil env inherits the process environment.
func NewExecutor(workingDir string, env []string) *Executor {
	e := &Executor{
		workingDir: workingDir,
		env:        env,
	}
	e.initShell()
	return e
}

func (e *Executor) initShell() {
	if runtime.GOOS == "windows" {
		if path, err := exec.LookPath("pwsh.exe"); err == nil {
			e.shell = path
			e.shellArgsPrefix = []string{"-NoProfile", "-NonInteractive", "-Command"}
		} else if path, err := exec.LookPath("powershell.exe"); err == nil {
			e.shell = path
			e.shellArgsPrefix = []string{"-NoProfile", "-NonInteractive", "-Command"}
		} else {
			e.shell = cmp.Or(os.Getenv("ComSpec"), "cmd.exe")
			e.shellArgsPrefix = []string{"/C"}
		}
	} else {
		e.shell = cmp.Or(os.Getenv("SHELL"), "/bin/sh")
		e.shellArgsPrefix = []string{"-c"}
	}
}

// Filter wraps c as a Filter. The replacement is decoded into the dynamic
// type of the value it replaces, so typed filter points stay typed.
func (e *Executor) Filter(c Command) Filter {
	return func(value any) any {
		out, err := e.Run(context.Background(), c, value)
		if err != nil {
			slog.Debug("Filter command kept the value", "filter", c.Filter, "command", c.Command, "error", err)
			return nil
		}
		return out
	}
}

var errNoReplacement = errors.New("command printed no replacement")

// Run executes c with value on stdin and returns the decoded replacement.
func (e *Executor) Run(ctx context.Context, c Command, value any) (any, error) {
	input, err := json.Marshal(CommandInput{Filter: c.Filter, Value: value})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize filter input: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.GetTimeout())
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, e.shell, append(e.shellArgsPrefix, c.Command)...)
	cmd.Dir = e.workingDir
	cmd.Env = e.env
	cmd.Stdin = bytes.NewReader(input)
	// Children of the shell can hold stdout open after it is killed.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			return nil, fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}

	raw := bytes.TrimSpace(stdout.Bytes())
	if len(raw) == 0 {
		return nil, errNoReplacement
	}
	var output CommandOutput
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, fmt.Errorf("failed to parse filter output: %w", err)
	}
	if len(output.Value) == 0 {
		return nil, errNoReplacement
	}

	return decodeAs(output.Value, value)
}

// decodeAs decodes raw into a new value of like's dynamic type.
func decodeAs(raw json.RawMessage, like any) (any, error) {
	if like == nil {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode replacement: %w", err)
		}
		return v, nil
	}

	ptr := reflect.New(reflect.TypeOf(like))
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("failed to decode replacement as %T: %w", like, err)
	}
	return ptr.Elem().Interface(), nil
}

// AddCommands registers each command as a filter, skipping duplicates.
func AddCommands(r *Registry, e *Executor, commands []Command) {
	seen := make(map[string]bool)
	for _, c := range commands {
		key := c.Filter + ":" + c.Command
		if seen[key] {
			continue
		}
		seen[key] = true
		r.Add(c.Filter, e.Filter(c))
	}
}
