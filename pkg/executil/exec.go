// Package executil provides shell execution utilities.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const maxStderrLen = 500

// limitedWriter caps writes to a bytes.Buffer at a maximum byte count.
// Bytes beyond the limit are silently discarded.
type limitedWriter struct {
	buf *bytes.Buffer
	n   int64
	max int64
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.n >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.n
	origLen := len(p)
	if int64(origLen) > remaining {
		p = p[:remaining]
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, err
	}
	return origLen, nil
}

// ShellRequest describes a single shell invocation.
type ShellRequest struct {
	// Command is passed verbatim to "sh -c".
	Command string
	// Dir is the working directory. Empty inherits the current one.
	Dir string
	// Env entries in KEY=VALUE form are appended to the inherited environment.
	Env []string
	// Stdout and Stderr receive the command output when set. Stderr is
	// additionally tailed into the returned error on failure, capped at 500
	// bytes so large or ANSI-polluted output cannot corrupt logs.
	Stdout io.Writer
	Stderr io.Writer
}

// Shell runs commands. Implementations must honor context cancellation.
type Shell interface {
	Run(ctx context.Context, req ShellRequest) error
}

// OSShell runs commands through the real system shell.
type OSShell struct{}

// Run executes req through "sh -c". On failure the captured stderr prefix is
// folded into the error message, and the original *exec.ExitError stays
// reachable via errors.As.
func (OSShell) Run(ctx context.Context, req ShellRequest) error {
	c := exec.CommandContext(ctx, "sh", "-c", req.Command)
	c.Dir = req.Dir
	if len(req.Env) > 0 {
		c.Env = append(os.Environ(), req.Env...)
	}

	var capped bytes.Buffer
	stderr := io.Writer(&limitedWriter{buf: &capped, max: maxStderrLen})
	if req.Stderr != nil {
		stderr = io.MultiWriter(req.Stderr, stderr)
	}

	c.Stdout = io.Discard
	if req.Stdout != nil {
		c.Stdout = req.Stdout
	}
	c.Stderr = stderr

	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(capped.String())
		if msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	return nil
}
