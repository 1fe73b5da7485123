package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_StderrCappedAtMaxLen(t *testing.T) {
	ctx := context.Background()

	// Write twice the cap to stderr; only the first maxStderrLen bytes should
	// appear in the error.
	longStderr := strings.Repeat("A", maxStderrLen*2)
	cmd := fmt.Sprintf("printf '%%s' '%s' >&2; exit 1", longStderr)

	err := OSShell{}.Run(ctx, ShellRequest{Command: cmd})
	require.Error(t, err)

	errMsg := err.Error()
	assert.LessOrEqual(t, len(errMsg), maxStderrLen+20, "error message should be capped")
	assert.Equal(t, strings.Repeat("A", maxStderrLen), errMsg[:maxStderrLen])
}

func TestShell_PreservesExitError(t *testing.T) {
	err := OSShell{}.Run(context.Background(), ShellRequest{Command: "echo 'error message' >&2; exit 1"})
	require.Error(t, err)

	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
}

func TestShell_NoStderrReturnsExitError(t *testing.T) {
	err := OSShell{}.Run(context.Background(), ShellRequest{Command: "exit 2"})
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode())
}

func TestShell_EnvAndDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := OSShell{}.Run(context.Background(), ShellRequest{
		Command: `printf '%s %s' "$RONIN_MISSION" "$(pwd)"`,
		Dir:     dir,
		Env:     []string{"RONIN_MISSION=fix the bug"},
		Stdout:  &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "fix the bug")
	assert.Contains(t, out.String(), dir)
}

func TestShell_StderrStreamedAndCapped(t *testing.T) {
	var stderr bytes.Buffer

	err := OSShell{}.Run(context.Background(), ShellRequest{
		Command: "printf 'warn' >&2; exit 1",
		Stderr:  &stderr,
	})
	require.Error(t, err)
	assert.Equal(t, "warn", stderr.String())
	assert.Contains(t, err.Error(), "warn")
}

func TestRecordingShell(t *testing.T) {
	sh := &RecordingShell{}
	ctx := context.Background()

	require.NoError(t, sh.Run(ctx, ShellRequest{Command: "agent one", Dir: "/work"}))
	require.NoError(t, sh.Run(ctx, ShellRequest{Command: "agent two"}))

	require.Len(t, sh.Requests, 2)
	assert.Equal(t, "agent one", sh.Requests[0].Command)
	assert.Equal(t, "/work", sh.Requests[0].Dir)

	sh.Reset()
	assert.Empty(t, sh.Requests)

	sh.Err = fmt.Errorf("boom")
	assert.Error(t, sh.Run(ctx, ShellRequest{Command: "agent"}))
}
