package ghidra

// runner.go invokes the headless analyzer as a bounded child process,
// captures its output and decides whether a run counts as successful.

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"

	"github.com/stoyse/spectrace/model"
	"github.com/stoyse/spectrace/workspace"
)

// DefaultTimeout bounds a single analyzer invocation unless the request
// overrides it.
const DefaultTimeout = 300 * time.Second

// Runner launches analyzeHeadless runs scoped to a workspace.
type Runner struct {
	logger   zerolog.Logger
	toolPath string
	javaHome string
}

// NewRunner creates a runner for the analyzer binary at toolPath. The Java
// home is resolved once, up front; an empty result means the inherited
// environment is used unchanged.
func NewRunner(logger zerolog.Logger, toolPath, javaHomeOverride string) *Runner {
	logger = logger.With().Str("component", "runner").Logger()
	return &Runner{
		logger:   logger,
		toolPath: toolPath,
		javaHome: DetectJavaHome(logger, javaHomeOverride),
	}
}

// Run imports binaryPath into a throwaway project inside the workspace and
// executes the extraction script against it, enforcing the given wall-clock
// timeout. On expiry the child's process group is killed and reaped before
// Run returns; no orphaned analyzer JVM is left behind.
func (r *Runner) Run(ctx context.Context, ws *workspace.Workspace, binaryPath, arch string, timeout time.Duration) (*model.ProcessResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	args := []string{
		ws.Dir(),
		fmt.Sprintf("temp_project_%d", os.Getpid()),
		"-import", binaryPath,
		"-scriptPath", ws.Dir(),
		"-postScript", ScriptFilename,
		"-deleteProject",
	}
	if arch != "" {
		args = append(args, "-processor", arch)
	}

	cmd := exec.Command(r.toolPath, args...)
	cmd.Dir = ws.Dir()
	cmd.Env = r.environ()
	// Own process group, so a timeout kill reaps the forked JVM as well.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	r.logger.Debug().
		Str("command", shellescape.QuoteCommand(append([]string{r.toolPath}, args...))).
		Dur("timeout", timeout).
		Msg("Invoking headless analyzer")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch ghidra analyzer: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-timer.C:
		r.killAndReap(cmd, done)
		return nil, fmt.Errorf("analysis timed out after %s", timeout)
	case <-ctx.Done():
		r.killAndReap(cmd, done)
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("analysis timed out after %s", time.Since(start).Round(time.Millisecond))
		}
		return nil, fmt.Errorf("analysis canceled: %w", ctx.Err())
	}

	exitCode := 0
	if waitErr != nil {
		exitErr, ok := waitErr.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("ghidra analyzer execution failed: %w", waitErr)
		}
		exitCode = exitErr.ExitCode()
	}

	result := &model.ProcessResult{
		ExitCode:       exitCode,
		Stdout:         stdoutBuf.String(),
		Stderr:         stderrBuf.String(),
		FilteredStderr: FilterStderr(stderrBuf.String()),
		Duration:       time.Since(start),
	}

	r.logger.Info().
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("Headless analyzer finished")

	if result.ExitCode != 0 && Succeeded(result) {
		r.logger.Debug().
			Int("exit_code", result.ExitCode).
			Msg("Nonzero exit rescued by completion marker and clean stderr")
	}

	return result, nil
}

// environ returns the inherited environment, augmented with the resolved
// Java home when one was found.
func (r *Runner) environ() []string {
	env := os.Environ()
	if r.javaHome == "" {
		return env
	}
	env = append(env, "JAVA_HOME="+r.javaHome)
	env = append(env, fmt.Sprintf("PATH=%s/bin:%s", r.javaHome, os.Getenv("PATH")))
	return env
}

// killAndReap terminates the child's process group and waits for the exited
// child so no zombie remains.
func (r *Runner) killAndReap(cmd *exec.Cmd, done <-chan error) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		// Group kill can fail if the group is already gone; fall back to
		// the direct child.
		_ = cmd.Process.Kill()
	}
	<-done
	r.logger.Warn().Int("pid", cmd.Process.Pid).Msg("Headless analyzer killed")
}

// Succeeded is the run success predicate: a zero exit always passes, and a
// nonzero exit is tolerated when stderr holds nothing but known noise and
// stdout carries the script's completion marker. Note this can report
// success for runs whose errors only reached the analyzer's internal log;
// kept for compatibility with the tool's cosmetic nonzero exits.
func Succeeded(result *model.ProcessResult) bool {
	if result.ExitCode == 0 {
		return true
	}
	return result.FilteredStderr == "" && strings.Contains(result.Stdout, CompletionMarker)
}
