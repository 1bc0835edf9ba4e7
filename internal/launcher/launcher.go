// Package launcher spawns the external job-controller process and manages
// its lifecycle: wait for completion, optional timeout, forced kill.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"tetherharness/internal/shared/logging"
)

// ErrTimeout is returned by Await when the process outlives the configured
// bound. The process is confirmed terminated before Await returns.
var ErrTimeout = errors.New("launcher: process timed out")

// LaunchError reports a process that could not be started at all.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launcher: starting %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Args describes one controller invocation.
type Args struct {
	// Command is the controller executable plus leading arguments.
	Command []string

	InputDir   string
	OutputDir  string
	SchemaFile string
	Protocol   string
	Program    string
}

// Argv builds the full deterministic argument vector:
//
//	<command...> tether --in <in> --out <out> --outschema <schema>
//	--protocol <proto> --program <program>
func (a Args) Argv() []string {
	argv := make([]string, 0, len(a.Command)+11)
	argv = append(argv, a.Command...)
	argv = append(argv, "tether")
	argv = append(argv, "--in", a.InputDir)
	argv = append(argv, "--out", a.OutputDir)
	argv = append(argv, "--outschema", a.SchemaFile)
	argv = append(argv, "--protocol", a.Protocol)
	argv = append(argv, "--program", a.Program)
	return argv
}

// State classifies how the process reached its terminal state.
type State int

const (
	// Completed means the process exited on its own.
	Completed State = iota
	// TimedOut means Await killed the process after the bound elapsed.
	TimedOut
	// AlreadyFaulted means the handle was force-killed before Await
	// observed the exit, typically during harness unwind.
	AlreadyFaulted
)

func (s State) String() string {
	switch s {
	case Completed:
		return "COMPLETED"
	case TimedOut:
		return "TIMED_OUT"
	case AlreadyFaulted:
		return "ALREADY_FAULTED"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal result of one controller process.
type Outcome struct {
	State State
	// ExitCode is meaningful only when State is Completed.
	ExitCode int
}

// Handle owns one running controller process. The owner must drive it to a
// terminal state (Await or Kill) before teardown; a live process must never
// outlast the scenario.
type Handle struct {
	cmd    *exec.Cmd
	done   chan struct{}
	logger logging.Logger

	mu     sync.Mutex
	killed bool
}

// Launch spawns the controller built from args. The child inherits the
// harness environment and working directory, and its stdout/stderr pass
// through. If the process cannot be spawned no handle is returned and
// nothing is left running.
func Launch(args Args, logger logging.Logger) (*Handle, error) {
	argv := args.Argv()
	logger.Info("Launching job controller", "command", argv)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: argv[0], Err: err}
	}

	h := &Handle{
		cmd:    cmd,
		done:   make(chan struct{}),
		logger: logger,
	}

	go func() {
		h.cmd.Wait()
		close(h.done)
	}()

	return h, nil
}

// Await blocks until the process exits or timeout elapses. A zero timeout
// waits forever. On timeout the process is killed and reaped before Await
// returns, so a TimedOut outcome guarantees the process is gone.
func (h *Handle) Await(timeout time.Duration) (Outcome, error) {
	if timeout <= 0 {
		<-h.done
		return h.terminalOutcome(), nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return h.terminalOutcome(), nil
	case <-timer.C:
		h.logger.Warn("Controller did not exit in time, killing", "timeout", timeout.String())
		h.Kill()
		<-h.done
		return Outcome{State: TimedOut}, ErrTimeout
	}
}

func (h *Handle) terminalOutcome() Outcome {
	h.mu.Lock()
	killed := h.killed
	h.mu.Unlock()

	if killed {
		return Outcome{State: AlreadyFaulted}
	}
	return Outcome{State: Completed, ExitCode: h.cmd.ProcessState.ExitCode()}
}

// Kill forcibly terminates the process and waits for it to be reaped.
// Idempotent; a no-op once the process has already exited.
func (h *Handle) Kill() {
	h.mu.Lock()
	alreadyKilled := h.killed
	h.killed = true
	h.mu.Unlock()

	select {
	case <-h.done:
		// Already exited; nothing left to kill.
		h.mu.Lock()
		h.killed = alreadyKilled
		h.mu.Unlock()
		return
	default:
	}

	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		h.logger.Warn("Failed to kill controller process", "pid", h.cmd.Process.Pid, "error", err)
	}
	<-h.done

	// The process may have exited on its own between the done check and
	// the kill landing. The reaped wait status settles which it was: an
	// unsignalled exit is a natural completion, not a fault.
	if ws, ok := h.cmd.ProcessState.Sys().(syscall.WaitStatus); ok && !ws.Signaled() {
		h.mu.Lock()
		h.killed = alreadyKilled
		h.mu.Unlock()
	}
}

// Running reports whether the process has not yet reached a terminal state.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Pid returns the OS process id.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}
