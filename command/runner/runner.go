package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode"

	"github.com/pouriya/restcommander-sub000/command"
)

// LevelTrace is the slog level used for TRACE lines written by commands.
const LevelTrace = slog.LevelDebug - 4

// SignaledExitCode is reported when a command was terminated by a signal.
const SignaledExitCode = 128

// Instruction is a control directive a command can emit on stderr.
type Instruction string

const InstructionReload Instruction = "reload"

// Duration holds phase timings in microseconds.
type Duration struct {
	Total        int64 `json:"total"`
	StartProcess int64 `json:"start_process"`
	WriteToStdin int64 `json:"write_to_stdin"`
	Logging      int64 `json:"logging"`
}

// Size holds byte counts of the exchanged streams.
type Size struct {
	Stdin  int `json:"stdin"`
	Stdout int `json:"stdout"`
	Stderr int `json:"stderr"`
}

// Stats describes one execution.
type Stats struct {
	Duration Duration `json:"duration"`
	Size     Size     `json:"size"`
}

// Output is the result of running a command to completion.
type Output struct {
	ExitCode     int
	Stdout       string
	Stderr       string
	Decoded      interface{}
	DecodeErr    error
	Stats        Stats
	Instructions []Instruction
}

// Result returns the decoded stdout when it is valid JSON, the raw text otherwise.
func (o *Output) Result() interface{} {
	if o.DecodeErr == nil {
		return o.Decoded
	}
	return o.Stdout
}

// HasInstruction reports whether the command emitted the given instruction.
func (o *Output) HasInstruction(instruction Instruction) bool {
	for _, candidate := range o.Instructions {
		if candidate == instruction {
			return true
		}
	}
	return false
}

// Request describes a single execution.
type Request struct {
	Path string
	Args []string
	// Input is written to stdin as a JSON object when not nil.
	Input command.Input
	Env   map[string]string
}

// Runner spawns command processes.
type Runner struct {
	logger *slog.Logger
}

// New creates a runner logging command stderr through logger.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run executes the command and waits for it to exit. There is no timeout;
// ctx is only used for log records.
func (r *Runner) Run(ctx context.Context, request *Request) (*Output, error) {
	var stdin []byte
	if request.Input != nil {
		var err error
		if stdin, err = json.Marshal(request.Input); err != nil {
			return nil, newError(ErrEncodeInput, request.Path, err)
		}
	}
	started := time.Now()
	cmd := exec.Command(request.Path, request.Args...)
	cmd.Env = environment(request.Env)
	var stdout, stderr bytes.Buffer
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, newError(ErrStartProcess, request.Path, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, newError(ErrStartProcess, request.Path, err)
	}
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, newError(ErrStartProcess, request.Path, err)
	}
	if err = cmd.Start(); err != nil {
		return nil, newError(ErrStartProcess, request.Path, err)
	}
	output := &Output{}
	output.Stats.Duration.StartProcess = time.Since(started).Microseconds()

	var wg sync.WaitGroup
	var stdoutErr, stderrErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, stdoutErr = io.Copy(&stdout, stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		_, stderrErr = io.Copy(&stderr, stderrPipe)
	}()

	writeStarted := time.Now()
	var writeErr error
	if len(stdin) > 0 {
		_, writeErr = stdinPipe.Write(stdin)
	}
	closeErr := stdinPipe.Close()
	if writeErr == nil && closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		writeErr = closeErr
	}
	output.Stats.Duration.WriteToStdin = time.Since(writeStarted).Microseconds()

	wg.Wait()
	waitErr := cmd.Wait()
	output.Stats.Duration.Total = time.Since(started).Microseconds()

	if writeErr != nil && !isBrokenPipe(writeErr) {
		return nil, newError(ErrWriteStdin, request.Path, writeErr)
	}
	if stdoutErr != nil {
		return nil, newError(ErrReadStdout, request.Path, stdoutErr)
	}
	if stderrErr != nil {
		return nil, newError(ErrReadStderr, request.Path, stderrErr)
	}
	exitCode, err := exitCodeOf(cmd, waitErr)
	if err != nil {
		return nil, newError(ErrWait, request.Path, err)
	}
	output.ExitCode = exitCode
	output.Stats.Size = Size{Stdin: len(stdin), Stdout: stdout.Len(), Stderr: stderr.Len()}

	output.Stdout = strings.TrimRightFunc(stdout.String(), unicode.IsSpace)
	output.Stderr = strings.TrimRightFunc(stderr.String(), unicode.IsSpace)

	loggingStarted := time.Now()
	output.Instructions = r.logStderr(ctx, request.Path, output.Stderr)
	output.Stats.Duration.Logging = time.Since(loggingStarted).Microseconds()

	if err := json.Unmarshal([]byte(output.Stdout), &output.Decoded); err != nil {
		output.Decoded = nil
		output.DecodeErr = err
	}
	r.logger.DebugContext(ctx, "command exited",
		"command", request.Path, "args", request.Args, "exit_code", exitCode,
		"stdin", string(stdin), "stdout", output.Stdout, "stderr", output.Stderr)
	return output, nil
}

var levels = []struct {
	tag   string
	level slog.Level
}{
	{"TRACE", LevelTrace},
	{"DEBUG", slog.LevelDebug},
	{"INFO", slog.LevelInfo},
	{"WARNING", slog.LevelWarn},
	{"WARN", slog.LevelWarn},
	{"ERROR", slog.LevelError},
}

// logStderr forwards tagged stderr lines as log records and collects
// instructions; untagged lines are logged once, concatenated, at error level.
func (r *Runner) logStderr(ctx context.Context, path, stderr string) []Instruction {
	if stderr == "" {
		return nil
	}
	var instructions []Instruction
	var residual strings.Builder
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimRight(line, "\r")
		if level, message, ok := classify(line); ok {
			r.logger.Log(ctx, level, message, "command", path)
			continue
		}
		if strings.EqualFold(strings.TrimSpace(line), string(InstructionReload)) {
			instructions = append(instructions, InstructionReload)
			continue
		}
		residual.WriteString(line)
	}
	if residual.Len() > 0 {
		r.logger.ErrorContext(ctx, "command stderr", "command", path, "stderr", residual.String())
	}
	return instructions
}

func classify(line string) (slog.Level, string, bool) {
	for _, candidate := range levels {
		if strings.HasPrefix(line, candidate.tag) {
			return candidate.level, strings.TrimLeftFunc(line[len(candidate.tag):], unicode.IsSpace), true
		}
	}
	return 0, "", false
}

func exitCodeOf(cmd *exec.Cmd, waitErr error) (int, error) {
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return 0, waitErr
		}
	}
	state := cmd.ProcessState
	if state == nil {
		return 0, fmt.Errorf("process state unavailable")
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return SignaledExitCode, nil
	}
	if code := state.ExitCode(); code >= 0 {
		return code, nil
	}
	return SignaledExitCode, nil
}

func environment(overlay map[string]string) []string {
	env := os.Environ()
	for key, value := range overlay {
		env = append(env, key+"="+value)
	}
	return env
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}
