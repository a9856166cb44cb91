package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pouriya/restcommander-sub000/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	location := filepath.Join(t.TempDir(), "script")
	require.NoError(t, os.WriteFile(location, []byte("#!/bin/sh\n"+body), 0o755))
	return location
}

func TestRunner_Run(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		args         []string
		input        command.Input
		env          map[string]string
		exitCode     int
		stdout       string
		result       interface{}
		instructions []Instruction
	}{
		{
			name:     "echo stdin",
			body:     "cat\n",
			input:    command.Input{"name": command.String("x")},
			stdout:   `{"name":"x"}`,
			result:   map[string]interface{}{"name": "x"},
			exitCode: 0,
		},
		{
			name:     "plain text trimmed",
			body:     "printf 'hello\\n\\n'\n",
			stdout:   "hello",
			result:   "hello",
			exitCode: 0,
		},
		{
			name:     "exit code",
			body:     "echo failed; exit 3\n",
			stdout:   "failed",
			result:   "failed",
			exitCode: 3,
		},
		{
			name:     "args",
			body:     "echo \"$1\"\n",
			args:     []string{"--state"},
			stdout:   "--state",
			result:   "--state",
			exitCode: 0,
		},
		{
			name:     "env overlay",
			body:     "echo \"$RESTCOMMANDER_TEST\"\n",
			env:      map[string]string{"RESTCOMMANDER_TEST": "42"},
			stdout:   "42",
			result:   float64(42),
			exitCode: 0,
		},
		{
			name:         "reload instruction",
			body:         "echo reload >&2\necho done\n",
			stdout:       "done",
			result:       "done",
			instructions: []Instruction{InstructionReload},
		},
		{
			name:     "killed by signal",
			body:     "kill -9 $$\n",
			exitCode: SignaledExitCode,
			result:   "",
		},
		{
			name:     "ignores stdin",
			body:     "exit 0\n",
			input:    command.Input{"big": command.String(string(bytes.Repeat([]byte("x"), 1<<20)))},
			exitCode: 0,
			result:   "",
		},
	}

	r := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			location := writeScript(t, tc.body)
			output, err := r.Run(context.Background(), &Request{Path: location, Args: tc.args, Input: tc.input, Env: tc.env})
			require.NoError(t, err)
			assert.Equal(t, tc.exitCode, output.ExitCode)
			assert.Equal(t, tc.stdout, output.Stdout)
			assert.Equal(t, tc.result, output.Result())
			assert.Equal(t, tc.instructions, output.Instructions)
		})
	}
}

func TestRunner_Stats(t *testing.T) {
	location := writeScript(t, "cat\necho err >&2\n")
	r := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	output, err := r.Run(context.Background(), &Request{Path: location, Input: command.Input{"a": command.Integer(1)}})
	require.NoError(t, err)
	assert.Equal(t, len(`{"a":1}`), output.Stats.Size.Stdin)
	assert.Equal(t, len(`{"a":1}`), output.Stats.Size.Stdout)
	assert.Equal(t, len("err\n"), output.Stats.Size.Stderr)
	assert.GreaterOrEqual(t, output.Stats.Duration.Total, output.Stats.Duration.StartProcess)
}

func TestRunner_StderrLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: LevelTrace}))
	location := writeScript(t, "echo 'INFO  started' >&2\necho 'WARNING careful' >&2\necho 'TRACE deep' >&2\necho 'free' >&2\necho 'form' >&2\n")

	_, err := New(logger).Run(context.Background(), &Request{Path: location})
	require.NoError(t, err)

	logged := buf.String()
	assert.Contains(t, logged, `level=INFO msg=started`)
	assert.Contains(t, logged, `level=WARN msg=careful`)
	assert.Contains(t, logged, `msg=deep`)
	assert.Contains(t, logged, `stderr=freeform`)
}

func TestRunner_StartFailure(t *testing.T) {
	_, err := New(nil).Run(context.Background(), &Request{Path: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStartProcess))
	var runErr *Error
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, 1004, runErr.Code())
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		line    string
		level   slog.Level
		message string
		ok      bool
	}{
		{"ERROR boom", slog.LevelError, "boom", true},
		{"WARN x", slog.LevelWarn, "x", true},
		{"WARNING y", slog.LevelWarn, "y", true},
		{"DEBUG", slog.LevelDebug, "", true},
		{"TRACE t", LevelTrace, "t", true},
		{"info lowercase", 0, "", false},
		{"something else", 0, "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			level, message, ok := classify(tc.line)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.message, message)
		})
	}
}
