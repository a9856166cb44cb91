package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pouriya/restcommander-sub000/auth"
	"github.com/pouriya/restcommander-sub000/command"
	"github.com/pouriya/restcommander-sub000/command/runner"
	"github.com/pouriya/restcommander-sub000/report"
)

// injectedPrefix marks values the adapters add to every request.
const injectedPrefix = "RESTCOMMANDER_"

// Request is one command invocation coming from a protocol adapter.
type Request struct {
	// Path is the slash path of the command below the root.
	Path  string
	Input command.Input
	// Source identifies the caller in audit records, usually the client address.
	Source string
}

// Result is a completed invocation.
type Result struct {
	Node   *command.Node
	Input  command.Input
	Output *runner.Output
}

// Run resolves, validates, executes and reports a command. Validated options
// are written to stdin as JSON; declared options and configuration constants
// are exported as environment variables.
func (s *Service) Run(ctx context.Context, request *Request) (*Result, error) {
	root := s.tree.Root()
	node, err := command.SearchLeaf(command.SplitPath(root.Name, request.Path), root)
	if err != nil {
		return nil, err
	}
	input, err := command.CheckInput(node, request.Input)
	if err != nil {
		return nil, err
	}
	output, err := s.runner.Run(ctx, &runner.Request{
		Path:  node.FilePath,
		Input: input,
		Env:   Environment(node.Descriptor, input, s.Constants()),
	})
	s.audit(request.Source, report.ContextRun, node, output, err)
	if err != nil {
		return nil, err
	}
	s.honour(output)
	return &Result{Node: node, Input: input, Output: output}, nil
}

// State returns the state of a command: its constant, or the output of the
// executable run with the configured argv and no stdin.
func (s *Service) State(ctx context.Context, location, source string, env command.Input) (*Result, error) {
	root := s.tree.Root()
	node, err := command.SearchLeaf(command.SplitPath(root.Name, location), root)
	if err != nil {
		return nil, err
	}
	statePath := "/" + path.Join(node.Segments...)
	if node.Descriptor == nil {
		return nil, &command.LookupError{Path: statePath, Kind: command.ErrNoDescriptor}
	}
	if !node.Descriptor.HasState() {
		return nil, &command.LookupError{Path: statePath, Kind: command.ErrNoState}
	}
	state := node.Descriptor.State
	if state.Constant != nil {
		output := &runner.Output{Stdout: *state.Constant, Decoded: *state.Constant}
		s.audit(source, report.ContextState, node, output, nil)
		return &Result{Node: node, Output: output}, nil
	}
	output, err := s.runner.Run(ctx, &runner.Request{
		Path: node.FilePath,
		Args: state.Options,
		Env:  Environment(node.Descriptor, env, s.Constants()),
	})
	s.audit(source, report.ContextState, node, output, err)
	if err != nil {
		return nil, err
	}
	s.honour(output)
	return &Result{Node: node, Output: output}, nil
}

// Reload rebuilds the command tree.
func (s *Service) Reload() error {
	return s.tree.Reload()
}

// Constants returns the configuration options exported to commands.
func (s *Service) Constants() command.Input {
	return s.config.Constants()
}

// SetPassword stores the SHA-512 digest of password in the configured
// password file and makes it effective immediately.
func (s *Service) SetPassword(password string) error {
	if password == "" {
		return &PasswordError{Err: ErrEmptyPassword}
	}
	filename := s.config.Server.PasswordFile
	if filename == "" {
		return &PasswordError{Err: ErrNoPasswordFile}
	}
	hash := auth.HashPassword(password)
	if err := os.WriteFile(filename, []byte(hash), 0o600); err != nil {
		return &PasswordError{Err: fmt.Errorf("could not save new password to configured password file: %w", err)}
	}
	s.gate.SetPasswordHash(hash)
	s.logger.Info("password changed", "file", filename)
	return nil
}

func (s *Service) honour(output *runner.Output) {
	if !output.HasInstruction(runner.InstructionReload) {
		return
	}
	if err := s.tree.Reload(); err != nil {
		s.logger.Error("could not reload commands on request", "error", err)
	}
}

func (s *Service) audit(source string, context report.Context, node *command.Node, output *runner.Output, err error) {
	location := "/" + node.Path()
	var info string
	switch {
	case err != nil:
		info = fmt.Sprintf("%s failed: %v", location, err)
	case context == report.ContextState && node.Descriptor.State.Constant != nil:
		info = fmt.Sprintf("%s returned constant state", location)
	default:
		info = fmt.Sprintf("%s exited with code %d", location, output.ExitCode)
	}
	s.reporter.Report(source, context, info, time.Now())
}

// Environment renders the variables a command sees on top of the inherited
// process environment: configuration constants, injected RESTCOMMANDER_*
// request values and options declared by descriptor. Other input keys are
// not exported.
func Environment(descriptor *command.Descriptor, input, constants command.Input) map[string]string {
	ret := make(map[string]string, len(constants)+len(input))
	set := func(name string, value command.Value) {
		if name == "" || strings.ContainsAny(name, "=\x00") {
			return
		}
		ret[name] = value.String()
	}
	for name, value := range constants {
		set(name, value)
	}
	for name, value := range input {
		if _, ok := constants[name]; ok {
			continue
		}
		if strings.HasPrefix(name, injectedPrefix) {
			set(name, value)
		}
	}
	if descriptor != nil {
		for name := range descriptor.Options {
			if value, ok := input[name]; ok {
				set(name, value)
			}
		}
	}
	return ret
}
