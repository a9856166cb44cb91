package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pouriya/restcommander-sub000/command"
	"github.com/pouriya/restcommander-sub000/command/runner"
	"github.com/pouriya/restcommander-sub000/service"
)

// ExecCmd runs a command through the same resolve, validate and execute
// pipeline the servers use. Options are supplied inline via -i/--input or
// loaded from a JSON file via --file.
type ExecCmd struct {
	Name   string `short:"n" long:"name" positional-arg-name:"command" description:"command path below the root" required:"yes"`
	Inline string `short:"i" long:"input" description:"inline JSON options (object)"`
	File   string `long:"file" description:"path to JSON file with options (use - for stdin)"`
	JSON   bool   `long:"json" description:"print exit code, result and statistics as JSON"`
}

func (c *ExecCmd) Execute(_ []string) error {
	if c.Inline != "" && c.File != "" {
		return fmt.Errorf("-i/--input and --file are mutually exclusive")
	}
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	options, err := readOptions(c.Inline, c.File)
	if err != nil {
		return err
	}
	input := svc.Constants().Merge(options)

	result, err := svc.Run(context.Background(), &service.Request{Path: c.Name, Input: input, Source: "cli"})
	if err != nil {
		return err
	}
	return printOutput(result.Output, c.JSON)
}

// StateCmd prints the state of a command.
type StateCmd struct {
	Name string `short:"n" long:"name" positional-arg-name:"command" description:"command path below the root" required:"yes"`
	JSON bool   `long:"json" description:"print exit code, result and statistics as JSON"`
}

func (c *StateCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	result, err := svc.State(context.Background(), c.Name, "cli", svc.Constants())
	if err != nil {
		return err
	}
	return printOutput(result.Output, c.JSON)
}

func readOptions(inline, file string) (command.Input, error) {
	var data []byte
	switch {
	case inline != "":
		data = []byte(inline)
	case file == "-":
		var err error
		if data, err = io.ReadAll(os.Stdin); err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
	case file != "":
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
	default:
		return command.Input{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return command.InputOf(raw)
}

func printOutput(output *runner.Output, asJSON bool) error {
	if asJSON {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"exit_code":  output.ExitCode,
			"result":     output.Result(),
			"statistics": output.Stats,
		}, "", "  ")
		fmt.Println(string(data))
	} else if output.Stdout != "" {
		fmt.Println(output.Stdout)
	}
	if output.ExitCode != 0 {
		return fmt.Errorf("command exited with code %d", output.ExitCode)
	}
	return nil
}
