package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pouriya/restcommander-sub000/command"
)

// CommandCmd shows detailed information about one command.
type CommandCmd struct {
	Name string `short:"n" long:"name" description:"command path below the root, e.g. tools/uptime" positional-arg-name:"name" required:"yes"`
	JSON bool   `long:"json" description:"print result as JSON"`
}

func (c *CommandCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	root := svc.Tree().Root()
	node, err := command.Search(command.SplitPath(root.Name, c.Name), root)
	if err != nil {
		return err
	}

	if c.JSON {
		data, _ := json.MarshalIndent(node, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("Name : %s\n", node.Path())
	fmt.Printf("File : %s\n", node.FilePath)
	fmt.Printf("HTTP : %s\n", node.HTTPPath)
	if node.IsDirectory {
		fmt.Printf("Commands : %s\n", strings.Join(node.ChildNames(), ", "))
		return nil
	}
	if node.DescriptorError != nil {
		fmt.Printf("Error : %v\n", node.DescriptorError)
		return nil
	}
	descriptor := node.Descriptor
	if descriptor == nil {
		return nil
	}
	fmt.Printf("Desc : %s\n", descriptor.Description)
	if descriptor.Version != "" {
		fmt.Printf("Version : %s\n", descriptor.Version)
	}
	if descriptor.HasState() {
		fmt.Printf("State : %s\n", stateString(descriptor.State))
	}
	if len(descriptor.Options) == 0 {
		return nil
	}
	fmt.Printf("\nOptions:\n")
	for _, name := range descriptor.OptionNames() {
		fmt.Printf("  %s\n", optionString(name, descriptor.Options[name]))
	}
	return nil
}

func stateString(state *command.StateSpec) string {
	if state.Constant != nil {
		return fmt.Sprintf("constant %q", *state.Constant)
	}
	return "run with " + strings.Join(state.Options, " ")
}

func optionString(name string, option *command.Option) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" ")
	if data, err := json.Marshal(option.ValueType); err == nil {
		b.Write(data)
	}
	if option.Required {
		b.WriteString(" required")
	}
	if option.HasDefault() {
		b.WriteString(" default=")
		b.WriteString(option.Default.String())
	}
	if option.Description != "" {
		b.WriteString("\t")
		b.WriteString(option.Description)
	}
	return b.String()
}
