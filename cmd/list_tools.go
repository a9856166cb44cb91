package cmd

import (
	"fmt"

	"github.com/pouriya/restcommander-sub000/mcp"
)

// ListToolsCmd prints every MCP tool derived from the command tree.
type ListToolsCmd struct{}

func (c *ListToolsCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}

	for _, t := range mcp.New(svc).Tools() {
		desc := ""
		if t.Description != nil {
			desc = *t.Description
		}
		fmt.Printf("%s\t%s\n", t.Name, desc)
	}
	return nil
}
