package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pouriya/restcommander-sub000/mcp"
)

// ToolCmd prints metadata & input schema for a single tool.
type ToolCmd struct {
	Name string `short:"n" long:"name" description:"tool name (command path below the root)" positional-arg-name:"name" required:"yes"`
	JSON bool   `long:"json" description:"print result as JSON"`
}

func (c *ToolCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}

	for _, t := range mcp.New(svc).Tools() {
		if t.Name != c.Name {
			continue
		}
		if c.JSON {
			data, _ := json.MarshalIndent(t, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		description := ""
		if t.Description != nil {
			description = *t.Description
		}
		fmt.Printf("Name : %s\n", t.Name)
		fmt.Printf("Desc : %s\n", description)
		js, _ := json.MarshalIndent(t.InputSchema, "", "  ")
		fmt.Printf("InputSchema:\n%s\n", string(js))
		return nil
	}
	return fmt.Errorf("tool %q not found", c.Name)
}
