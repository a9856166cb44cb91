package cmd

import (
	"fmt"

	"github.com/pouriya/restcommander-sub000/command"
)

// ListCommandsCmd prints every command below the root directory.
type ListCommandsCmd struct{}

func (c *ListCommandsCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	svc.Tree().Root().Walk(func(node *command.Node) {
		switch {
		case node.IsDirectory:
			return
		case node.DescriptorError != nil:
			fmt.Printf("%s\t<invalid: %v>\n", node.Path(), node.DescriptorError)
		case node.Descriptor != nil:
			fmt.Printf("%s\t%s\n", node.Path(), node.Descriptor.Description)
		default:
			fmt.Printf("%s\n", node.Path())
		}
	})
	return nil
}
