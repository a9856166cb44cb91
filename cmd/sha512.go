package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pouriya/restcommander-sub000/auth"
)

// Sha512Cmd prints the digest to put in server.password_sha512 or the
// password file.
type Sha512Cmd struct {
	Bcrypt bool `long:"bcrypt" description:"print a bcrypt hash instead"`
	Args   struct {
		Input string `positional-arg-name:"input" description:"text to hash, read from stdin when empty"`
	} `positional-args:"yes"`
}

func (c *Sha512Cmd) Execute(_ []string) error {
	input := c.Args.Input
	if input == "" {
		fmt.Fprint(os.Stderr, "Enter input text: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("could not read input: %w", err)
		}
		input = line
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("input is empty")
	}
	if c.Bcrypt {
		hash, err := auth.HashPasswordBcrypt(input)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	}
	fmt.Println(auth.HashPassword(input))
	return nil
}
