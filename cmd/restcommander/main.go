package main

import (
	"os"

	"github.com/pouriya/restcommander-sub000/cmd"
)

func main() {
	cmd.Run(os.Args[1:])
}
