package main

import (
	"os"

	"github.com/ferdiebergado/storyboard/cmd/storyctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
