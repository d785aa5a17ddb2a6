package main

import (
	"os"

	"github.com/riddhika-19/openboxcodelearn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
