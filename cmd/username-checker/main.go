package main

import (
	"os"

	"github.com/usernamecheck/username-checker/pkg/interface/cli"
)

func main() {
	// go-flags already printed the error
	if err := cli.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
