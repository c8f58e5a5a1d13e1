// Command pfsc compiles Product Family Specifications.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pfsc/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Errors carrying a code were already reported by the command.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ErrCode == "" {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitErr.Code)
	}
	// Cobra usage errors: unknown command, bad flag, wrong argument count.
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(cli.ExitCommandError)
}
