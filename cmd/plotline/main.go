// Command plotline is a dependency-aware personal task planner.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/plotline/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
