// Command tracked inspects and configures projects that use tracked state.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/tracked/cmd/tracked/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
