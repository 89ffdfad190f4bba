package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/tracked/cmd/tracked/internal/project"
	"github.com/go-drift/tracked/pkg/config"
)

// getwd returns the directory commands start from. Tests replace it.
var getwd = os.Getwd

func init() {
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show module and configuration status",
		Long: `Show the Go module the current directory belongs to and the resolved
tracked configuration.

Reports the required tracked version, any replace directive pointing it
elsewhere, and the slot mode and diagnostics settings read from tracked.yaml
at the module root. Missing settings show their defaults.`,
		Usage: "tracked status",
		Run:   runStatus,
	})
}

func runStatus(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v\n\nUsage: tracked status", args)
	}

	cwd, err := getwd()
	if err != nil {
		return err
	}
	root, err := project.FindRoot(cwd)
	if err != nil {
		return err
	}
	mod, err := project.Load(root)
	if err != nil {
		return err
	}
	resolved, err := config.Resolve(root)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Module:  %s\n", mod.Path)
	fmt.Fprintf(stdout, "Root:    %s\n", mod.Root)
	if mod.GoVersion != "" {
		fmt.Fprintf(stdout, "Go:      %s\n", mod.GoVersion)
	}
	switch {
	case mod.Path == project.TrackedPath:
		fmt.Fprintln(stdout, "Tracked: (this module)")
	case mod.Tracked != "":
		fmt.Fprintf(stdout, "Tracked: %s\n", mod.Tracked)
	default:
		fmt.Fprintln(stdout, "Tracked: not required")
	}
	if mod.Replacement != "" {
		fmt.Fprintf(stdout, "         replaced by %s\n", mod.Replacement)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Config:")
	fmt.Fprintf(stdout, "  %-14s %s\n", "default_mode:", resolved.DefaultMode)
	fmt.Fprintf(stdout, "  %-14s %s\n", "level:", resolved.Level)
	fmt.Fprintf(stdout, "  %-14s %t\n", "verbose:", resolved.Verbose)
	fmt.Fprintf(stdout, "  %-14s %t\n", "debug:", resolved.Debug)
	return nil
}
