package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/tracked/cmd/tracked/internal/project"
	"github.com/go-drift/tracked/pkg/config"
	"github.com/go-drift/tracked/pkg/core"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Write a tracked.yaml configuration",
		Long: `Write tracked.yaml at the root of the current Go module.

The optional mode argument sets state.default_mode, the mode of slots
declared without an explicit one. It is one of shallow, deep or pure and
defaults to deep. An existing tracked.yaml is kept unless --force is given.

Examples:
  tracked init
  tracked init pure
  tracked init shallow --force`,
		Usage: "tracked init [mode] [--force]",
		Run:   runInit,
	})
}

func runInit(args []string) error {
	force := slices.Contains(args, "--force")
	args = slices.DeleteFunc(slices.Clone(args), func(a string) bool { return a == "--force" })
	if len(args) > 1 {
		return fmt.Errorf("too many arguments\n\nUsage: tracked init [mode] [--force]")
	}

	mode := core.Deep
	if len(args) == 1 {
		parsed, err := core.ParseMode(args[0])
		if err != nil {
			return err
		}
		mode = parsed
	}

	cwd, err := getwd()
	if err != nil {
		return err
	}
	root, err := project.FindRoot(cwd)
	if err != nil {
		return err
	}

	path := filepath.Join(root, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	debug := true
	cfg := config.Config{
		State:       config.StateConfig{DefaultMode: mode.String()},
		Diagnostics: config.DiagnosticsConfig{Level: "warn", Debug: &debug},
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}

	fmt.Fprintf(stdout, "Wrote %s (default_mode: %s)\n", path, mode)
	return nil
}
