// Command loom is a thin reference runner for the packages under pkg/:
// "loom run <file>" compiles and executes a workflow, "loom validate
// <file>" runs the IR validator without executing anything, and "loom
// discover <query>" queries the discovery index built from the built-in
// node catalog. None of C1-C13's logic lives here — per spec.md §6, the
// spec's own agent-facing CLI surface is external to this repository;
// this binary exists only so the core packages have a runnable front
// door for manual testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/logging"
)

// profileFlag selects one of pkg/config's presets; it is the one piece of
// config this reference CLI exposes directly. No command loads a config
// file, so every other Allow*/Max* field keeps the chosen preset's value.
var profileFlag string

func resolveProfile() (*config.Config, error) {
	switch profileFlag {
	case "", "default":
		return config.Default(), nil
	case "development":
		return config.Development(), nil
	case "production":
		return config.Production(), nil
	case "testing":
		return config.Testing(), nil
	default:
		return nil, fmt.Errorf("unknown --profile %q (want default, development, production, or testing)", profileFlag)
	}
}

// rootLogger builds the process-wide logger: pretty, debug-level text
// under --profile development, JSON at info level otherwise.
func rootLogger() *logging.Logger {
	cfg := logging.DefaultConfig()
	if profileFlag == "development" {
		cfg.Level = "debug"
		cfg.Pretty = true
	}
	return logging.New(cfg)
}

func main() {
	root := &cobra.Command{
		Use:           "loom",
		Short:         "Reference runner for the loom workflow engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&profileFlag, "profile", "default",
		"network/security profile: default, development, production, or testing")

	root.AddCommand(newRunCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newDiscoverCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "loom:", err)
		rootLogger().WithError(err).Error("loom: command failed")
		os.Exit(exitCodeForError(err))
	}
}
