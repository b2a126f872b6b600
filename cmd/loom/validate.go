package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/registry"
)

func newValidateCommand() *cobra.Command {
	var toolsConfig string
	var toolsCache string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a workflow document without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveProfile()
			if err != nil {
				return err
			}
			env := config.LoadRuntimeEnv()

			reg, err := buildRegistry(cfg, env, rootLogger())
			if err != nil {
				return err
			}
			if toolsConfig != "" {
				if err := registerToolServers(context.Background(), reg, toolsConfig, toolsCache, cfg.HTTPTimeout); err != nil {
					return err
				}
			}

			wf, err := loadWorkflow(args[0], registry.NewIRResolver(reg))
			if err != nil {
				return err
			}

			fmt.Printf("%s: valid (%d nodes, %d edges)\n", args[0], len(wf.Nodes), len(wf.Edges))
			return nil
		},
	}

	cmd.Flags().StringVar(&toolsConfig, "tools", "", "path to a JSON array of tool server configs to discover and register before validating")
	cmd.Flags().StringVar(&toolsCache, "tools-cache", ".loom/tools-cache.json", "path to the tool discovery cache")
	return cmd
}
