package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/discovery"
)

func newDiscoverCommand() *cobra.Command {
	var topK int
	var toolsConfig string
	var toolsCache string

	cmd := &cobra.Command{
		Use:   "discover <query>",
		Short: "Query the discovery index built from the registered node catalog",
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

			candidates := discovery.BuildNodes(reg)
			matches, err := discovery.Query(context.Background(), candidates, args[0], discovery.Options{TopK: topK})
			if err != nil {
				return err
			}

			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", m.Name, m.Kind)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 5, "number of matches to return")
	cmd.Flags().StringVar(&toolsConfig, "tools", "", "path to a JSON array of tool server configs to discover and register before querying")
	cmd.Flags().StringVar(&toolsCache, "tools-cache", ".loom/tools-cache.json", "path to the tool discovery cache")
	return cmd
}
