package cmd

import (
	"github.com/spf13/cobra"
	"video-platform/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "video-platform",
		Short:        "video sharing backend",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(server(config), worker(config), migrate(config))
	return rootCmd
}
