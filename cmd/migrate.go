package cmd

import (
	"github.com/spf13/cobra"
	"video-platform/config"
	server2 "video-platform/server"
)

func migrate(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server2.RunMigrate(config)
		},
	}
}
