package cmd

import (
	"github.com/spf13/cobra"
	"video-platform/config"
	server2 "video-platform/server"
)

func worker(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "consume video processing jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server2.RunWorker(config)
		},
	}
}
