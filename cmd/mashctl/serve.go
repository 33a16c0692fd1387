package main

import (
	"github.com/alimgiray/gmash/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the /mash endpoint over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Server.Port = port
		}
		return server.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Listen port (overrides PORT)")
}
