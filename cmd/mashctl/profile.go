package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alimgiray/gmash/internal/server"
	"github.com/alimgiray/gmash/internal/services"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the merged profile summary as JSON",
	Example: `  mashctl profile --gh octocat --bb tutorials
  mashctl profile --gh octocat --xlsx profile.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		githubName, _ := cmd.Flags().GetString("gh")
		bitbucketName, _ := cmd.Flags().GetString("bb")
		xlsxPath, _ := cmd.Flags().GetString("xlsx")

		mashService, err := server.NewMashService(cfg)
		if err != nil {
			return err
		}
		summary := mashService.Mash(cmd.Context(), githubName, bitbucketName)

		if xlsxPath != "" {
			f, err := os.Create(xlsxPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", xlsxPath, err)
			}
			defer f.Close()
			return services.NewExportService().WriteXLSX(summary, f)
		}

		jsonData, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().String("gh", "", "GitHub username")
	profileCmd.Flags().String("bb", "", "Bitbucket username")
	profileCmd.Flags().String("xlsx", "", "Write the summary to this XLSX file instead of printing JSON")
}
