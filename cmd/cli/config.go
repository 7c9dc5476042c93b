package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, err := defaultConfigPath()
		if err != nil {
			return err
		}
		if err := writeDefaultConfig(path, force); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}
		fmt.Printf("Save folder:  %s\n", config.Download.SaveDir)
		fmt.Printf("Logs folder:  %s\n", config.Download.LogsDir)
		fmt.Printf("yt-dlp:       %s\n", config.Engine.YTDLPBinary)
		fmt.Printf("ffmpeg dir:   %s\n", config.Engine.FFmpegDir)
		fmt.Printf("History:      %s (last %d)\n", config.History.DatabasePath, config.History.MaxEntries)
		fmt.Printf("Server:       %s:%d\n", config.Server.Host, config.Server.Port)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// defaultConfigPath is --config, or ~/.ytfile/config.yaml which LoadConfig searches
func defaultConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	return filepath.Join(home, ".ytfile", "config.yaml"), nil
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return app.SaveConfig(domain.DefaultConfig(), path)
}
