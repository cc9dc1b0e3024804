package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"subsctl/internal/config"
	"time"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage subsctl configuration",
	Long:  "View and update subsctl configuration settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get configuration value",
	Long:  "Display specific configuration value or all configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := globalConfig

		// If no argument is provided, show all config
		if len(args) == 0 {
			fmt.Println("Current configuration:")
			fmt.Printf("Server URL: %s\n", cfg.ServerURL)
			fmt.Printf("Panel URL: %s\n", cfg.PanelURL)
			fmt.Printf("Per page: %d\n", cfg.PerPage)
			fmt.Printf("Currency: %s\n", cfg.CurrencySymbol)
			fmt.Printf("Date format: %s\n", cfg.DateFormat)
			fmt.Printf("Timezone: %s\n", cfg.Timezone)
			fmt.Printf("Log level: %s\n", cfg.LogLevel)
			if cfg.Email != "" {
				fmt.Printf("Email: %s\n", cfg.Email)
			}
			return nil
		}

		value, err := configValue(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	Long:  "Update configuration settings like the server URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Update configuration based on provided flags
		configUpdated := false
		err := config.UpdateGlobalConfig(func(cfg *config.Config) error {
			for _, flag := range settableKeys {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				value, _ := cmd.Flags().GetString(flag)
				oldValue, _ := configValue(cfg, flag)
				if err := setConfigValue(cfg, flag, value); err != nil {
					return err
				}
				// Keep the running process in step with the file
				_ = setConfigValue(globalConfig, flag, value)
				fmt.Printf("%s updated: %s -> %s\n", flag, oldValue, value)
				configUpdated = true
			}
			if !configUpdated {
				return errNoChanges
			}
			return nil
		})

		switch {
		case errors.Is(err, errNoChanges):
			fmt.Println("No changes were made to the configuration.")
		case err != nil:
			return fmt.Errorf("failed to save configuration: %w", err)
		default:
			fmt.Println("Configuration updated successfully.")
		}

		return nil
	},
}

// errNoChanges aborts a config update that has nothing to write
var errNoChanges = errors.New("no configuration changes")

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show configuration file paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		globalConfigDir, err := config.GetGlobalConfigDir()
		if err != nil {
			return err
		}
		paths := []struct{ label, path string }{
			{"Config file", filepath.Join(globalConfigDir, "config.json")},
			{"Auth token", filepath.Join(globalConfigDir, ".auth_token")},
			{"Log file", filepath.Join(globalConfigDir, "subsctl.log")},
		}

		fmt.Printf("Config directory: %s\n", globalConfigDir)
		for _, p := range paths {
			state := "exists"
			if _, err := os.Stat(p.path); os.IsNotExist(err) {
				state = "does not exist"
			}
			fmt.Printf("- %s: %s (%s)\n", p.label, p.path, state)
		}
		return nil
	},
}

// settableKeys are the keys accepted by 'config get' and flags of 'config set'
var settableKeys = []string{"server-url", "panel-url", "per-page", "currency", "date-format", "timezone", "log-level", "timeout"}

func configValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "server-url":
		return cfg.ServerURL, nil
	case "panel-url":
		return cfg.PanelURL, nil
	case "per-page":
		return strconv.Itoa(cfg.PerPage), nil
	case "currency":
		return cfg.CurrencySymbol, nil
	case "date-format":
		return cfg.DateFormat, nil
	case "timezone":
		return cfg.Timezone, nil
	case "log-level":
		return cfg.LogLevel, nil
	case "timeout":
		return cfg.Timeout.String(), nil
	case "email":
		return cfg.Email, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "server-url":
		cfg.ServerURL = strings.TrimRight(value, "/")
	case "panel-url":
		cfg.PanelURL = strings.TrimRight(value, "/")
	case "per-page":
		perPage, err := strconv.Atoi(value)
		if err != nil || perPage < 1 {
			return fmt.Errorf("invalid per-page %q", value)
		}
		cfg.PerPage = perPage
	case "currency":
		cfg.CurrencySymbol = value
	case "date-format":
		cfg.DateFormat = value
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		cfg.Timezone = value
	case "log-level":
		cfg.LogLevel = value
	case "timeout":
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		cfg.Timeout = timeout
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathsCmd)

	configSetCmd.Flags().String("server-url", "", "Set API server URL")
	configSetCmd.Flags().String("panel-url", "", "Set web panel URL used for edit links")
	configSetCmd.Flags().String("per-page", "", "Set subscriptions per page")
	configSetCmd.Flags().String("currency", "", "Set currency symbol")
	configSetCmd.Flags().String("date-format", "", "Set Go date layout for expirations")
	configSetCmd.Flags().String("timezone", "", "Set timezone for dates, e.g. Europe/Berlin or Local")
	configSetCmd.Flags().String("log-level", "", "Set log level (debug, info, warn, error)")
	configSetCmd.Flags().String("timeout", "", "Set API request timeout, e.g. 30s")
}
