package commands

import (
	"fmt"
	"os"
	"subsctl/internal/api"
	"subsctl/internal/config"
	"subsctl/internal/models"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the subscriptions API",
	Long:  "Authenticate with the server and store the token used by the other commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		globalConfigDir, err := config.GetGlobalConfigDir()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(globalConfigDir, 0755); err != nil {
			return fmt.Errorf("error creating global config directory: %w", err)
		}

		if globalConfig.ServerURL == "" {
			return fmt.Errorf("server URL not configured")
		}

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			fmt.Print("Email: ")
			fmt.Scanln(&email)
		}

		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(os.Stdin.Fd())
		if err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		fmt.Println() // Add a newline after password input

		tokenStore := models.NewTokenStore(globalConfigDir)
		client := api.NewClient(globalConfig.ServerURL, tokenStore, clientOptions()...)
		authResult, err := client.Login(contextOrBackground(cmd.Context()), email, string(passwordBytes))
		if err != nil {
			return fmt.Errorf("login failed: %s", api.ErrorMessage(err))
		}

		globalConfig.UserID = authResult.UserID
		globalConfig.Email = authResult.Email

		if err := config.UpdateGlobalConfig(func(cfg *config.Config) error {
			cfg.UserID = authResult.UserID
			cfg.Email = authResult.Email
			return nil
		}); err != nil {
			return fmt.Errorf("error saving global config: %w", err)
		}

		logger.Info("Logged in", "email", authResult.Email)
		fmt.Printf("Successfully logged in as %s\n", authResult.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from the subscriptions API",
	Long:  "Remove saved authentication credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		globalConfigDir, err := config.GetGlobalConfigDir()
		if err != nil {
			return err
		}

		tokenStore := models.NewTokenStore(globalConfigDir)
		client := api.NewClient(globalConfig.ServerURL, tokenStore, clientOptions()...)
		if err := client.Logout(contextOrBackground(cmd.Context())); err != nil {
			// The local token is gone either way
			fmt.Println("Warning:", api.ErrorMessage(err))
		}

		globalConfig.UserID = ""
		globalConfig.Email = ""

		if err := config.UpdateGlobalConfig(func(cfg *config.Config) error {
			cfg.UserID = ""
			cfg.Email = ""
			return nil
		}); err != nil {
			return fmt.Errorf("error saving global config: %w", err)
		}

		fmt.Println("Successfully logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current user information",
	Long:  "Display information about the currently logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			printClientError("creating client", err)
			return nil
		}

		user, err := client.CurrentUser(contextOrBackground(cmd.Context()))
		if err != nil {
			printClientError("fetching account", err)
			return nil
		}

		fmt.Printf("Logged in as: %s\n", user.Email)
		if user.Name != "" {
			fmt.Printf("Name: %s\n", user.Name)
		}
		fmt.Printf("User ID: %d\n", user.ID)
		fmt.Printf("Server: %s\n", globalConfig.ServerURL)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().String("email", "", "Email to log in with (prompted when omitted)")
}
