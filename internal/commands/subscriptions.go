package commands

import (
	"fmt"
	"io"
	"os"
	"subsctl/internal/models"
	"subsctl/internal/ui"
	"subsctl/internal/util"

	"github.com/spf13/cobra"
)

// showCmd
var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := util.ParseID(args[0])
		if !ok {
			fmt.Println("Error:", fmt.Errorf("%w: %s", models.ErrInvalidSubscriptionID, args[0]))
			return nil
		}

		client, err := newClient()
		if err != nil {
			printClientError("creating client", err)
			return nil
		}

		sub, err := client.GetSubscription(contextOrBackground(cmd.Context()), id)
		if err != nil {
			printClientError("getting subscription", err)
			return nil
		}

		printSubscription(os.Stdout, sub, displayFormat())
		return nil
	},
}

// deleteCmd
var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := util.ParseID(args[0])
		if !ok {
			fmt.Println("Error:", fmt.Errorf("%w: %s", models.ErrInvalidSubscriptionID, args[0]))
			return nil
		}
		force, _ := cmd.Flags().GetBool("force")

		if !force {
			fmt.Printf("Are you sure you want to delete subscription #%d? [y/N]: ", id)
			var confirm string
			_, err := fmt.Scanln(&confirm)
			if err != nil {
				fmt.Println()
				fmt.Println("Operation cancelled.")
				return nil
			}
			if confirm != "y" && confirm != "Y" {
				fmt.Println("Operation cancelled.")
				return nil
			}
		}

		client, err := newClient()
		if err != nil {
			printClientError("creating client", err)
			return nil
		}

		if err := client.DeleteSubscription(contextOrBackground(cmd.Context()), id); err != nil {
			printClientError("deleting subscription", err)
			return nil
		}

		logger.Info("Subscription deleted", "id", id)
		fmt.Printf("Subscription #%d deleted successfully\n", id)
		return nil
	},
}

func printSubscription(w io.Writer, sub *models.Subscription, format ui.Format) {
	fmt.Fprintf(w, "Subscription #%d:\n", sub.ID)
	fmt.Fprintf(w, "  Member: %s\n", ui.MemberLabel(sub.Member))
	if sub.Member.Email != "" {
		fmt.Fprintf(w, "  Email: %s\n", sub.Member.Email)
	}
	fmt.Fprintf(w, "  Package: %s\n", format.PackageLabel(*sub))
	fmt.Fprintf(w, "  Service: %s\n", sub.Service.Name)
	fmt.Fprintf(w, "  Status: %s\n", statusColor(sub.Status)(sub.Status.String()))
	fmt.Fprintf(w, "  Expiration: %s\n", format.Date(sub.ExpiresAt))
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().Bool("force", false, "Delete without asking for confirmation")
}
