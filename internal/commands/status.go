package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"subsctl/internal/models"

	"github.com/spf13/cobra"
)

// pageLister is the part of the API client the status summary needs
type pageLister interface {
	ListSubscriptions(ctx context.Context, filters models.Filters) (*models.SubscriptionPage, error)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show subscription counts by status",
	Long:  `Display the server you are connected to and how many subscriptions it holds in each status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			printClientError("creating client", err)
			return nil
		}

		fmt.Printf("On server: %s\n", globalConfig.ServerURL)
		if globalConfig.Email != "" {
			fmt.Printf("Logged in as: %s\n", globalConfig.Email)
		}
		fmt.Println()

		if err := printStatusSummary(contextOrBackground(cmd.Context()), os.Stdout, client); err != nil {
			printClientError("counting subscriptions", err)
		}
		return nil
	},
}

// printStatusSummary asks the server for one item per status and reports the totals
func printStatusSummary(ctx context.Context, w io.Writer, lister pageLister) error {
	all, err := lister.ListSubscriptions(ctx, models.Filters{Page: 1, PerPage: 1})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Subscriptions:")
	for _, status := range models.Statuses {
		page, err := lister.ListSubscriptions(ctx, models.Filters{Page: 1, PerPage: 1, Status: status})
		if err != nil {
			return err
		}
		label := fmt.Sprintf("%-10s", status.String()+":")
		fmt.Fprintf(w, "\t%s %d\n", statusColor(status)(label), page.Meta.Total)
	}
	fmt.Fprintf(w, "\t%-10s %d\n", "total:", all.Meta.Total)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
