package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"subsctl/internal/models"
	"subsctl/internal/ui"
	"subsctl/internal/util"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse subscriptions",
	Long: `Open the interactive subscriptions list. Filters given as flags select the first page shown.
Use --plain to print one page and exit.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "Page to show")
	cmd.Flags().Int("per-page", 0, "Subscriptions per page (defaults to the configured per_page)")
	cmd.Flags().String("search", "", "Search member, package or service")
	cmd.Flags().String("status", "", "Only subscriptions with this status (active, expired, pending, cancelled, deleted)")
	cmd.Flags().String("service", "", "Only subscriptions of this service")
	cmd.Flags().String("query", "", "Raw query string such as 'page=2&status=active'; flags override it")
	cmd.Flags().Bool("plain", false, "Print one page as a table and exit")
}

// filtersFromFlags merges --query with the individual filter flags
func filtersFromFlags(cmd *cobra.Command) (models.Filters, error) {
	query, _ := cmd.Flags().GetString("query")
	filters, err := models.ParseFilters(query)
	if err != nil {
		return filters, err
	}

	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	search, _ := cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")
	service, _ := cmd.Flags().GetString("service")

	if page < 0 || perPage < 0 {
		return filters, fmt.Errorf("page and per-page must not be negative")
	}

	filters = filters.Merge(models.Filters{
		Page:    page,
		PerPage: perPage,
		Search:  search,
		Status:  models.Status(status),
		Service: service,
	})
	if filters.PerPage == 0 {
		filters.PerPage = globalConfig.PerPage
	}
	return filters, nil
}

func runList(cmd *cobra.Command, args []string) error {
	filters, err := filtersFromFlags(cmd)
	if err != nil {
		fmt.Println("Error:", err)
		return nil
	}

	client, err := newClient()
	if err != nil {
		printClientError("creating client", err)
		return nil
	}

	ctx := contextOrBackground(cmd.Context())
	plain, _ := cmd.Flags().GetBool("plain")
	if plain {
		page, err := client.ListSubscriptions(ctx, filters)
		if err != nil {
			printClientError("listing subscriptions", err)
			return nil
		}
		printPage(os.Stdout, page, displayFormat())
		return nil
	}

	logger.Info("Starting subscriptions list", "server", globalConfig.ServerURL, "query", filters.Encode())
	app := ui.NewApp(ctx, client, ui.Options{
		Server:   globalConfig.ServerURL,
		PanelURL: globalConfig.PanelURL,
		Format:   displayFormat(),
		Filters:  filters,
		Logger:   logger,
	})
	return ui.Run(ctx, app)
}

var plainWidths = []int{6, 22, 30, 12, 10, 16}

// printPage writes a page as aligned columns with colored statuses
func printPage(w io.Writer, page *models.SubscriptionPage, format ui.Format) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No subscriptions found.")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(w, formatRow(ui.Headers, func(_ int, cell string) string { return bold(cell) }))

	for _, sub := range page.Items {
		paint := statusColor(sub.Status)
		fmt.Fprintln(w, formatRow(format.RowCells(sub), func(i int, cell string) string {
			// Status is colored after padding so escape codes don't skew alignment
			if i == 4 {
				return paint(cell)
			}
			return cell
		}))
	}

	meta := page.Meta
	fmt.Fprintf(w, "\nPage %d of %d · %d subscriptions\n", meta.Page(), meta.Pages(), meta.Total)
}

func formatRow(cells []string, style func(i int, cell string) string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i < len(plainWidths) {
			cell = fmt.Sprintf("%-*s", plainWidths[i], util.Truncate(cell, plainWidths[i]))
		}
		parts[i] = style(i, cell)
	}
	return strings.Join(parts, " ")
}

func statusColor(status models.Status) func(a ...interface{}) string {
	switch status {
	case models.StatusActive:
		return color.New(color.FgGreen).SprintFunc()
	case models.StatusDeleted:
		return color.New(color.FgRed).SprintFunc()
	case models.StatusExpired, models.StatusCancelled:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgWhite).SprintFunc()
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func init() {
	rootCmd.AddCommand(listCmd)
	addListFlags(listCmd)
}
