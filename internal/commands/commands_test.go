package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"subsctl/internal/config"
	"subsctl/internal/models"
	"subsctl/internal/ui"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := globalConfig
	globalConfig = cfg
	t.Cleanup(func() { globalConfig = prev })
}

func TestFiltersFromFlags(t *testing.T) {
	withConfig(t, &config.Config{PerPage: 15})

	cmd := &cobra.Command{}
	addListFlags(cmd)
	require.NoError(t, cmd.Flags().Set("query", "page=3&status=expired&search=ann"))
	require.NoError(t, cmd.Flags().Set("status", "active"))

	filters, err := filtersFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, models.Filters{Page: 3, PerPage: 15, Search: "ann", Status: models.StatusActive}, filters)
}

func TestFiltersFromFlagsRejectsBadQuery(t *testing.T) {
	withConfig(t, &config.Config{PerPage: 15})

	cmd := &cobra.Command{}
	addListFlags(cmd)
	require.NoError(t, cmd.Flags().Set("query", "page=two"))

	_, err := filtersFromFlags(cmd)
	assert.Error(t, err)
}

func TestPrintPage(t *testing.T) {
	color.NoColor = true

	expires := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	page := &models.SubscriptionPage{
		Items: []models.Subscription{{
			ID:        7,
			Member:    models.Member{Name: "Ann Lee"},
			Package:   models.Package{Name: "Gold", Amount: "19.99"},
			Cycle:     models.Cycle{Name: "Monthly"},
			Service:   models.Service{Name: "Gym"},
			Status:    models.StatusActive,
			ExpiresAt: &expires,
		}},
		Meta: models.PageMeta{Total: 30, PerPage: 15, CurrentPage: 2, LastPage: 2},
	}

	var buf bytes.Buffer
	printPage(&buf, page, ui.Format{Currency: "$", DateLayout: "2006-01-02", Location: time.UTC})

	out := buf.String()
	assert.Contains(t, out, "Member")
	assert.Contains(t, out, "Ann Lee")
	assert.Contains(t, out, "Gold $19.99 monthly")
	assert.Contains(t, out, "2026-11-01")
	assert.Contains(t, out, "edit view delete")
	assert.Contains(t, out, "Page 2 of 2 · 30 subscriptions")
}

func TestPrintPageEmpty(t *testing.T) {
	var buf bytes.Buffer
	printPage(&buf, &models.SubscriptionPage{}, ui.DefaultFormat())
	assert.Equal(t, "No subscriptions found.\n", buf.String())
}

func TestConfigValues(t *testing.T) {
	cfg := &config.Config{}

	require.NoError(t, setConfigValue(cfg, "server-url", "https://api.example.com/"))
	require.NoError(t, setConfigValue(cfg, "per-page", "25"))
	require.NoError(t, setConfigValue(cfg, "timeout", "10s"))
	require.NoError(t, setConfigValue(cfg, "timezone", "UTC"))

	assert.Equal(t, "https://api.example.com", cfg.ServerURL)
	assert.Equal(t, 25, cfg.PerPage)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	value, err := configValue(cfg, "per-page")
	require.NoError(t, err)
	assert.Equal(t, "25", value)

	assert.Error(t, setConfigValue(cfg, "per-page", "0"))
	assert.Error(t, setConfigValue(cfg, "timezone", "Mars/Olympus"))
	_, err = configValue(cfg, "bogus")
	assert.Error(t, err)
}

type countingLister struct {
	totals map[models.Status]int
	err    error
	calls  []models.Filters
}

func (l *countingLister) ListSubscriptions(ctx context.Context, filters models.Filters) (*models.SubscriptionPage, error) {
	l.calls = append(l.calls, filters)
	if l.err != nil {
		return nil, l.err
	}
	total := 0
	for status, n := range l.totals {
		if filters.Status == "" || filters.Status == status {
			total += n
		}
	}
	return &models.SubscriptionPage{Meta: models.PageMeta{Total: total, PerPage: 1, CurrentPage: 1, LastPage: total}}, nil
}

func TestPrintStatusSummary(t *testing.T) {
	color.NoColor = true
	lister := &countingLister{totals: map[models.Status]int{
		models.StatusActive:  12,
		models.StatusDeleted: 3,
	}}

	var buf bytes.Buffer
	require.NoError(t, printStatusSummary(context.Background(), &buf, lister))

	out := buf.String()
	assert.Contains(t, out, "active:    12")
	assert.Contains(t, out, "deleted:   3")
	assert.Contains(t, out, "pending:   0")
	assert.Contains(t, out, "total:     15")
	assert.Len(t, lister.calls, len(models.Statuses)+1)
	for _, filters := range lister.calls {
		assert.Equal(t, 1, filters.PerPage)
	}
}

func TestPrintStatusSummaryStopsOnError(t *testing.T) {
	lister := &countingLister{err: errors.New("boom")}

	var buf bytes.Buffer
	err := printStatusSummary(context.Background(), &buf, lister)
	assert.EqualError(t, err, "boom")
	assert.Len(t, lister.calls, 1)
	assert.Empty(t, buf.String())
}

func TestConfigSetDoesNotPersistEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SUBSCTL_HOME", home)
	path := filepath.Join(home, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url": "https://api.example.com"}`), 0644))

	t.Setenv("SUBSCTL_SERVER_URL", "https://staging.example.com")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	withConfig(t, cfg)

	flag := configSetCmd.Flags().Lookup("per-page")
	require.NoError(t, configSetCmd.Flags().Set("per-page", "20"))
	t.Cleanup(func() {
		_ = flag.Value.Set("")
		flag.Changed = false
	})

	require.NoError(t, configSetCmd.RunE(configSetCmd, nil))
	assert.Equal(t, 20, globalConfig.PerPage)

	stored, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", stored.ServerURL)
	assert.Equal(t, 20, stored.PerPage)
}
