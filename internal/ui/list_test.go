package ui

import (
	"context"
	"errors"
	"subsctl/internal/models"
	"subsctl/internal/ui/components"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu          sync.Mutex
	page        *models.SubscriptionPage
	listErr     error
	deleteErr   error
	listCalls   []models.Filters
	deleteCalls []int64
	getCalls    []int64
	listCtxs    []context.Context
}

func (f *fakeSource) ListSubscriptions(ctx context.Context, filters models.Filters) (*models.SubscriptionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, filters)
	f.listCtxs = append(f.listCtxs, ctx)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.page, nil
}

func (f *fakeSource) DeleteSubscription(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeSource) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	for _, sub := range f.page.Items {
		if sub.ID == id {
			return &sub, nil
		}
	}
	return nil, models.ErrSubscriptionNotFound
}

func (f *fakeSource) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

type notification struct {
	kind components.NotificationKind
	text string
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) Notify(kind components.NotificationKind, text string) tea.Cmd {
	n.sent = append(n.sent, notification{kind: kind, text: text})
	return nil
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// drain runs cmd and feeds every produced message back through update until
// no commands remain. Spinner ticks and notification expiry are dropped.
func drain(t *testing.T, update func(tea.Msg) tea.Cmd, cmd tea.Cmd) []tea.Msg {
	t.Helper()

	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "update loop did not settle")

		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, components.NotificationExpiredMsg:
		default:
			seen = append(seen, msg)
			queue = append(queue, update(msg))
		}
	}
	return seen
}

func fastSpinner(m *spinner.Model) {
	m.Spinner.FPS = time.Millisecond
}

func samplePage() *models.SubscriptionPage {
	expires := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	return &models.SubscriptionPage{
		Items: []models.Subscription{
			{
				ID:        7,
				Member:    models.Member{ID: 3, Name: "Ann Lee", Email: "ann@example.com"},
				Package:   models.Package{ID: 1, Name: "Gold", Amount: "19.99"},
				Cycle:     models.Cycle{Name: "Monthly"},
				Service:   models.Service{Name: "Gym"},
				Status:    models.StatusActive,
				ExpiresAt: &expires,
			},
			{
				ID:      8,
				Member:  models.Member{ID: 4, Name: "Bob Stone"},
				Package: models.Package{ID: 2, Name: "Silver", Amount: "9.50"},
				Status:  models.StatusDeleted,
			},
		},
		Meta: models.PageMeta{Total: 30, PerPage: 15, CurrentPage: 2, LastPage: 2, From: 16, To: 30},
	}
}

func newTestList(t *testing.T, source *fakeSource, filters models.Filters) (*ListScreen, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	screen := NewListScreen(context.Background(), source, notifier, DefaultFormat(), filters)
	fastSpinner(&screen.spinner)
	t.Cleanup(screen.Close)
	return screen, notifier
}

func TestInitFetchesCurrentFilters(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, notifier := newTestList(t, source, models.Filters{Page: 2})

	drain(t, screen.Update, screen.Init())

	require.Equal(t, 1, source.lists())
	assert.Equal(t, models.Filters{Page: 2}, source.listCalls[0])

	state := screen.State()
	assert.False(t, state.IsLoading)
	assert.Len(t, state.Items, 2)
	assert.Equal(t, 30, state.Meta.Total)
	assert.Equal(t, "Page 2 of 2 · 30 subscriptions", screen.PaginationView())
	assert.Empty(t, notifier.sent)
}

func TestPaginationHiddenWhileLoading(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})

	_ = screen.Init()
	assert.True(t, screen.State().IsLoading)
	assert.Empty(t, screen.PaginationView())
}

func TestSetFiltersFetchesOnlyOnChange(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{Page: 1})
	drain(t, screen.Update, screen.Init())

	assert.Nil(t, screen.SetFilters(models.Filters{Page: 1}))
	assert.Equal(t, 1, source.lists())

	drain(t, screen.Update, screen.SetFilters(models.Filters{Page: 1, Status: models.StatusActive}))
	require.Equal(t, 2, source.lists())
	assert.Equal(t, models.StatusActive, source.listCalls[1].Status)
	assert.Equal(t, models.StatusActive, screen.Filters().Status)
}

func TestStaleResponseIsIgnored(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})

	_ = screen.Init()
	_ = screen.Reload()

	stale := &models.SubscriptionPage{Items: []models.Subscription{{ID: 99}}}
	assert.Nil(t, screen.Update(subscriptionsLoadedMsg{seq: 1, page: stale}))
	assert.True(t, screen.State().IsLoading)
	assert.Empty(t, screen.State().Items)

	screen.Update(subscriptionsLoadedMsg{seq: 2, page: samplePage()})
	assert.False(t, screen.State().IsLoading)
	assert.Len(t, screen.State().Items, 2)
}

func TestReloadCancelsPreviousFetch(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})

	first := screen.Init()
	_ = screen.Reload()

	drain(t, screen.Update, first)
	require.Equal(t, 1, source.lists())
	assert.ErrorIs(t, source.listCtxs[0].Err(), context.Canceled)
	assert.True(t, screen.State().IsLoading, "result of a superseded fetch must not finish loading")
}

func TestFailedFetchNotifiesOnceAndKeepsItems(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, notifier := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	source.listErr = errors.New("connection refused")
	drain(t, screen.Update, screen.Reload())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, components.NotifyError, notifier.sent[0].kind)
	assert.Contains(t, notifier.sent[0].text, "connection refused")
	assert.False(t, screen.State().IsLoading)
	assert.Len(t, screen.State().Items, 2)
}

func TestClosedScreenIgnoresLateResults(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, notifier := newTestList(t, source, models.Filters{})

	cmd := screen.Init()
	screen.Close()
	drain(t, screen.Update, cmd)

	require.Equal(t, 1, source.lists())
	assert.ErrorIs(t, source.listCtxs[0].Err(), context.Canceled)
	assert.Empty(t, screen.State().Items)
	assert.Empty(t, notifier.sent)
	assert.Nil(t, screen.Reload())
	assert.False(t, screen.Active())
}

func TestDeleteConfirmDeletesThenReloads(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, notifier := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	assert.Nil(t, screen.Update(keyMsg("d")))
	require.True(t, screen.confirm.IsOpen())
	assert.Equal(t, DialogPayload{ID: 7, Kind: ActionDelete}, screen.confirm.Payload())
	assert.True(t, screen.CapturesInput())
	assert.Contains(t, screen.View(), "Are you sure want to delete item?")

	drain(t, screen.Update, screen.Update(keyMsg("y")))

	assert.False(t, screen.confirm.IsOpen())
	assert.Equal(t, []int64{7}, source.deleteCalls)
	assert.Equal(t, 2, source.lists())
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, components.NotifySuccess, notifier.sent[0].kind)
}

func TestFailedDeleteNotifiesAndStillReloads(t *testing.T) {
	source := &fakeSource{page: samplePage(), deleteErr: errors.New("subscription has pending invoices")}
	screen, notifier := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	screen.Update(keyMsg("d"))
	drain(t, screen.Update, screen.Update(keyMsg("y")))

	assert.Equal(t, []int64{7}, source.deleteCalls)
	assert.Equal(t, 2, source.lists())
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, components.NotifyError, notifier.sent[0].kind)
	assert.Contains(t, notifier.sent[0].text, "pending invoices")
}

func TestConfirmNonDeletePayloadOnlyReloads(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	screen.confirm.Open("View", "Open?", DialogPayload{ID: 7, Kind: ActionView})
	drain(t, screen.Update, screen.Update(keyMsg("y")))

	assert.Empty(t, source.deleteCalls)
	assert.Equal(t, 2, source.lists())
}

func TestCancelDialogDoesNothing(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	screen.Update(keyMsg("d"))
	drain(t, screen.Update, screen.Update(keyMsg("n")))

	assert.False(t, screen.confirm.IsOpen())
	assert.Empty(t, source.deleteCalls)
	assert.Equal(t, 1, source.lists())
}

func TestDeletedRowOffersNoDelete(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	screen.Update(keyMsg("down"))
	assert.Nil(t, screen.Update(keyMsg("d")))
	assert.False(t, screen.confirm.IsOpen())

	screen.Update(keyMsg("enter"))
	require.True(t, screen.menu.IsOpen())
	labels := make([]string, 0, len(screen.menu.Items()))
	for _, item := range screen.menu.Items() {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Edit", "View Subscription"}, labels)
}

func TestMenuViewNavigates(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	screen.Update(keyMsg("enter"))
	screen.Update(keyMsg("down"))
	msgs := drain(t, screen.Update, screen.Update(keyMsg("enter")))

	assert.Contains(t, msgs, NavigateMsg{Path: "/subscriptions/7"})
	assert.Empty(t, source.deleteCalls)
}

func TestShortcutsNavigate(t *testing.T) {
	source := &fakeSource{page: samplePage()}
	screen, _ := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	cmd := screen.Update(keyMsg("e"))
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateMsg{Path: "/subscriptions/7/edit"}, cmd())

	cmd = screen.Update(keyMsg("v"))
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateMsg{Path: "/subscriptions/7"}, cmd())
}

func TestPagingEmitsFiltersChanged(t *testing.T) {
	page := samplePage()
	page.Meta.CurrentPage = 1
	source := &fakeSource{page: page}
	screen, _ := newTestList(t, source, models.Filters{Status: models.StatusActive})
	drain(t, screen.Update, screen.Init())

	assert.Nil(t, screen.Update(keyMsg("h")), "no previous page")

	cmd := screen.Update(keyMsg("l"))
	require.NotNil(t, cmd)
	assert.Equal(t, components.FiltersChangedMsg{Filters: models.Filters{Page: 2, Status: models.StatusActive}}, cmd())

	// The screen waits for its owner to apply the change
	assert.Equal(t, 1, source.lists())
}

func TestPagingIgnoredWhileLoading(t *testing.T) {
	page := samplePage()
	page.Meta.CurrentPage = 1
	source := &fakeSource{page: page}
	screen, _ := newTestList(t, source, models.Filters{})
	drain(t, screen.Update, screen.Init())

	_ = screen.Reload()
	assert.Nil(t, screen.Update(keyMsg("l")))
}

func TestSingleActiveRowOnSecondPage(t *testing.T) {
	page := samplePage()
	page.Items = page.Items[:1]
	source := &fakeSource{page: page}
	screen, notifier := newTestList(t, source, models.Filters{Page: 2})
	drain(t, screen.Update, screen.Init())

	require.Len(t, screen.State().Items, 1)
	assert.Equal(t, int64(7), screen.State().Items[0].ID)
	assert.Equal(t, models.StatusActive, screen.State().Items[0].Status)
	assert.Equal(t, "Page 2 of 2", screen.paginator.View())
	assert.Equal(t, "Page 2 of 2 · 30 subscriptions", screen.PaginationView())

	screen.Update(keyMsg("enter"))
	require.True(t, screen.menu.IsOpen())
	labels := make([]string, 0, len(screen.menu.Items()))
	for _, item := range screen.menu.Items() {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Edit", "View Subscription", "Delete"}, labels)
	assert.Empty(t, notifier.sent)
}

func TestNilPageLoadsAsEmpty(t *testing.T) {
	source := &fakeSource{}
	screen, notifier := newTestList(t, source, models.Filters{})

	drain(t, screen.Update, screen.Init())

	assert.False(t, screen.State().IsLoading)
	assert.Empty(t, screen.State().Items)
	assert.Equal(t, "Page 1 of 1 · 0 subscriptions", screen.PaginationView())
	assert.Contains(t, screen.View(), "No subscriptions found.")
	assert.Empty(t, notifier.sent)
}
