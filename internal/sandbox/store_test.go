package sandbox

import (
	"context"
	"math"
	"subsctl/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insert(t *testing.T, store *Store, name string, status models.Status) *models.Subscription {
	t.Helper()
	expires := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	sub, err := store.Insert(context.Background(), models.Subscription{
		Member:    models.Member{ID: 3, Name: name, Email: "member@example.com"},
		Package:   models.Package{ID: 1, Name: "Gold", Amount: "19.99"},
		Cycle:     models.Cycle{Name: "Monthly"},
		Service:   models.Service{Name: "Gym"},
		Status:    status,
		ExpiresAt: &expires,
	})
	require.NoError(t, err)
	return sub
}

func TestStoreInsertAndGet(t *testing.T) {
	store := newTestStore(t)
	created := insert(t, store, "Ann Lee", models.StatusActive)

	got, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.Member.Name)
	assert.Equal(t, models.Amount("19.99"), got.Package.Amount)
	assert.Equal(t, models.StatusActive, got.Status)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)))

	_, err = store.Get(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrSubscriptionNotFound)
}

func TestStoreListPaginatesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 30; i++ {
		insert(t, store, "Member", models.StatusActive)
	}

	page, err := store.List(context.Background(), models.Filters{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 15)
	assert.Equal(t, int64(15), page.Items[0].ID)
	assert.Equal(t, models.PageMeta{Total: 30, PerPage: 15, CurrentPage: 2, LastPage: 2, From: 16, To: 30}, page.Meta)

	page, err = store.List(context.Background(), models.Filters{Page: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Meta.From)
}

func TestStoreListFilters(t *testing.T) {
	store := newTestStore(t)
	insert(t, store, "Ann Lee", models.StatusActive)
	insert(t, store, "Bob Stone", models.StatusExpired)
	insert(t, store, "Anna Berg", models.StatusExpired)

	page, err := store.List(context.Background(), models.Filters{Search: "ann"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)

	page, err = store.List(context.Background(), models.Filters{Search: "ann", Status: models.StatusExpired})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Anna Berg", page.Items[0].Member.Name)

	page, err = store.List(context.Background(), models.Filters{Service: "Pool"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Meta.LastPage)
}

func TestStoreSoftDelete(t *testing.T) {
	store := newTestStore(t)
	sub := insert(t, store, "Ann Lee", models.StatusActive)

	require.NoError(t, store.SoftDelete(context.Background(), sub.ID))

	got, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)

	assert.ErrorIs(t, store.SoftDelete(context.Background(), sub.ID), ErrAlreadyDeleted)
	assert.ErrorIs(t, store.SoftDelete(context.Background(), 999), models.ErrSubscriptionNotFound)
}

func TestSeedIsDeterministic(t *testing.T) {
	first := newTestStore(t)
	second := newTestStore(t)
	now := func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }
	first.now = now
	second.now = now

	require.NoError(t, first.Seed(context.Background(), 20, 42))
	require.NoError(t, second.Seed(context.Background(), 20, 42))

	a, err := first.List(context.Background(), models.Filters{PerPage: 50})
	require.NoError(t, err)
	b, err := second.List(context.Background(), models.Filters{PerPage: 50})
	require.NoError(t, err)

	assert.Equal(t, 20, a.Meta.Total)
	assert.Equal(t, a.Items, b.Items)
}

func TestStoreSearchMatchesWildcardsLiterally(t *testing.T) {
	store := newTestStore(t)
	insert(t, store, "ann_lee", models.StatusActive)
	insert(t, store, "annxlee", models.StatusActive)
	insert(t, store, "Promo 50% Club", models.StatusActive)

	page, err := store.List(context.Background(), models.Filters{Search: "n_l"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ann_lee", page.Items[0].Member.Name)

	page, err = store.List(context.Background(), models.Filters{Search: "50%"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Promo 50% Club", page.Items[0].Member.Name)

	page, err = store.List(context.Background(), models.Filters{Search: `\`})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestStoreListPastLastPage(t *testing.T) {
	store := newTestStore(t)
	insert(t, store, "Ann Lee", models.StatusActive)

	for _, p := range []int{2, math.MaxInt} {
		page, err := store.List(context.Background(), models.Filters{Page: p, PerPage: 15})
		require.NoError(t, err, "page %d", p)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.Meta.Total)
		assert.Equal(t, p, page.Meta.CurrentPage)
		assert.Zero(t, page.Meta.From)
	}
}
