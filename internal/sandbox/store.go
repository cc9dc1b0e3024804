package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"subsctl/internal/models"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	subscriptionsTable = "subscriptions"
	defaultPerPage     = 15
	maxPerPage         = 100
)

// ErrAlreadyDeleted is returned when deleting a subscription twice
var ErrAlreadyDeleted = errors.New("subscription is already deleted")

const schema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id     INTEGER NOT NULL,
	member_name   TEXT NOT NULL DEFAULT '',
	member_email  TEXT NOT NULL DEFAULT '',
	member_avatar TEXT NOT NULL DEFAULT '',
	package_id    INTEGER NOT NULL,
	package_name  TEXT NOT NULL DEFAULT '',
	amount        TEXT NOT NULL DEFAULT '0',
	cycle         TEXT NOT NULL DEFAULT '',
	service       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'active',
	expires_at    DATETIME
);
CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status);
`

var subscriptionColumns = []string{
	"id", "member_id", "member_name", "member_email", "member_avatar",
	"package_id", "package_name", "amount", "cycle", "service", "status", "expires_at",
}

type subscriptionRow struct {
	ID           int64      `db:"id"`
	MemberID     int64      `db:"member_id"`
	MemberName   string     `db:"member_name"`
	MemberEmail  string     `db:"member_email"`
	MemberAvatar string     `db:"member_avatar"`
	PackageID    int64      `db:"package_id"`
	PackageName  string     `db:"package_name"`
	Amount       string     `db:"amount"`
	Cycle        string     `db:"cycle"`
	Service      string     `db:"service"`
	Status       string     `db:"status"`
	ExpiresAt    *time.Time `db:"expires_at"`
}

func (r subscriptionRow) ToModel() models.Subscription {
	return models.Subscription{
		ID: r.ID,
		Member: models.Member{
			ID:     r.MemberID,
			Name:   r.MemberName,
			Email:  r.MemberEmail,
			Avatar: r.MemberAvatar,
		},
		Package: models.Package{
			ID:     r.PackageID,
			Name:   r.PackageName,
			Amount: models.Amount(r.Amount),
		},
		Cycle:     models.Cycle{Name: r.Cycle},
		Service:   models.Service{Name: r.Service},
		Status:    models.Status(r.Status),
		ExpiresAt: r.ExpiresAt,
	}
}

// Store keeps sandbox subscriptions in SQLite
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open connects to the SQLite database at dsn (":memory:" for a throwaway one)
// and creates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite3 database")
	}

	// A second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping SQLite3 database")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) stmtBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Insert stores a subscription and returns it with its new ID
func (s *Store) Insert(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	status := sub.Status
	if status == "" {
		status = models.StatusActive
	}
	amount := string(sub.Package.Amount)
	if amount == "" {
		amount = "0"
	}

	q, args, err := s.stmtBuilder().
		Insert(subscriptionsTable).
		SetMap(map[string]interface{}{
			"member_id":     sub.Member.ID,
			"member_name":   sub.Member.Name,
			"member_email":  sub.Member.Email,
			"member_avatar": sub.Member.Avatar,
			"package_id":    sub.Package.ID,
			"package_name":  sub.Package.Name,
			"amount":        amount,
			"cycle":         sub.Cycle.Name,
			"service":       sub.Service.Name,
			"status":        string(status),
			"expires_at":    sub.ExpiresAt,
		}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql query")
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert subscription")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "result.LastInsertId")
	}

	return s.Get(ctx, id)
}

// Get returns one subscription or models.ErrSubscriptionNotFound
func (s *Store) Get(ctx context.Context, id int64) (*models.Subscription, error) {
	q, args, err := s.stmtBuilder().
		Select(subscriptionColumns...).
		From(subscriptionsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql query")
	}

	var row subscriptionRow
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", models.ErrSubscriptionNotFound, id)
		}
		return nil, errors.Wrap(err, "failed to get subscription")
	}

	sub := row.ToModel()
	return &sub, nil
}

// List returns one page of subscriptions matching the filters, newest first
func (s *Store) List(ctx context.Context, filters models.Filters) (*models.SubscriptionPage, error) {
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}

	countQuery, countArgs, err := applyFilters(s.stmtBuilder().Select("COUNT(*)").From(subscriptionsTable), filters).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build count query")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, errors.Wrap(err, "failed to count subscriptions")
	}

	// Pages past the end read nothing; comparing first keeps the offset from overflowing
	offset := total
	if page <= total/perPage+1 {
		offset = (page - 1) * perPage
	}
	q, args, err := applyFilters(s.stmtBuilder().Select(subscriptionColumns...).From(subscriptionsTable), filters).
		OrderBy("id DESC").
		Limit(uint64(perPage)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql query")
	}

	var rows []subscriptionRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list subscriptions")
	}

	items := make([]models.Subscription, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ToModel())
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	meta := models.PageMeta{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		LastPage:    lastPage,
	}
	if len(items) > 0 {
		meta.From = offset + 1
		meta.To = offset + len(items)
	}

	return &models.SubscriptionPage{Items: items, Meta: meta}, nil
}

// likeEscaper makes search text match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func applyFilters(query sq.SelectBuilder, filters models.Filters) sq.SelectBuilder {
	if filters.Search != "" {
		like := "%" + likeEscaper.Replace(filters.Search) + "%"
		query = query.Where(sq.Or{
			sq.Expr(`member_name LIKE ? ESCAPE '\'`, like),
			sq.Expr(`member_email LIKE ? ESCAPE '\'`, like),
			sq.Expr(`package_name LIKE ? ESCAPE '\'`, like),
			sq.Expr(`service LIKE ? ESCAPE '\'`, like),
		})
	}
	if filters.Status != "" {
		query = query.Where(sq.Eq{"status": string(filters.Status)})
	}
	if filters.Service != "" {
		query = query.Where(sq.Eq{"service": filters.Service})
	}
	return query
}

// SoftDelete marks a subscription deleted. Deleted rows stay listable.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status.IsDeleted() {
		return ErrAlreadyDeleted
	}

	q, args, err := s.stmtBuilder().
		Update(subscriptionsTable).
		Set("status", string(models.StatusDeleted)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build sql query")
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "failed to delete subscription")
	}
	return nil
}
