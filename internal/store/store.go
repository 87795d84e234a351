package store

import (
	"context"

	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/peacewatch/peacewatch/internal/models"
)

// AlertStore persists keyword-matched feed items. InsertAlertIfNew is the
// dedup primitive: it must be atomic, not a separate find-then-create.
type AlertStore interface {
	InsertAlertIfNew(ctx context.Context, alert models.Alert) (created bool, err error)
	QueryAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id string) error
}

// ReportStore persists community incident reports. Verified and Approved are
// monotonic; ApproveReport fails with ErrConflict unless the report has been
// verified first.
type ReportStore interface {
	CreateReport(ctx context.Context, report *models.Report) error
	QueryReports(ctx context.Context, q models.ReportQuery) ([]models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	VerifyReport(ctx context.Context, id string) error
	ApproveReport(ctx context.Context, id string) error
	DeleteReport(ctx context.Context, id string) error
}

// SubscriptionStore persists notification recipients.
type SubscriptionStore interface {
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// Store is the full persistence surface
type Store interface {
	AlertStore
	ReportStore
	SubscriptionStore
	Health(ctx context.Context) error
}

// Database is the subset of the pgx pool wrapper the postgres store needs
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New returns a Postgres-backed store when the database is configured, and
// the in-memory store otherwise.
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	return NewInMemoryStore()
}
