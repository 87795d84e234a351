package store

import (
	"context"
	"fmt"

	pgx "github.com/jackc/pgx/v5"

	apperrors "github.com/peacewatch/peacewatch/internal/errors"
	"github.com/peacewatch/peacewatch/internal/models"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// InsertAlertIfNew inserts the alert unless one with the same text already
// exists. ON CONFLICT DO NOTHING makes the check-then-act atomic in the
// database, so concurrent cycles cannot both insert.
func (s *PostgresStore) InsertAlertIfNew(ctx context.Context, alert models.Alert) (bool, error) {
	query := `
		INSERT INTO alerts (id, text, url, source, detected_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (text) DO NOTHING
	`

	tag, err := s.db.Exec(ctx, query,
		alert.ID, alert.Text, alert.URL, alert.Source, alert.DetectedAt,
	)
	if err != nil {
		return false, apperrors.StoreError{Operation: "insert alert", Err: err}
	}

	return tag.RowsAffected() == 1, nil
}

// QueryAlerts retrieves alerts based on query parameters
func (s *PostgresStore) QueryAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error) {
	query := `
		SELECT id, text, url, source, detected_at
		FROM alerts
		WHERE 1=1
	`

	var args []any
	argIndex := 1

	if len(q.Sources) > 0 {
		query += fmt.Sprintf(" AND source = ANY($%d)", argIndex)
		args = append(args, q.Sources)
		argIndex++
	}

	if !q.Since.IsZero() {
		query += fmt.Sprintf(" AND detected_at >= $%d", argIndex)
		args = append(args, q.Since)
		argIndex++
	}

	if !q.Until.IsZero() {
		query += fmt.Sprintf(" AND detected_at <= $%d", argIndex)
		args = append(args, q.Until)
		argIndex++
	}

	query += " ORDER BY detected_at DESC"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
		argIndex++
	}

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, q.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreError{Operation: "query alerts", Err: err}
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var alert models.Alert
		if err := rows.Scan(&alert.ID, &alert.Text, &alert.URL, &alert.Source, &alert.DetectedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// GetAlert retrieves a single alert by ID
func (s *PostgresStore) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, text, url, source, detected_at
		FROM alerts
		WHERE id = $1
	`, id)

	var alert models.Alert
	err := row.Scan(&alert.ID, &alert.Text, &alert.URL, &alert.Source, &alert.DetectedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.StoreError{Operation: "get alert", Err: err}
	}

	return &alert, nil
}

// DeleteAlert removes an alert by ID
func (s *PostgresStore) DeleteAlert(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return apperrors.StoreError{Operation: "delete alert", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CreateReport stores a new report
func (s *PostgresStore) CreateReport(ctx context.Context, report *models.Report) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reports (id, title, description, content, location, categories,
			verified, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		report.ID, report.Title, report.Description, report.Content,
		report.Location, report.Categories, report.Verified, report.Approved,
		report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return apperrors.StoreError{Operation: "create report", Err: err}
	}
	return nil
}

// QueryReports retrieves reports based on query parameters
func (s *PostgresStore) QueryReports(ctx context.Context, q models.ReportQuery) ([]models.Report, error) {
	query := `
		SELECT id, title, description, content, location, categories,
			   verified, approved, created_at, updated_at
		FROM reports
		WHERE 1=1
	`

	var args []any
	argIndex := 1

	if q.Verified != nil {
		query += fmt.Sprintf(" AND verified = $%d", argIndex)
		args = append(args, *q.Verified)
		argIndex++
	}

	if q.Approved != nil {
		query += fmt.Sprintf(" AND approved = $%d", argIndex)
		args = append(args, *q.Approved)
		argIndex++
	}

	if q.Location != "" {
		query += fmt.Sprintf(" AND location = $%d", argIndex)
		args = append(args, q.Location)
		argIndex++
	}

	if !q.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, q.Since)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
		argIndex++
	}

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, q.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreError{Operation: "query reports", Err: err}
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var report models.Report
		err := rows.Scan(
			&report.ID, &report.Title, &report.Description, &report.Content,
			&report.Location, &report.Categories, &report.Verified,
			&report.Approved, &report.CreatedAt, &report.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// GetReport retrieves a single report by ID
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, title, description, content, location, categories,
			   verified, approved, created_at, updated_at
		FROM reports
		WHERE id = $1
	`, id)

	var report models.Report
	err := row.Scan(
		&report.ID, &report.Title, &report.Description, &report.Content,
		&report.Location, &report.Categories, &report.Verified,
		&report.Approved, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.StoreError{Operation: "get report", Err: err}
	}

	return &report, nil
}

// VerifyReport marks a report verified
func (s *PostgresStore) VerifyReport(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE reports SET verified = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return apperrors.StoreError{Operation: "verify report", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApproveReport marks a verified report approved. The verified predicate is
// part of the UPDATE so the check cannot race with a concurrent delete.
func (s *PostgresStore) ApproveReport(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE reports SET approved = TRUE, updated_at = NOW()
		WHERE id = $1 AND verified = TRUE
	`, id)
	if err != nil {
		return apperrors.StoreError{Operation: "approve report", Err: err}
	}
	if tag.RowsAffected() == 0 {
		report, err := s.GetReport(ctx, id)
		if err != nil {
			return err
		}
		if report == nil {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrConflict
	}
	return nil
}

// DeleteReport removes a report by ID
func (s *PostgresStore) DeleteReport(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return apperrors.StoreError{Operation: "delete report", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CreateSubscription stores a new subscription
func (s *PostgresStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO subscriptions (id, phone, email, location, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		sub.ID, sub.Phone, sub.Email, sub.Location, sub.Method, sub.CreatedAt,
	)
	if err != nil {
		return apperrors.StoreError{Operation: "create subscription", Err: err}
	}
	return nil
}

// ListSubscriptions returns all subscriptions
func (s *PostgresStore) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, phone, email, location, method, created_at
		FROM subscriptions
	`)
	if err != nil {
		return nil, apperrors.StoreError{Operation: "list subscriptions", Err: err}
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.Phone, &sub.Email, &sub.Location, &sub.Method, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
