package store

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/peacewatch/peacewatch/internal/errors"
	"github.com/peacewatch/peacewatch/internal/models"
)

// InMemoryStore implements Store for deployments without a database
type InMemoryStore struct {
	mu            sync.RWMutex
	alertsByText  map[string]models.Alert
	reports       map[string]models.Report
	subscriptions []models.Subscription
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		alertsByText: make(map[string]models.Alert),
		reports:      make(map[string]models.Report),
	}
}

// InsertAlertIfNew stores the alert unless one with the same text exists.
// The map write under the lock is the atomic insert-if-absent.
func (s *InMemoryStore) InsertAlertIfNew(ctx context.Context, alert models.Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alertsByText[alert.Text]; exists {
		return false, nil
	}
	s.alertsByText[alert.Text] = alert
	return true, nil
}

// QueryAlerts retrieves alerts matching the query, newest first
func (s *InMemoryStore) QueryAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Alert
	for _, alert := range s.alertsByText {
		if q.Matches(alert) {
			result = append(result, alert)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DetectedAt.After(result[j].DetectedAt)
	})

	return paginate(result, q.Offset, q.Limit), nil
}

// GetAlert retrieves a single alert by ID
func (s *InMemoryStore) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, alert := range s.alertsByText {
		if alert.ID == id {
			a := alert
			return &a, nil
		}
	}
	return nil, nil
}

// DeleteAlert removes an alert by ID
func (s *InMemoryStore) DeleteAlert(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for text, alert := range s.alertsByText {
		if alert.ID == id {
			delete(s.alertsByText, text)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// CreateReport stores a new report
func (s *InMemoryStore) CreateReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.ID] = *report
	return nil
}

// QueryReports retrieves reports matching the query, newest first
func (s *InMemoryStore) QueryReports(ctx context.Context, q models.ReportQuery) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Report
	for _, report := range s.reports {
		if q.Matches(report) {
			result = append(result, report)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return paginate(result, q.Offset, q.Limit), nil
}

// GetReport retrieves a single report by ID
func (s *InMemoryStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if report, exists := s.reports[id]; exists {
		r := report
		return &r, nil
	}
	return nil, nil
}

// VerifyReport flips the verified flag; the flip is monotonic
func (s *InMemoryStore) VerifyReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, exists := s.reports[id]
	if !exists {
		return apperrors.ErrNotFound
	}
	report.Verified = true
	report.UpdatedAt = time.Now().UTC()
	s.reports[id] = report
	return nil
}

// ApproveReport flips the approved flag; requires prior verification
func (s *InMemoryStore) ApproveReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, exists := s.reports[id]
	if !exists {
		return apperrors.ErrNotFound
	}
	if !report.Verified {
		return apperrors.ErrConflict
	}
	report.Approved = true
	report.UpdatedAt = time.Now().UTC()
	s.reports[id] = report
	return nil
}

// DeleteReport removes a report by ID
func (s *InMemoryStore) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[id]; !exists {
		return apperrors.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

// CreateSubscription stores a new subscription
func (s *InMemoryStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscriptions = append(s.subscriptions, *sub)
	return nil
}

// ListSubscriptions returns a snapshot of all subscriptions
func (s *InMemoryStore) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Subscription, len(s.subscriptions))
	copy(out, s.subscriptions)
	return out, nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
