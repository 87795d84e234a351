package models

import "time"

// Report is a community-submitted incident. Verified and Approved are
// independent flags that only ever flip from false to true; approval
// additionally requires prior verification. Creating a report triggers the
// notification dispatcher as a side effect, not a stored relationship.
type Report struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Content     string    `json:"content" db:"content"`
	Location    string    `json:"location" db:"location"`
	Categories  []string  `json:"categories" db:"categories"`
	Verified    bool      `json:"verified" db:"verified"`
	Approved    bool      `json:"approved" db:"approved"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ReportQuery represents query parameters for filtering reports
type ReportQuery struct {
	Verified *bool     `json:"verified"`
	Approved *bool     `json:"approved"`
	Location string    `json:"location"`
	Since    time.Time `json:"since"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// Matches checks if a report matches the query criteria
func (q ReportQuery) Matches(report Report) bool {
	if q.Verified != nil && report.Verified != *q.Verified {
		return false
	}
	if q.Approved != nil && report.Approved != *q.Approved {
		return false
	}
	if q.Location != "" && report.Location != q.Location {
		return false
	}
	if !q.Since.IsZero() && report.CreatedAt.Before(q.Since) {
		return false
	}
	return true
}
