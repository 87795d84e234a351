package models

import "time"

// Alert is a stored record of a feed item that matched a configured keyword.
// Text is the item title and also the dedup key: at most one alert per
// distinct Text value exists in the store. Alerts are never mutated.
type Alert struct {
	ID         string    `json:"id" db:"id"`
	Text       string    `json:"text" db:"text"`
	URL        string    `json:"url" db:"url"`
	Source     string    `json:"source" db:"source"`
	DetectedAt time.Time `json:"detected_at" db:"detected_at"`
}

// AlertQuery represents query parameters for filtering alerts
type AlertQuery struct {
	Sources []string  `json:"sources"`
	Since   time.Time `json:"since"`
	Until   time.Time `json:"until"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
}

// Matches checks if an alert matches the query criteria
func (q AlertQuery) Matches(alert Alert) bool {
	if len(q.Sources) > 0 && !contains(q.Sources, alert.Source) {
		return false
	}
	if !q.Since.IsZero() && alert.DetectedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && alert.DetectedAt.After(q.Until) {
		return false
	}
	return true
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
