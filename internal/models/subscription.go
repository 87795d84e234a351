package models

import "time"

// Subscription registers a recipient for location-based notifications.
// Phone is stored in international format; normalization is applied once at
// creation time. Method is free text matched by substring against the known
// channels ("email", "whatsapp", "sms"). Subscriptions are immutable.
type Subscription struct {
	ID        string    `json:"id" db:"id"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email,omitempty" db:"email"`
	Location  string    `json:"location" db:"location"`
	Method    string    `json:"method" db:"method"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
