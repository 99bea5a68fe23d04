package model

import "time"

// SavedSearch is a durably stored snapshot of a query and filter
// combination, kept per device, most recent first.
type SavedSearch struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Query         string      `json:"query"`
	Filters       FilterState `json:"filters"`
	AlertsEnabled bool        `json:"alerts_enabled"`
	CreatedAt     time.Time   `json:"created_at"`
	LastRunAt     *time.Time  `json:"last_run_at,omitempty"`
	ResultCount   int         `json:"result_count"`
}

// Preferences holds per-device UI preferences.
type Preferences struct {
	Theme         string            `json:"theme"`
	Language      string            `json:"language"`
	Currency      string            `json:"currency"`
	Notifications NotificationPrefs `json:"notifications"`
	DefaultSort   string            `json:"default_sort"`
	DefaultView   string            `json:"default_view"`
}

// NotificationPrefs holds notification toggles.
type NotificationPrefs struct {
	Email  bool `json:"email"`
	Push   bool `json:"push"`
	Alerts bool `json:"alerts"`
}

// DefaultPreferences returns the preferences a new device starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:       "light",
		Language:    "en",
		Currency:    "BWP",
		DefaultSort: "newest",
		DefaultView: "grid",
		Notifications: NotificationPrefs{
			Email:  true,
			Push:   false,
			Alerts: true,
		},
	}
}
