package models

import "time"

// MapViewState is the camera position of the map view.
type MapViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Bearing   float64 `json:"bearing,omitempty"`
	Pitch     float64 `json:"pitch,omitempty"`
}

// Severity ranks a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is a transient message queued for display. A zero Duration
// means it stays until dismissed.
type Notification struct {
	ID       string        `json:"id"`
	Severity Severity      `json:"type"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)
