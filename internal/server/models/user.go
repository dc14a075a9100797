// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is the local identity created on the first marketplace login.
type User struct {
	ID             string
	Provider       string
	ProviderUserID string
	DisplayName    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
