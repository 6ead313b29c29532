package domain

import "time"

// Admin is one entry in the notification roster. Identity and login live in
// the external provider; this record only controls fan-out targeting.
// ReceiveNotifications defaults to true for admins with no settings row.
type Admin struct {
	ID                   string
	Email                string
	ReceiveNotifications bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
