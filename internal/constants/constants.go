package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRoles = "user_roles"
	ContextKeyTemplate  = "template"
	ContextKeyInstance  = "instance"
)

// Authentication
const (
	MinPasswordLength = 8
	SessionMaxAge     = 86400 * 7 // 7 days
	SessionCookieName = "tracker_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DueSoonWindow is how far ahead of a due date the deriver starts
// emitting due_soon notifications.
const DueSoonWindow = 24 * time.Hour
