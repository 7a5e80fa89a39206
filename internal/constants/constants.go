package constants

import "time"

// Field limits enforced at the service layer.
const (
	MinPasswordLength    = 6
	MinUsernameLength    = 3
	MaxUsernameLength    = 30
	MaxPersonNameLength  = 50
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxTagLength         = 20
	MaxNoteLength        = 500
)

// Pagination bounds.
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TokenTTL is the lifetime of an issued bearer token.
const TokenTTL = 7 * 24 * time.Hour

// ContextKeyActor is the gin context key holding the authenticated user.
const ContextKeyActor = "actor"
