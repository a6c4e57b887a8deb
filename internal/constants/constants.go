package constants

// ContextKeyUserID is the key under which the authenticated user's ID is
// stored in both the session and the Gin context.
const ContextKeyUserID = "user_id"

// ContextKeyRequestID is the Gin context key for the per-request UUID.
const ContextKeyRequestID = "request_id"

// HeaderRequestID is the response header carrying the request UUID.
const HeaderRequestID = "X-Request-ID"

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "gitboard_session"

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 8

// Pagination bounds.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
