package constants

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Validation limits
const (
	MinPasswordLength = 6
	MaxTitleLength    = 100
)

// Context keys
const (
	ContextKeyCurrentUser = "current_user"
)
