package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing Comic Vine API key")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrEmailTaken       = fmt.Errorf("email already registered")
	ErrNotOwner         = fmt.Errorf("not the soundtrack owner")

	// Player errors
	ErrLibraryLoad     = fmt.Errorf("player library failed to load")
	ErrPlayerBlocked   = fmt.Errorf("playback blocked")
	ErrInvalidMediaURL = fmt.Errorf("invalid media URL")
	ErrTimeout         = fmt.Errorf("operation timed out")

	// Store and vote protocol errors
	ErrIssueNotFound       = fmt.Errorf("issue not found")
	ErrUserNotFound        = fmt.Errorf("user not found")
	ErrSoundtrackNotFound  = fmt.Errorf("soundtrack not found")
	ErrTransactionConflict = fmt.Errorf("transaction conflict")

	// Input validation errors
	ErrValidation      = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
