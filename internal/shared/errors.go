package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Playback errors
	ErrPlaybackFailed = fmt.Errorf("playback failed")
	ErrEmptyQueue     = fmt.Errorf("queue is empty")
	ErrPlayerClosed   = fmt.Errorf("player closed")

	// Payment errors
	ErrPaymentRejected = fmt.Errorf("payment rejected")
	ErrInvalidWebhook  = fmt.Errorf("invalid webhook")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
