package application

import "errors"

var (
	// ErrDispatchBusy means another batch holds the dispatch lock.
	ErrDispatchBusy = errors.New("another dispatch is in progress")
	// ErrCampaignNotFound is returned for unknown campaign ids.
	ErrCampaignNotFound = errors.New("campaign not found")
)

// ValidationError rejects a request before any network activity.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
