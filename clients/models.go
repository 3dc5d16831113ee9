package clients

import "fmt"

// CloudAPIError is the single error shape every cloud API failure is
// normalized into: a human message, plus best-effort status code and kind
// tag taken from the remote error body when present, the transport status
// otherwise, or nil when neither is known.
type CloudAPIError struct {
	Message    string
	StatusCode *int
	Kind       *string
}

func (e *CloudAPIError) Error() string {
	if e.StatusCode != nil {
		return fmt.Sprintf("cloud API error (status %d): %s", *e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cloud API error: %s", e.Message)
}
