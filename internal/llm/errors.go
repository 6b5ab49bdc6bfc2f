package llm

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned when the gateway is asked to make a call
// without a configured credential.
var ErrNoAPIKey = errors.New("AI API key is not configured")

// TransportError is a network-level failure reaching the provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("AI provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-success HTTP status from the provider. Body is
// truncated so it can be surfaced in diagnostics without dumping the
// full provider response.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI provider returned status %d: %s", e.StatusCode, e.Body)
}

// AuthFailed reports whether the provider rejected the credential.
// Callers use this to stop probing alternate endpoints: a 401/403 means
// the endpoint is reachable and the key is wrong.
func (e *UpstreamError) AuthFailed() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

const maxBodyExcerpt = 300

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
