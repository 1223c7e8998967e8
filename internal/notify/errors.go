package notify

import "fmt"

// ProviderError is returned when a provider answered the request with a
// non-2xx status. Any other error from a sender is a transport failure.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notify: %s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("notify: %s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
