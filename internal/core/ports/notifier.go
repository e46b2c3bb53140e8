// internal/core/ports/notifier.go
package ports

// Notifier displays human-readable failures to the user. Calls are
// fire-and-forget.
type Notifier interface {
	Error(message string)
}
