package instance

import "os"

// GetID returns the process instance identifier used in startup logs. It
// prefers an explicit INSTANCE_ID, falls back to the Heroku DYNO name, and
// defaults to "local" when neither is set.
func GetID() string {
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
