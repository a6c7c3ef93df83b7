package instance

import "os"

// GetID identifies this API process in logs. DYNO wins on Heroku-style hosts.
func GetID() string {
	for _, key := range []string{"DYNO", "STOREFRONT_INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "storefront-0"
}
