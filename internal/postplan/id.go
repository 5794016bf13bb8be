// Package postplan holds the domain types shared by the repository,
// service and API layers.
package postplan

import "github.com/google/uuid"

// GenerateID returns prefix + "-" + a random UUID.
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
