package repository

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateCode returns a business code such as "L-1a2b3c4d": the prefix and
// the first segment of a random UUID. Uniqueness is probabilistic.
func GenerateCode(prefix string) string {

	segment, _, _ := strings.Cut(uuid.NewString(), "-")
	return prefix + "-" + segment
}
