package services

import (
	"fmt"
	"strings"

	"github.com/soochol/postplan/internal/postplan"
)

// normalizeTarget checks content and platforms shared by posts and schedule
// templates, returning the platforms deduplicated in canonical form.
func normalizeTarget(content string, platforms []postplan.Platform) ([]postplan.Platform, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: at least one platform is required", ErrInvalidInput)
	}
	out := make([]postplan.Platform, 0, len(platforms))
	seen := make(map[postplan.Platform]bool, len(platforms))
	for _, raw := range platforms {
		p, err := postplan.ParsePlatform(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}
