package common

import (
	"strings"
)

// NormalizeUserID maps the different spellings of an email address to the
// same user.
func NormalizeUserID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// PaginationParameter clamps a requested page to the configured limits.
func PaginationParameter(offset, limit, defaultLimit, maxLimit int) (int, int) {
	if offset < 0 {
		offset = 0
	}

	if limit <= 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return offset, limit
}
