package accounts

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/picloop/identity/internal/common"
)

// handleSuffixRange bounds the random numeric suffix: [0, 100).
const handleSuffixRange = 100

// GenerateHandle derives a candidate username from a display name:
// lowercased, with all whitespace and underscores removed, followed by a
// random numeric suffix. The result is not checked against the store;
// callers must treat a uniqueness conflict as retryable.
func GenerateHandle(displayName string) (string, error) {
	if displayName == "" {
		return "", fmt.Errorf("%w: full name is required", common.ErrorValidation)
	}

	var b strings.Builder
	for _, r := range strings.ToLower(displayName) {
		if unicode.IsSpace(r) || r == '_' {
			continue
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%s%d", b.String(), rand.IntN(handleSuffixRange)), nil
}
