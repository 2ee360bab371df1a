package validator

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/sideeye/pkg/domain"
)

var (
	// DefaultMaxKeySize bounds caller-supplied trial keys.
	DefaultMaxKeySize = 256
	// EnvMaxKeySize is the environment variable to override the default
	EnvMaxKeySize = "SIDEEYE_MAX_KEY_SIZE"
)

var (
	ErrKeyTooLarge = errors.New("trial key exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("trial key contains invalid UTF-8 sequences")
	ErrKeyPath     = errors.New("trial key must not contain path separators")
)

// SanitizeKey cleans a caller-supplied trial key by enforcing a size limit,
// validating UTF-8, stripping control characters and surrounding whitespace.
// Keys become file names and Redis keys, so path separators are rejected.
// Every failure wraps domain.ErrInvalidArgument.
func SanitizeKey(key string) (string, error) {
	limit := getMaxKeySize()
	if len(key) > limit {
		// Reject rather than truncate, so two long keys never collide.
		return "", fmt.Errorf("%w: %w: size=%d limit=%d", domain.ErrInvalidArgument, ErrKeyTooLarge, len(key), limit)
	}

	if !utf8.ValidString(key) {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidArgument, ErrInvalidUTF8)
	}

	// ANSI escapes, NULL and the like would poison logs and terminal reports.
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, key)
	clean = strings.TrimSpace(clean)

	if strings.ContainsAny(clean, `/\`) || clean == "." || clean == ".." {
		return "", fmt.Errorf("%w: %w: %q", domain.ErrInvalidArgument, ErrKeyPath, clean)
	}
	return clean, nil
}

func getMaxKeySize() int {
	if val := os.Getenv(EnvMaxKeySize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxKeySize
}
