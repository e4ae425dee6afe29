package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"
)

// Boundary validation failures. These are caller errors, distinct from
// internal pipeline failures.
var (
	ErrInvalidTitle      = errors.New("title must not be empty")
	ErrTooLarge          = errors.New("upload exceeds the size limit")
	ErrUnsupportedFormat = errors.New("unsupported container format")
)

const maxTitleLength = 255

// NormalizeTitle trims and NFC-normalizes a user-supplied title. It returns
// ErrInvalidTitle for empty or oversized titles.
func NormalizeTitle(title string) (string, error) {
	normalized := norm.NFC.String(strings.TrimSpace(title))
	if normalized == "" {
		return "", ErrInvalidTitle
	}
	if len(normalized) > maxTitleLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidTitle, maxTitleLength)
	}
	return normalized, nil
}

// sniffLimit covers every container signature mimetype needs.
const sniffLimit = 3072

// checkContainer sniffs the upload header and verifies the detected
// container is in the allowed set.
func checkContainer(header []byte, allowed []string) error {
	detected := mimetype.Detect(header)
	ext := strings.ToLower(strings.TrimPrefix(detected.Extension(), "."))
	for _, format := range allowed {
		if ext == format {
			return nil
		}
	}
	return fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, detected.String())
}
