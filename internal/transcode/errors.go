package transcode

import (
	"errors"
	"fmt"
	"strings"
)

// Operation names reported in transcode failures.
const (
	OpExtractFrame = "extract_frame"
	OpReencode     = "reencode"
	OpResize       = "resize"
	OpExtractAudio = "extract_audio"
)

// ErrNoFrame marks a frame extraction whose capture offset lies beyond the
// end of the input. The contract is failure, not clamping to the last frame.
var ErrNoFrame = errors.New("no frame produced")

// Error describes a single failed transcode operation. Failure of one
// operation never aborts siblings; the orchestrator owns that policy.
type Error struct {
	Op     string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	parts := []string{"transcode"}
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if reason := strings.TrimSpace(e.Reason); reason != "" {
		parts = append(parts, reason)
	}
	msg := strings.Join(parts, ": ")
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op, reason string, err error) error {
	return &Error{Op: op, Reason: reason, Err: err}
}
