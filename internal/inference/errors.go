package inference

import (
	"fmt"

	"github.com/JaimeStill/glimpse/internal/fingerprint"
)

// WriteError reports that a classification was computed but could not be
// persisted. Result holds the valid answer; the cache is not warm for Fingerprint.
type WriteError struct {
	Fingerprint fingerprint.Fingerprint
	Result      string
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cache write for %s failed: %v", e.Fingerprint, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
