package storage

import (
	"errors"
	"net/http"
	"strings"
)

// MaxKeyLength is the longest blob name Azure Blob Storage accepts.
const MaxKeyLength = 1024

var (
	ErrNotFound      = errors.New("blob not found")
	ErrEmptyKey      = errors.New("storage key must not be empty")
	ErrInvalidKey    = errors.New("storage key is invalid")
	ErrNotConfigured = errors.New("blob storage not configured")
)

// ValidateKey rejects empty keys, keys longer than MaxKeyLength,
// absolute keys, and keys with a ".." segment.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return ErrEmptyKey
	case len(key) > MaxKeyLength:
		return ErrInvalidKey
	case strings.HasPrefix(key, "/"):
		return ErrInvalidKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
