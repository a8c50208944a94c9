// Package results implements the cache of previously computed classifications.
// Entries are keyed by the fingerprint of the input bytes and hold the
// formatted classification string. Entries are written with upsert semantics
// and are never deleted by this package.
package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/glimpse/internal/failure"
	"github.com/JaimeStill/glimpse/internal/fingerprint"
)

// Store is a key-value view over a remote document store.
type Store interface {
	// Lookup returns the stored value for key. found is false when no record
	// exists. Transport failures are returned as StoreUnavailable errors, never
	// reported as a miss.
	Lookup(ctx context.Context, key fingerprint.Fingerprint) (value string, found bool, err error)
	// Insert upserts the record for key. Writing an identical value is a no-op in effect.
	Insert(ctx context.Context, key fingerprint.Fingerprint, value string) error
}

// Entry is the persisted cache record.
type Entry struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type document struct {
	ID    *string `json:"id"`
	Value *string `json:"value"`
}

// Match interprets the raw documents returned by an equality query on key.
// Zero documents is a miss; exactly one well-formed document is a hit.
// Anything else is a MalformedRecord error.
func Match(key fingerprint.Fingerprint, docs [][]byte) (string, bool, error) {
	switch len(docs) {
	case 0:
		return "", false, nil
	case 1:
	default:
		return "", false, malformed(key, fmt.Errorf("%d records share the id", len(docs)))
	}

	var doc document
	if err := json.Unmarshal(docs[0], &doc); err != nil {
		return "", false, malformed(key, err)
	}
	if doc.ID == nil || doc.Value == nil {
		return "", false, malformed(key, fmt.Errorf("record missing id or value"))
	}
	if *doc.ID != string(key) {
		return "", false, malformed(key, fmt.Errorf("record id %q does not match", *doc.ID))
	}

	return *doc.Value, true, nil
}

func marshalEntry(key fingerprint.Fingerprint, value string) ([]byte, error) {
	return json.Marshal(Entry{ID: string(key), Value: value})
}

func malformed(key fingerprint.Fingerprint, err error) error {
	return failure.New(failure.MalformedRecord, "lookup "+string(key), err)
}

func unavailable(op string, err error) error {
	return failure.New(failure.StoreUnavailable, op, err)
}
