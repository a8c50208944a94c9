package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/JaimeStill/glimpse/internal/fingerprint"
	"github.com/JaimeStill/glimpse/pkg/repository"
)

var errNotWritten = errors.New("upsert affected no rows")

type postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgres creates a Store over the cache_entries table.
func NewPostgres(db *sql.DB, logger *slog.Logger) Store {
	return &postgres{
		db:     db,
		logger: logger.With("system", "results", "backend", BackendPostgres),
	}
}

func (p *postgres) Lookup(ctx context.Context, key fingerprint.Fingerprint) (string, bool, error) {
	docs, err := repository.QueryMany(
		ctx, p.db,
		"SELECT id, value FROM cache_entries WHERE id = $1",
		[]any{string(key)},
		scanDocument,
	)
	if err != nil {
		return "", false, unavailable("lookup "+string(key), repository.MapError(err, nil))
	}

	return Match(key, docs)
}

func (p *postgres) Insert(ctx context.Context, key fingerprint.Fingerprint, value string) error {
	err := repository.ExecExpectOne(
		ctx, p.db,
		`INSERT INTO cache_entries(id, value)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		string(key), value,
	)
	if err != nil {
		return unavailable("insert "+string(key), repository.MapError(err, errNotWritten))
	}

	p.logger.Debug("entry upserted", "id", key)
	return nil
}

// scanDocument renders a row as the JSON document shape Match expects,
// preserving NULL columns as absent fields.
func scanDocument(s repository.Scanner) ([]byte, error) {
	var id, value sql.NullString
	if err := s.Scan(&id, &value); err != nil {
		return nil, err
	}

	var doc document
	if id.Valid {
		doc.ID = &id.String
	}
	if value.Valid {
		doc.Value = &value.String
	}
	return json.Marshal(doc)
}
