package artifact

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"risk-predictor/internal/common/database"
)

// ErrNotFound means the source holds no artifact of the requested kind.
var ErrNotFound = stderrors.New("artifact not found")

// Source fetches raw artifact documents.
type Source interface {
	// Fetch returns the document for kind and a human readable location.
	Fetch(ctx context.Context, kind string) (doc []byte, location string, err error)
}

// Fingerprint identifies an artifact document by content.
func Fingerprint(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// FileSource reads artifacts from local paths.
type FileSource struct {
	ModelPath   string
	EncoderPath string
}

func (s *FileSource) Fetch(_ context.Context, kind string) ([]byte, string, error) {
	path := s.ModelPath
	if kind == KindEncoder {
		path = s.EncoderPath
	}
	if path == "" {
		return nil, "", ErrNotFound
	}

	doc, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, path, ErrNotFound
	}
	if err != nil {
		return nil, path, err
	}
	return doc, path, nil
}

const (
	createArtifactsTable = `CREATE TABLE IF NOT EXISTS model_artifacts (
	name       TEXT        NOT NULL,
	kind       TEXT        NOT NULL,
	version    INTEGER     NOT NULL,
	payload    BYTEA       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (name, kind, version)
)`

	latestArtifactQuery = `SELECT version, payload FROM model_artifacts
WHERE name = $1 AND kind = $2
ORDER BY version DESC
LIMIT 1`

	publishArtifactQuery = `INSERT INTO model_artifacts (name, kind, version, payload)
SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3
FROM model_artifacts WHERE name = $1 AND kind = $2
RETURNING version`
)

// PostgresSource reads the latest version of named artifacts from the
// model_artifacts table.
type PostgresSource struct {
	db          *database.PostgresClient
	modelName   string
	encoderName string
}

func NewPostgresSource(db *database.PostgresClient, modelName, encoderName string) *PostgresSource {
	return &PostgresSource{db: db, modelName: modelName, encoderName: encoderName}
}

func (s *PostgresSource) nameFor(kind string) string {
	if kind == KindEncoder {
		return s.encoderName
	}
	return s.modelName
}

func (s *PostgresSource) Fetch(ctx context.Context, kind string) ([]byte, string, error) {
	name := s.nameFor(kind)

	var (
		version int
		payload []byte
	)
	err := s.db.QueryRow(ctx, latestArtifactQuery, name, kind).Scan(&version, &payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Sprintf("postgres:%s", name), ErrNotFound
	}
	if err != nil {
		return nil, fmt.Sprintf("postgres:%s", name), err
	}
	return payload, fmt.Sprintf("postgres:%s@v%d", name, version), nil
}

// EnsureTable creates model_artifacts when it does not exist.
func (s *PostgresSource) EnsureTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createArtifactsTable); err != nil {
		return fmt.Errorf("create model_artifacts: %w", err)
	}
	return nil
}

// Publish stores doc as the next version of the named artifact and returns
// the new version number.
func (s *PostgresSource) Publish(ctx context.Context, kind string, doc []byte) (int, error) {
	var version int
	if err := s.db.QueryRow(ctx, publishArtifactQuery, s.nameFor(kind), kind, doc).Scan(&version); err != nil {
		return 0, fmt.Errorf("publish %s: %w", kind, err)
	}
	return version, nil
}
