package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/ppiankov/quizguard/internal/model"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore keeps entries in one INSERT-only table. The full entry is
// stored as JSONB next to the indexed columns used for lookups.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore uses table in db. The table name must be a plain identifier.
func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = "audit_entries"
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid audit table name %q", table)
	}
	return &PostgresStore{db: db, table: table}, nil
}

// EnsureSchema creates the table when it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	sequence BIGINT NOT NULL UNIQUE,
	content_id TEXT NOT NULL,
	batch_id TEXT,
	recorded_at TIMESTAMPTZ NOT NULL,
	review_status TEXT NOT NULL,
	supersedes TEXT,
	entry JSONB NOT NULL
)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_content_idx ON %s (content_id, sequence)`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, entry model.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, sequence, content_id, batch_id, recorded_at, review_status, supersedes, entry)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, s.table)
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Sequence,
		entry.ContentID,
		nullString(entry.BatchID),
		entry.Timestamp,
		string(entry.ReviewStatus),
		nullString(entry.Supersedes),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Entries(ctx context.Context, contentID string) ([]model.AuditEntry, error) {
	query := fmt.Sprintf(`SELECT entry FROM %s WHERE content_id = $1 ORDER BY sequence`, s.table)
	return s.query(ctx, query, contentID)
}

func (s *PostgresStore) All(ctx context.Context) ([]model.AuditEntry, error) {
	query := fmt.Sprintf(`SELECT entry FROM %s ORDER BY sequence`, s.table)
	return s.query(ctx, query)
}

func (s *PostgresStore) LastSequence(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(sequence), 0) FROM %s`, s.table)
	var last int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&last); err != nil {
		return 0, fmt.Errorf("query last audit sequence: %w", err)
	}
	return last, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...interface{}) ([]model.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.AuditEntry
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		var entry model.AuditEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("unmarshal audit entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
