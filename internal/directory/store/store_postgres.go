package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	"github.com/TiberiusB/Nondominium/pkg/platform/sentinel"
	"github.com/google/uuid"
)

// PostgresRecordStore persists the record log in PostgreSQL. The table is
// append-only: the only write is an INSERT that ignores duplicates by
// content address, so replays and peer re-delivery are no-ops.
type PostgresRecordStore struct {
	db *sql.DB

	mu          sync.RWMutex
	subscribers []func(models.Record)
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

// Schema is the DDL for the record log. Seq is a local sequence: it
// reflects this replica's arrival order and is never shipped to peers.
// Payload is BYTEA, not JSONB: the content address covers the exact
// bytes, and JSONB normalization would break Verify on read-back.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
	id      TEXT PRIMARY KEY,
	kind    TEXT NOT NULL,
	author  UUID NOT NULL,
	owner   UUID NOT NULL,
	payload BYTEA NOT NULL,
	seq     BIGSERIAL
);
CREATE INDEX IF NOT EXISTS records_kind_seq_idx ON records (kind, seq);
CREATE INDEX IF NOT EXISTS records_kind_owner_seq_idx ON records (kind, owner, seq);
`

// EnsureSchema creates the records table if it does not exist.
func (s *PostgresRecordStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure records schema: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresRecordStore) Put(ctx context.Context, rec models.Record) (models.RecordID, error) {
	if err := validateRecord(rec); err != nil {
		return "", err
	}
	owner, err := models.OwnerOf(rec)
	if err != nil {
		return "", err
	}

	var seq uint64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO records (id, kind, author, owner, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
		RETURNING seq
	`, string(rec.ID), string(rec.Kind), uuid.UUID(rec.Author), uuid.UUID(owner), []byte(rec.Payload)).Scan(&seq)
	if err == sql.ErrNoRows {
		// Duplicate: already accepted, nothing to notify.
		return rec.ID, nil
	}
	if err != nil {
		return "", fmt.Errorf("append record: %w: %w", sentinel.ErrUnavailable, err)
	}

	rec.Seq = seq
	s.mu.RLock()
	subs := s.subscribers
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(rec)
	}
	return rec.ID, nil
}

func (s *PostgresRecordStore) GetAll(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, author, payload, seq
		FROM records
		WHERE kind = $1
		ORDER BY seq
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("get records by kind: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresRecordStore) GetForOwner(ctx context.Context, kind models.RecordKind, owner domain.AgentID) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, author, payload, seq
		FROM records
		WHERE kind = $1 AND owner = $2
		ORDER BY seq
	`, string(kind), uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("get records for owner: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresRecordStore) Contains(ctx context.Context, id models.RecordID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE id = $1)`, string(id)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check record presence: %w: %w", sentinel.ErrUnavailable, err)
	}
	return exists, nil
}

func (s *PostgresRecordStore) IDs(ctx context.Context) ([]models.RecordID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	var ids []models.RecordID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan record id: %w", err)
		}
		ids = append(ids, models.RecordID(id))
	}
	return ids, rows.Err()
}

// Missing returns which of the given content addresses are absent from the
// log. The replication layer uses this to request only the records a peer
// has that we lack, instead of shipping full snapshots.
func (s *PostgresRecordStore) Missing(ctx context.Context, ids []models.RecordID) ([]models.RecordID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	candidates := make([]string, len(ids))
	for i, id := range ids {
		candidates[i] = string(id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate
		FROM unnest($1::text[]) AS candidate
		WHERE NOT EXISTS (SELECT 1 FROM records WHERE records.id = candidate)
	`, pq.Array(candidates))
	if err != nil {
		return nil, fmt.Errorf("diff record ids: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	var missing []models.RecordID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan missing id: %w", err)
		}
		missing = append(missing, models.RecordID(id))
	}
	return missing, rows.Err()
}

func (s *PostgresRecordStore) Subscribe(fn func(models.Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	var out []models.Record
	for rows.Next() {
		var (
			id      string
			kind    string
			author  uuid.UUID
			payload []byte
			seq     uint64
		)
		if err := rows.Scan(&id, &kind, &author, &payload, &seq); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, models.Record{
			ID:      models.RecordID(id),
			Kind:    models.RecordKind(kind),
			Author:  domain.AgentID(author),
			Payload: payload,
			Seq:     seq,
		})
	}
	return out, rows.Err()
}
