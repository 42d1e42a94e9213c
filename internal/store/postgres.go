package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/sirupsen/logrus"

	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

const pgUniqueViolation = "23505"

const anchorsSchema = `
CREATE TABLE IF NOT EXISTS anchors (
	stream_id        TEXT        NOT NULL,
	position         BIGINT      NOT NULL,
	anchor_hash      BYTEA       NOT NULL,
	predecessor_hash BYTEA       NOT NULL,
	body             BYTEA       NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (stream_id, position)
)`

// PostgresStreams stores one row per anchor. The primary key on
// (stream_id, position) is the compare-and-swap: two writers that read the
// same head both try to insert the same position and one of them loses.
type PostgresStreams struct {
	db  *sql.DB
	log *logrus.Logger
}

var (
	_ domain.StreamStore   = (*PostgresStreams)(nil)
	_ domain.StreamCatalog = (*PostgresStreams)(nil)
)

// OpenPostgres connects with the pgx driver and pings.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// NewPostgresStreams wraps db. Call Migrate once before use.
func NewPostgresStreams(db *sql.DB, log *logrus.Logger) *PostgresStreams {
	if log == nil {
		log = logrus.New()
	}
	return &PostgresStreams{db: db, log: log}
}

// Migrate creates the anchors table if needed.
func (p *PostgresStreams) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, anchorsSchema)
	return err
}

// LoadStream reads the anchors of id in position order.
func (p *PostgresStreams) LoadStream(ctx context.Context, id domain.StreamID) ([]domain.Anchor, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT position, body FROM anchors WHERE stream_id = $1 ORDER BY position`, string(id))
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", id, err)
	}
	defer rows.Close()

	var out []domain.Anchor
	for rows.Next() {
		var (
			pos  int64
			body []byte
		)
		if err := rows.Scan(&pos, &body); err != nil {
			return nil, err
		}
		if pos != int64(len(out)) {
			return nil, fmt.Errorf("stream %s: gap at position %d: %w", id, len(out), domain.ErrChainBroken)
		}
		a, err := wire.UnmarshalAnchor(body)
		if err != nil {
			return nil, fmt.Errorf("stream %s position %d: %w", id, pos, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PersistAnchor inserts a at the next position if it extends the head.
func (p *PostgresStreams) PersistAnchor(ctx context.Context, id domain.StreamID, a domain.Anchor) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		pos  int64
		head = headOf(id, nil)
		last []byte
	)
	err = tx.QueryRowContext(ctx,
		`SELECT position, anchor_hash FROM anchors WHERE stream_id = $1 ORDER BY position DESC LIMIT 1`,
		string(id)).Scan(&pos, &last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		pos = -1
	case err != nil:
		return fmt.Errorf("read head of %s: %w", id, err)
	default:
		copy(head[:], last)
	}
	next := pos + 1
	if err := checkExtends(id, head, int(next), a); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO anchors (stream_id, position, anchor_hash, predecessor_hash, body) VALUES ($1, $2, $3, $4, $5)`,
		string(id), next, a.Hash[:], a.PredecessorHash[:], wire.MarshalAnchor(a))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.AtPosition(int(next), fmt.Errorf("stream %s: concurrent append: %w", id, domain.ErrConflict))
	}
	if err != nil {
		return fmt.Errorf("insert anchor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{"stream_id": id, "position": next}).Debug("anchor persisted")
	return nil
}

// ListStreams returns every stream with at least one anchor.
func (p *PostgresStreams) ListStreams(ctx context.Context) ([]domain.StreamID, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT DISTINCT stream_id FROM anchors ORDER BY stream_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []domain.StreamID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domain.StreamID(id))
	}
	return ids, rows.Err()
}
