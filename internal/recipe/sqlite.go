package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
)

const sqliteDriver = "sqlite"

// sqlite caps bound parameters per statement; stay well below it.
const sqliteBatch = 500

// SQLiteStore keeps records as JSON text in a single embedded table. It is
// the default local backend and needs no external service.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteStore, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id   TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating recipe table: %w", err)
	}
	return &SQLiteStore{db: db, table: table}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Recipe, error) {
	var data []byte
	query := fmt.Sprintf("SELECT data FROM %s WHERE id = ?", s.table)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying recipe %s: %w", id, err)
	}
	return Decode(data)
}

func (s *SQLiteStore) GetMany(ctx context.Context, ids []string) (map[string]*Recipe, error) {
	ids = dedupe(ids)
	out := make(map[string]*Recipe, len(ids))
	for start := 0; start < len(ids); start += sqliteBatch {
		end := min(start+sqliteBatch, len(ids))
		if err := s.fetch(ctx, ids[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) fetch(ctx context.Context, ids []string, out map[string]*Recipe) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf("SELECT id, data FROM %s WHERE id IN (%s)", s.table, placeholders)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("scanning recipe row: %w", err)
		}
		r, err := Decode(data)
		if err != nil {
			return fmt.Errorf("recipe %s: %w", id, err)
		}
		out[id] = r
	}
	return rows.Err()
}

// Put upserts recipes in one transaction.
func (s *SQLiteStore) Put(ctx context.Context, recipes []*Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data", s.table))
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recipes {
		data, err := Encode(r)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.ID(), string(data)); err != nil {
			return fmt.Errorf("upserting recipe %s: %w", r.ID(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing recipes: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }
