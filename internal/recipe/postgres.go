package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/postgres"
)

// PostgresStore keeps records in a jsonb column.
type PostgresStore struct {
	client *postgres.Client
	table  string
}

// NewPostgresStore wraps an open client and ensures the table exists.
func NewPostgresStore(ctx context.Context, client *postgres.Client, table string) (*PostgresStore, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id   TEXT PRIMARY KEY,
		data JSONB NOT NULL
	)`, table)
	if _, err := client.DB.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("creating recipe table: %w", err)
	}
	return &PostgresStore{client: client, table: table}, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Recipe, error) {
	var data []byte
	query := fmt.Sprintf("SELECT data FROM %s WHERE id = $1", s.table)
	err := s.client.DB.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying recipe %s: %w", id, err)
	}
	return Decode(data)
}

func (s *PostgresStore) GetMany(ctx context.Context, ids []string) (map[string]*Recipe, error) {
	out := make(map[string]*Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf("SELECT id, data FROM %s WHERE id = ANY($1)", s.table)
	rows, err := s.client.DB.QueryContext(ctx, query, pq.Array(dedupe(ids)))
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}
		r, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", id, err)
		}
		out[id] = r
	}
	return out, rows.Err()
}

func (s *PostgresStore) Put(ctx context.Context, recipes []*Recipe) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data", s.table)
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
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
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *PostgresStore) Close() error { return s.client.Close() }
