package records

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maraichr/imagesync/internal/config"
)

// PostgresSource reads records from a single table. Field names are used as
// column names.
type PostgresSource struct {
	pool   *pgxpool.Pool
	table  string
	fields Fields
}

func NewPostgresSource(ctx context.Context, cfg config.DatabaseConfig, table string, fields Fields) (*PostgresSource, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresSource{pool: pool, table: table, fields: fields}, nil
}

func (s *PostgresSource) query() string {
	return fmt.Sprintf("SELECT %s::text, %s::text, %s::text FROM %s",
		pgx.Identifier{s.fields.ID}.Sanitize(),
		pgx.Identifier{s.fields.URL}.Sanitize(),
		pgx.Identifier{s.fields.Name}.Sanitize(),
		pgx.Identifier{s.table}.Sanitize())
}

func (s *PostgresSource) Each(ctx context.Context, fn func(Record) error) error {
	rows, err := s.pool.Query(ctx, s.query())
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var url, name *string
		if err := rows.Scan(&id, &url, &name); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}

		rec := Record{ID: id}
		if name != nil {
			rec.Name = *name
		}
		if url != nil {
			rec.URL, rec.HasURL = urlValue(*url)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate records: %w", err)
	}
	return nil
}

func (s *PostgresSource) Close(context.Context) error {
	s.pool.Close()
	return nil
}
