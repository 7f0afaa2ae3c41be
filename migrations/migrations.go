// Package migrations embeds the SQL schema and applies it in filename order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

const (
	queryEnsureTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	queryIsApplied = `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`
	queryRecord    = `INSERT INTO schema_migrations (name) VALUES ($1)`
	queryForget    = `DELETE FROM schema_migrations WHERE name = $1`
)

// returns the embedded migration names for a direction, in apply order
func Names(down bool) ([]string, error) {
	suffix := ".up.sql"
	if down {
		suffix = ".down.sql"
	}

	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}

	var names []string

	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	if down {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}

	return names, nil
}

// applies pending migrations and returns how many ran
func Apply(ctx context.Context, db *pgxpool.Pool, down bool) (int, error) {
	if _, err := db.Exec(ctx, queryEnsureTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := Names(down)
	if err != nil {
		return 0, err
	}

	applied := 0

	for _, name := range names {
		key := strings.TrimSuffix(strings.TrimSuffix(name, ".up.sql"), ".down.sql")

		var done bool
		if err := db.QueryRow(ctx, queryIsApplied, key).Scan(&done); err != nil {
			return applied, fmt.Errorf("failed to check %s: %w", name, err)
		}

		// up runs what is missing, down undoes what is present
		if done != down {
			continue
		}

		sql, err := files.ReadFile(name)
		if err != nil {
			return applied, err
		}

		tx, err := db.Begin(ctx)
		if err != nil {
			return applied, err
		}

		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			tx.Rollback(ctx) //nolint:errcheck,gosec
			return applied, fmt.Errorf("failed to apply %s: %w", name, err)
		}

		record := queryRecord
		if down {
			record = queryForget
		}

		if _, err := tx.Exec(ctx, record, key); err != nil {
			tx.Rollback(ctx) //nolint:errcheck,gosec
			return applied, err
		}

		if err := tx.Commit(ctx); err != nil {
			return applied, err
		}

		applied++
	}

	return applied, nil
}
