package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coco/coco/internal/domain/codes"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates a Postgres-backed catalog repository over the
// catalog_icd / catalog_ops / catalog_loinc reference tables.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Entries(ctx context.Context, system codes.ResourceType) ([]*Entry, error) {
	table := tableFor(system)
	if table == "" {
		return nil, ErrCatalogUnavailable
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT code, COALESCE(display,''), COALESCE(chapter_code,''),
		        COALESCE(chapter_name,''), COALESCE(group_code,''), COALESCE(group_name,'')
		 FROM %s ORDER BY code`, table))
	if err != nil {
		// Missing reference table means the catalog was never imported.
		return nil, ErrCatalogUnavailable
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Code, &e.Display, &e.ChapterCode, &e.ChapterName, &e.GroupCode, &e.GroupName); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	if len(entries) == 0 {
		return nil, ErrCatalogUnavailable
	}
	return entries, nil
}

// Importer writes catalog rows into the reference tables. Used by the
// `catalog import` CLI command.
type Importer struct{ pool *pgxpool.Pool }

// NewImporter creates a catalog importer over the given pool.
func NewImporter(pool *pgxpool.Pool) *Importer { return &Importer{pool: pool} }

// Replace creates the system's reference table if needed and replaces its
// contents with the given entries in one transaction.
func (im *Importer) Replace(ctx context.Context, system codes.ResourceType, entries []*Entry) error {
	table := tableFor(system)
	if table == "" {
		return fmt.Errorf("no catalog table for system %q", system)
	}

	tx, err := im.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			code TEXT PRIMARY KEY,
			display TEXT,
			chapter_code TEXT,
			chapter_name TEXT,
			group_code TEXT,
			group_name TEXT
		)`, table))
	if err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Code, e.Display, e.ChapterCode, e.ChapterName, e.GroupCode, e.GroupName})
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{table},
		[]string{"code", "display", "chapter_code", "chapter_name", "group_code", "group_name"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
