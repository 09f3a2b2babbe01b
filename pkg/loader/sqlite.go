package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// SQLite sources hold two tables shaped like the flat build input:
//
//	parents(id, label, type, parent_id, show_checkbox)
//	children(id, label, type, parent_id, child_of, show_checkbox)
//
// Rows are read in rowid order, which is the order siblings appear in.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS parents (
	id            TEXT PRIMARY KEY,
	label         TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT '',
	parent_id     TEXT NOT NULL DEFAULT '',
	show_checkbox INTEGER
);
CREATE TABLE IF NOT EXISTS children (
	id            TEXT PRIMARY KEY,
	label         TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT '',
	parent_id     TEXT NOT NULL DEFAULT '',
	child_of      TEXT NOT NULL DEFAULT '',
	show_checkbox INTEGER
);`

// LoadSQLite reads the parents and children tables of the database at path
// concurrently and assembles them into a forest.
func LoadSQLite(ctx context.Context, path string) (model.Forest, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	var parents, children []model.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parents, err = queryRecords(gctx, db,
			`SELECT id, label, type, parent_id, '', show_checkbox FROM parents ORDER BY rowid`)
		return err
	})
	g.Go(func() error {
		var err error
		children, err = queryRecords(gctx, db,
			`SELECT id, label, type, parent_id, child_of, show_checkbox FROM children ORDER BY rowid`)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &FormatError{Path: path, Format: FormatSQLite, Cause: err}
	}

	doc := Document{Parents: parents, Children: children}
	forest, err := doc.Forest()
	if err != nil {
		return nil, &FormatError{Path: path, Format: FormatSQLite, Cause: err}
	}
	return forest, nil
}

func queryRecords(ctx context.Context, db *sql.DB, query string) ([]model.Record, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var (
			rec  model.Record
			show sql.NullBool
		)
		if err := rows.Scan(&rec.ID, &rec.Label, &rec.Type, &rec.ParentID, &rec.ChildOf, &show); err != nil {
			return nil, err
		}
		if show.Valid {
			v := show.Bool
			rec.ShowCheckbox = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveSQLite writes parent and child records to a database at path,
// creating the tables if needed. Existing rows with the same ids are
// replaced.
func SaveSQLite(ctx context.Context, path string, parents, children []model.Record) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for _, rec := range parents {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO parents (id, label, type, parent_id, show_checkbox) VALUES (?, ?, ?, ?, ?)`,
			string(rec.ID), rec.Label, rec.Type, string(rec.ParentID), nullBool(rec.ShowCheckbox)); err != nil {
			return fmt.Errorf("insert parent %s: %w", rec.ID, err)
		}
	}
	for _, rec := range children {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO children (id, label, type, parent_id, child_of, show_checkbox) VALUES (?, ?, ?, ?, ?, ?)`,
			string(rec.ID), rec.Label, rec.Type, string(rec.ParentID), string(rec.ChildOf), nullBool(rec.ShowCheckbox)); err != nil {
			return fmt.Errorf("insert child %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
