package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	kvTable      = "kv"
	historyTable = "kv_history"
)

// Revision is one historical value of a key.
type Revision struct {
	ID      int64
	Key     string
	Value   []byte
	SavedAt time.Time
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// Get implements KV.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b := builder()
	t := b.Table(kvTable)
	query, args := b.Select(t.C("value")).
		From(t).
		Where(entsql.EQ(t.C("key"), key)).
		Query()

	var value []byte
	if err := s.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV. Every written value is also appended to the history
// table, where it stays until pruned.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().UnixMilli()

	upsert, upsertArgs := builder().Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, now).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	hist, histArgs := builder().Insert(historyTable).
		Columns("key", "value", "saved_at").
		Values(key, value, now).
		Query()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, upsertArgs...); err != nil {
		tx.Rollback()
		return fmt.Errorf("save %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, hist, histArgs...); err != nil {
		tx.Rollback()
		return fmt.Errorf("record history %s: %w", key, err)
	}
	return tx.Commit()
}

// History returns up to limit revisions of key, newest first (0 = unlimited).
func (s *Store) History(ctx context.Context, key string, limit int) ([]Revision, error) {
	b := builder()
	t := b.Table(historyTable)
	sel := b.Select(t.C("id"), t.C("key"), t.C("value"), t.C("saved_at")).
		From(t).
		Where(entsql.EQ(t.C("key"), key)).
		OrderBy(entsql.Desc(t.C("id")))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", key, err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var (
			r       Revision
			savedAt int64
		)
		if err := rows.Scan(&r.ID, &r.Key, &r.Value, &savedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.SavedAt = time.UnixMilli(savedAt).UTC()
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// Prune deletes all but the keep most recent revisions of key.
func (s *Store) Prune(ctx context.Context, key string, keep int) error {
	b := builder()
	t := b.Table(historyTable)
	query, args := b.Select(t.C("id")).
		From(t).
		Where(entsql.EQ(t.C("key"), key)).
		OrderBy(entsql.Desc(t.C("id"))).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int64
	if err := s.db.GetContext(ctx, &threshold, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil // fewer than keep revisions exist
		}
		return fmt.Errorf("query history for prune: %w", err)
	}

	del, delArgs := builder().Delete(historyTable).
		Where(entsql.And(
			entsql.EQ("key", key),
			entsql.LTE("id", threshold),
		)).
		Query()
	if _, err := s.db.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}
