package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/freightdesk/backoffice/pkg/store"
)

// Store is a store.Store persisted in one SQL table.
type Store[T store.Record] struct {
	conn    *Conn
	table   string
	mapper  RowMapper[T]
	stmts   statements
	version atomic.Uint64
}

// New creates a store over table. The table name is trusted input.
func New[T store.Record](conn *Conn, table string, mapper RowMapper[T]) *Store[T] {
	return &Store[T]{
		conn:   conn,
		table:  table,
		mapper: mapper,
		stmts:  buildStatements(conn.Dialect(), table, mapper.Columns()),
	}
}

// EnsureSchema creates the table when it does not exist.
func (s *Store[T]) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, s.mapper.DDL(s.conn.Dialect(), s.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// SeedIfEmpty inserts records when the table holds no rows. It reports
// whether rows were inserted.
func (s *Store[T]) SeedIfEmpty(ctx context.Context, records []T) (bool, error) {
	seeded := false
	err := s.conn.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, r := range records {
			if err := s.insert(ctx, r); err != nil {
				return err
			}
		}
		seeded = len(records) > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		s.version.Add(1)
	}
	return seeded, nil
}

// Snapshot implements store.Store. Rows are ordered by id.
func (s *Store[T]) Snapshot(ctx context.Context) ([]T, error) {
	ctx, cancel := s.conn.withQueryTimeout(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, s.stmts.selectAll)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		r, err := s.mapper.Scan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", s.table, err)
	}
	return out, nil
}

// Get implements store.Store.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	ctx, cancel := s.conn.withQueryTimeout(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, s.stmts.selectOne, id)
	if err != nil {
		return zero, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, fmt.Errorf("failed to read %s row: %w", s.table, err)
		}
		return zero, fmt.Errorf("get %q: %w", id, store.ErrNotFound)
	}
	r, err := s.mapper.Scan(rows.Scan)
	if err != nil {
		return zero, fmt.Errorf("failed to scan %s row: %w", s.table, err)
	}
	return r, nil
}

// Create implements store.Store.
func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if record.RecordID() == "" {
		return zero, fmt.Errorf("create: %w: empty id", store.ErrInvalid)
	}
	if err := s.insert(ctx, record); err != nil {
		return zero, err
	}
	s.version.Add(1)
	return record, nil
}

// Update implements store.Store.
func (s *Store[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	if err := s.update(ctx, record); err != nil {
		return zero, err
	}
	s.version.Add(1)
	return record, nil
}

// UpdateMany implements store.Batcher in a single transaction.
func (s *Store[T]) UpdateMany(ctx context.Context, records []T) error {
	err := s.conn.WithTransaction(ctx, func(ctx context.Context) error {
		for _, r := range records {
			if err := s.update(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.version.Add(1)
	return nil
}

// Delete implements store.Store.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, s.stmts.delete, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", s.table, err)
	}
	if err := expectRow(res, "delete", id); err != nil {
		return err
	}
	s.version.Add(1)
	return nil
}

// Version implements store.Store. It counts mutations made through this
// instance only.
func (s *Store[T]) Version() uint64 {
	return s.version.Load()
}

func (s *Store[T]) insert(ctx context.Context, record T) error {
	args, err := s.mapper.Values(record)
	if err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx, s.stmts.insert, args...); err != nil {
		if s.conn.Dialect().IsConflict(err) {
			return fmt.Errorf("create %q: %w", record.RecordID(), store.ErrConflict)
		}
		return fmt.Errorf("failed to insert into %s: %w", s.table, err)
	}
	return nil
}

func (s *Store[T]) update(ctx context.Context, record T) error {
	values, err := s.mapper.Values(record)
	if err != nil {
		return err
	}
	args := append(values[1:len(values):len(values)], values[0])
	res, err := s.conn.ExecContext(ctx, s.stmts.update, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", s.table, err)
	}
	return expectRow(res, "update", record.RecordID())
}

func (s *Store[T]) count(ctx context.Context) (int, error) {
	rows, err := s.conn.QueryContext(ctx, s.stmts.count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.table, err)
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to count %s: %w", s.table, err)
		}
	}
	return n, rows.Err()
}

func expectRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, store.ErrNotFound)
	}
	return nil
}
