package sqlstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Dialect captures the differences between the supported SQL databases.
type Dialect interface {
	Name() string
	// Placeholder returns the bind parameter for the n-th argument, 1-based.
	Placeholder(n int) string
	// JSONType is the column type used for JSON documents.
	JSONType() string
	// IsConflict reports whether err is a unique constraint violation.
	IsConflict(err error) bool
}

// RowMapper converts records to and from table rows.
type RowMapper[T any] interface {
	// Columns lists the table columns. The first one holds the record id.
	Columns() []string
	// Values returns the column values of record in Columns order.
	Values(record T) ([]any, error)
	// Scan reads one row selected with Columns.
	Scan(scan func(dest ...any) error) (T, error)
	// DDL returns the statement creating the table if it does not exist.
	DDL(d Dialect, table string) string
}

// JSONMapper stores each record as a JSON document next to its id.
type JSONMapper[T interface{ RecordID() string }] struct{}

// Columns implements RowMapper.
func (JSONMapper[T]) Columns() []string { return []string{"id", "body"} }

// Values implements RowMapper.
func (JSONMapper[T]) Values(record T) ([]any, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record %q: %w", record.RecordID(), err)
	}
	return []any{record.RecordID(), string(body)}, nil
}

// Scan implements RowMapper.
func (JSONMapper[T]) Scan(scan func(dest ...any) error) (T, error) {
	var (
		record T
		id     string
		body   []byte
	)
	if err := scan(&id, &body); err != nil {
		return record, err
	}
	if err := json.Unmarshal(body, &record); err != nil {
		return record, fmt.Errorf("failed to decode record %q: %w", id, err)
	}
	return record, nil
}

// DDL implements RowMapper.
func (JSONMapper[T]) DDL(d Dialect, table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id VARCHAR(191) PRIMARY KEY, body %s NOT NULL)", table, d.JSONType())
}

type statements struct {
	selectAll string
	selectOne string
	count     string
	insert    string
	update    string
	delete    string
}

func buildStatements(d Dialect, table string, columns []string) statements {
	id := columns[0]
	cols := strings.Join(columns, ", ")

	insertArgs := make([]string, len(columns))
	for i := range columns {
		insertArgs[i] = d.Placeholder(i + 1)
	}
	sets := make([]string, 0, len(columns)-1)
	for i, c := range columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = %s", c, d.Placeholder(i+1)))
	}

	return statements{
		selectAll: fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", cols, table, id),
		selectOne: fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", cols, table, id, d.Placeholder(1)),
		count:     fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
		insert:    fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, strings.Join(insertArgs, ", ")),
		update:    fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", table, strings.Join(sets, ", "), id, d.Placeholder(len(columns))),
		delete:    fmt.Sprintf("DELETE FROM %s WHERE %s = %s", table, id, d.Placeholder(1)),
	}
}
