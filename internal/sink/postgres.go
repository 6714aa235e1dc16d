package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// Executor is the subset of pgxpool.Pool the Postgres sink uses.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres upserts rows directly with INSERT ... ON CONFLICT. A merge only
// touches the row when a column actually changed, so RowsAffected tells an
// unchanged re-write (Skipped) from a real update (Accepted).
type Postgres struct {
	exec    Executor
	closeFn func()
}

// NewPostgres creates a Postgres sink over an executor. closeFn, if set, is
// called by Close (typically the pool's Close).
func NewPostgres(exec Executor, closeFn func()) *Postgres {
	return &Postgres{exec: exec, closeFn: closeFn}
}

// Write implements Sink.
func (s *Postgres) Write(ctx context.Context, row provider.Row) (Outcome, error) {
	sql, args := upsertSQL(row)
	tag, err := s.exec.Exec(ctx, sql, args...)
	if err != nil {
		werr := &WriteError{Table: row.Table.Name, Key: row.Key(), Message: err.Error()}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			werr.Code = pgErr.Code
			werr.Message = pgErr.Message
		}
		if werr.Conflict() {
			return Skipped, nil
		}
		return Failed, werr
	}
	if tag.RowsAffected() == 0 {
		return Skipped, nil
	}
	return Accepted, nil
}

// Close implements Sink.
func (s *Postgres) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// upsertSQL builds the statement for one row. Columns are sorted so the
// same row always yields the same statement text.
func upsertSQL(row provider.Row) (string, []interface{}) {
	cols := row.Columns()
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row.Values[c]
	}

	isKey := make(map[string]bool, len(row.Table.Key))
	keys := make([]string, len(row.Table.Key))
	for i, k := range row.Table.Key {
		isKey[k] = true
		keys[i] = pgx.Identifier{k}.Sanitize()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s AS t (%s) VALUES (%s) ON CONFLICT (%s) ",
		pgx.Identifier{row.Table.Name}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(keys, ", "))

	var sets, current, excluded []string
	for i, c := range cols {
		if isKey[c] {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", quoted[i], quoted[i]))
		current = append(current, "t."+quoted[i])
		excluded = append(excluded, "EXCLUDED."+quoted[i])
	}

	if row.Table.Policy == provider.IgnoreDuplicates || len(sets) == 0 {
		sb.WriteString("DO NOTHING")
		return sb.String(), args
	}
	fmt.Fprintf(&sb, "DO UPDATE SET %s WHERE (%s) IS DISTINCT FROM (%s)",
		strings.Join(sets, ", "),
		strings.Join(current, ", "),
		strings.Join(excluded, ", "))
	return sb.String(), args
}
