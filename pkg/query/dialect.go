package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the SQL flavor a query is rendered for.
// Queries are written with PostgreSQL-style $N placeholders and
// rewritten per dialect by Rebind.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// ParseDialect maps a database driver name to its Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Postgres, fmt.Errorf("unsupported dialect: %q", driver)
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// Like returns the case-insensitive pattern match operator.
// SQLite LIKE is case-insensitive for ASCII by default.
func (d Dialect) Like() string {
	if d == SQLite {
		return "LIKE"
	}
	return "ILIKE"
}

// TimeValue converts t into the bind value stored for timestamp columns.
// SQLite timestamps are stored as unix microseconds.
func (d Dialect) TimeValue(t time.Time) any {
	if d == SQLite {
		return t.UTC().UnixMicro()
	}
	return t.UTC()
}

// Rebind rewrites $N placeholders for the dialect. PostgreSQL queries are
// returned unchanged. For SQLite each $N becomes a positional ? and args
// are expanded in order of appearance, so a placeholder may be reused.
func (d Dialect) Rebind(q string, args []any) (string, []any) {
	if d != SQLite {
		return q, args
	}

	var sb strings.Builder
	sb.Grow(len(q))
	bound := make([]any, 0, len(args))

	for i := 0; i < len(q); i++ {
		if q[i] != '$' {
			sb.WriteByte(q[i])
			continue
		}

		j := i + 1
		for j < len(q) && q[j] >= '0' && q[j] <= '9' {
			j++
		}

		n, err := strconv.Atoi(q[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			sb.WriteByte(q[i])
			continue
		}

		sb.WriteByte('?')
		bound = append(bound, args[n-1])
		i = j - 1
	}

	return sb.String(), bound
}
