package postgres

import (
	"context"
	"fmt"
	"strings"

	"pgtx-coordinator/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const tableExistsQuery = `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2)`

const primaryKeyColumnsQuery = `SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
			AND kcu.table_name = tc.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY kcu.ordinal_position`

// Introspector implements ports.SchemaIntrospector over information_schema.
type Introspector struct {
	defaultSchema string
}

var _ ports.SchemaIntrospector = (*Introspector)(nil)

// NewIntrospector creates an Introspector resolving unqualified table names
// against defaultSchema.
func NewIntrospector(defaultSchema string) *Introspector {
	if defaultSchema == "" {
		defaultSchema = "public"
	}
	return &Introspector{defaultSchema: defaultSchema}
}

// PrimaryKeys returns the primary key columns of table in key order.
func (i *Introspector) PrimaryKeys(ctx context.Context, q ports.Querier, table string) ([]string, bool, error) {
	schema, name := i.split(table)

	rows, err := q.Query(ctx, tableExistsQuery, schema, name)
	if err != nil {
		return nil, false, fmt.Errorf("check table %s.%s: %w", schema, name, err)
	}
	exists, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return nil, false, fmt.Errorf("check table %s.%s: %w", schema, name, err)
	}
	if !exists {
		return nil, false, nil
	}

	rows, err = q.Query(ctx, primaryKeyColumnsQuery, schema, name)
	if err != nil {
		return nil, true, fmt.Errorf("list primary keys of %s.%s: %w", schema, name, err)
	}
	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, true, fmt.Errorf("list primary keys of %s.%s: %w", schema, name, err)
	}

	return columns, true, nil
}

func (i *Introspector) split(table string) (schema, name string) {
	table = strings.ReplaceAll(table, `"`, "")
	if dot := strings.IndexByte(table, '.'); dot >= 0 {
		return table[:dot], table[dot+1:]
	}
	return i.defaultSchema, table
}
