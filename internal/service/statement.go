package service

import (
	"iter"

	"github.com/jackc/pgx/v5"
)

// Row is one fetched row with its column names.
type Row struct {
	columns []string
	values  []any
}

// Columns returns the column names in select order.
func (r Row) Columns() []string {
	return r.columns
}

// Values returns the row as an indexed sequence.
func (r Row) Values() []any {
	return r.values
}

// Map returns the row keyed by column name. With duplicate names the last
// column wins.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// Get returns the value of the named column.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Result is the buffered outcome of a statement. Rows are consumed forward
// only by Fetch, FetchNum and All.
type Result struct {
	columns  []string
	rows     [][]any
	affected int64
	pos      int
}

// collectResult drains rows into a Result. The rows are always closed.
func collectResult(rows pgx.Rows) (*Result, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	affected := rows.CommandTag().RowsAffected()
	if len(columns) > 0 {
		affected = int64(len(data))
	}

	return &Result{columns: columns, rows: data, affected: affected}, nil
}

// Columns returns the result column names.
func (r *Result) Columns() []string {
	return r.columns
}

// ColumnCount returns the number of result columns.
func (r *Result) ColumnCount() int {
	return len(r.columns)
}

// RowCount returns the number of rows returned or affected.
func (r *Result) RowCount() int64 {
	return r.affected
}

// Fetch returns the next row keyed by column name.
func (r *Result) Fetch() (map[string]any, bool) {
	row, ok := r.next()
	if !ok {
		return nil, false
	}
	return row.Map(), true
}

// FetchNum returns the next row as an indexed sequence.
func (r *Result) FetchNum() ([]any, bool) {
	row, ok := r.next()
	if !ok {
		return nil, false
	}
	return row.Values(), true
}

// FetchAll returns every remaining row keyed by column name.
func (r *Result) FetchAll() []map[string]any {
	out := make([]map[string]any, 0, len(r.rows)-r.pos)
	for row := range r.All() {
		out = append(out, row.Map())
	}
	return out
}

// All iterates over the remaining rows, consuming them.
func (r *Result) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for {
			row, ok := r.next()
			if !ok || !yield(row) {
				return
			}
		}
	}
}

func (r *Result) next() (Row, bool) {
	if r.pos >= len(r.rows) {
		return Row{}, false
	}
	row := Row{columns: r.columns, values: r.rows[r.pos]}
	r.pos++
	return row, true
}
