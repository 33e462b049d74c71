// Package sqlparse classifies SQL statements and renders queries with their
// bind parameters for diagnostics.
package sqlparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// IsSchemaMutation reports whether sql contains a statement that may change
// table definitions (and therefore primary keys).
func IsSchemaMutation(sql string) bool {
	tree, err := pg_query.Parse(sql)
	if err != nil || tree == nil {
		return isSchemaMutationFallback(sql)
	}

	for _, raw := range tree.GetStmts() {
		if mutatesSchema(raw.GetStmt()) {
			return true
		}
	}
	return false
}

func mutatesSchema(stmt *pg_query.Node) bool {
	if stmt == nil {
		return false
	}
	return stmt.GetCreateStmt() != nil ||
		stmt.GetCreateTableAsStmt() != nil ||
		stmt.GetAlterTableStmt() != nil ||
		stmt.GetDropStmt() != nil ||
		stmt.GetRenameStmt() != nil ||
		stmt.GetIndexStmt() != nil ||
		stmt.GetViewStmt() != nil
}

func isSchemaMutationFallback(sql string) bool {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	for _, prefix := range []string{"CREATE", "ALTER", "DROP"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// Interpolate replaces $1, $2, ... in sql with args rendered as SQL
// literals. Placeholders without a matching arg are left as written. The
// result is for logs and error messages only.
func Interpolate(sql string, args []any) string {
	if len(args) == 0 {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql))
	for i := 0; i < len(sql); i++ {
		if sql[i] != '$' {
			b.WriteByte(sql[i])
			continue
		}
		j := i + 1
		for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(sql[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			b.WriteString(sql[i:j])
		} else {
			b.WriteString(FormatArg(args[n-1]))
		}
		i = j - 1
	}
	return b.String()
}

// FormatArg renders a single bind argument as a SQL literal.
func FormatArg(v any) string {
	if v == nil {
		return "NULL"
	}
	switch x := v.(type) {
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case []byte:
		return quote(string(x))
	case string:
		return quote(x)
	case time.Time:
		return quote(x.Format("2006-01-02 15:04:05"))
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
