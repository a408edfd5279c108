// internal/search/postgres/translate.go
package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"listing-search-workers/internal/search/filter"
)

// Clause is a parameterized WHERE fragment.
type Clause struct {
	SQL  string
	Args []interface{}
}

// Translate renders constraints as a conjunction using $n placeholders
// starting at $1. An empty constraint list yields an empty SQL string.
func Translate(c filter.Constraints) (Clause, error) {
	var parts []string
	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, item := range c.Items {
		col := string(item.Field)
		switch item.Op {
		case filter.OpText:
			p := next("%" + escapeLike(item.Text) + "%")
			cols := filter.TextColumns(item.Field)
			if len(cols) == 0 {
				return Clause{}, fmt.Errorf("no text columns for field %q", item.Field)
			}
			ors := make([]string, len(cols))
			for i, tc := range cols {
				ors[i] = fmt.Sprintf("%s ILIKE %s", tc, p)
			}
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		case filter.OpGTE:
			parts = append(parts, fmt.Sprintf("%s >= %s", col, next(item.Number)))
		case filter.OpLTE:
			parts = append(parts, fmt.Sprintf("%s <= %s", col, next(item.Number)))
		case filter.OpEq:
			parts = append(parts, fmt.Sprintf("LOWER(%s) = %s", col, next(strings.ToLower(item.Text))))
		case filter.OpHasAll:
			parts = append(parts, fmt.Sprintf("%s @> %s", col, next(pq.StringArray(item.Values))))
		case filter.OpHasAny:
			parts = append(parts, fmt.Sprintf("%s && %s", col, next(pq.StringArray(item.Values))))
		case filter.OpIn:
			parts = append(parts, fmt.Sprintf("%s = ANY(%s)", col, next(pq.StringArray(item.Values))))
		case filter.OpIsTrue:
			parts = append(parts, fmt.Sprintf("%s = TRUE", col))
		default:
			return Clause{}, fmt.Errorf("unsupported operator %q on %q", item.Op, item.Field)
		}
	}

	return Clause{SQL: strings.Join(parts, " AND "), Args: args}, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
