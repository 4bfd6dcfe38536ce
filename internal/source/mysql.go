package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/dbsmedya/cleanaudit/internal/config"
	"github.com/dbsmedya/cleanaudit/internal/dataset"
	"github.com/dbsmedya/cleanaudit/internal/sqlutil"
)

// errNoSuchTable is MySQL's ER_NO_SUCH_TABLE.
const errNoSuchTable = 1146

func (l *Loader) loadMySQL(ctx context.Context, role, table string) (*dataset.Table, error) {
	if l.db == nil {
		return nil, fmt.Errorf("input %s: %s%s requires a source database connection", role, config.MySQLScheme, table)
	}
	quoted, err := sqlutil.QuoteTableRef(table)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", role, err)
	}

	rows, err := l.db.QueryContext(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == errNoSuchTable {
			return nil, fmt.Errorf("%w: table %s", ErrInputNotFound, table)
		}
		return nil, fmt.Errorf("query %s failed: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get column names of %s: %w", table, err)
	}

	var data [][]dataset.Value
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		row := make([]dataset.Value, len(columns))
		for i, v := range values {
			row[i] = l.cellFromDriver(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", table, err)
	}
	return dataset.NewTable(role, columns, data)
}

// cellFromDriver converts a scanned driver value. Text goes through the
// missing tokens like file inputs do.
func (l *Loader) cellFromDriver(v interface{}) dataset.Value {
	switch x := v.(type) {
	case []byte:
		return dataset.ParseCell(string(x), l.inputs.MissingTokens)
	case string:
		return dataset.ParseCell(x, l.inputs.MissingTokens)
	default:
		return dataset.FromAny(v)
	}
}
