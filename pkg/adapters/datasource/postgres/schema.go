package postgres

import (
	"context"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

// Columns returns the table's columns from the catalog in ordinal
// order. An empty result means the table does not exist in the
// connection's current schema.
func (a *Adapter) Columns(ctx context.Context, table string) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT c.column_name, c.data_type, c.ordinal_position
		FROM information_schema.columns c
		WHERE c.table_name = $1
		  AND c.table_schema = current_schema()
		ORDER BY c.ordinal_position
	`

	rows, err := a.pool.Query(ctx, query, table)
	if err != nil {
		return nil, apperrors.QueryFailed(table, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var col datasource.ColumnMetadata
		if err := rows.Scan(&col.Name, &col.DataType, &col.OrdinalPosition); err != nil {
			return nil, apperrors.QueryFailed(table, err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.QueryFailed(table, err)
	}

	return columns, nil
}
