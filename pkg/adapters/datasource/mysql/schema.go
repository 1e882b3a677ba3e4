package mysql

import (
	"context"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

// Columns returns the table's columns from the catalog in ordinal
// order. DATA_TYPE is used rather than COLUMN_TYPE so modifiers like
// display width do not leak into type names. An empty result means the
// table does not exist in the connection's database.
func (a *Adapter) Columns(ctx context.Context, table string) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT c.COLUMN_NAME, c.DATA_TYPE, c.ORDINAL_POSITION
		FROM information_schema.columns c
		WHERE c.TABLE_NAME = ?
		  AND c.TABLE_SCHEMA = DATABASE()
		ORDER BY c.ORDINAL_POSITION
	`

	rows, err := a.db.QueryContext(ctx, query, table)
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
