package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

// TableMetrics runs COUNT_BIG(*) plus the requested aggregates in a
// single statement per table. Aggregates are cast to FLOAT so every
// vendor numeric type scans uniformly; NULL results (empty table) are
// omitted from the result.
func (a *Adapter) TableMetrics(ctx context.Context, table string, columns []string, aggs []datasource.AggregateSpec) (*datasource.TableMetrics, error) {
	quotedTable := quoteIdent(table)

	result := &datasource.TableMetrics{
		Values: make(map[string]map[string]float64, len(aggs)),
	}
	for _, agg := range aggs {
		result.Values[agg.Metric] = make(map[string]float64, len(columns))
	}

	countQuery := fmt.Sprintf("SELECT COUNT_BIG(*) FROM %s", quotedTable)
	if err := a.db.QueryRowContext(ctx, countQuery).Scan(&result.RowCount); err != nil {
		return nil, apperrors.QueryFailed(table, err)
	}

	if len(columns) == 0 || len(aggs) == 0 {
		return result, nil
	}

	exprs := make([]string, 0, len(columns)*len(aggs))
	for _, col := range columns {
		quotedCol := quoteIdent(col)
		for _, agg := range aggs {
			exprs = append(exprs,
				fmt.Sprintf("CAST(%s AS FLOAT)", fmt.Sprintf(agg.Expression, quotedCol)))
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), quotedTable)

	vals := make([]sql.NullFloat64, len(exprs))
	dest := make([]any, len(exprs))
	for i := range vals {
		dest[i] = &vals[i]
	}

	if err := a.db.QueryRowContext(ctx, query).Scan(dest...); err != nil {
		return nil, apperrors.QueryFailed(table, err)
	}

	i := 0
	for _, col := range columns {
		for _, agg := range aggs {
			if vals[i].Valid {
				result.Values[agg.Metric][col] = vals[i].Float64
			}
			i++
		}
	}

	return result, nil
}
