// Package apperrors defines the tagged error taxonomy surfaced by the
// comparison engine. The HTTP layer dispatches on these sentinels with
// errors.Is and renders err.Error() as the human-readable description.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/tablediff-io/tablediff-engine/pkg/logging"
)

var (
	ErrConnection    = errors.New("connection failed")
	ErrTableNotFound = errors.New("table not found")
	ErrInvalidColumn = errors.New("invalid column")
	ErrQuery         = errors.New("query failed")
)

// ConnectionFailed wraps a driver connection error. The descriptor and the
// driver error are sanitized so credentials never reach logs or responses.
func ConnectionFailed(descriptor string, err error) error {
	return fmt.Errorf("%w: could not connect to database with connection string %s: %s",
		ErrConnection, logging.SanitizeConnectionString(descriptor), logging.SanitizeError(err))
}

// TableNotFound reports a table that is absent on the given connection.
func TableNotFound(table, descriptor string) error {
	return fmt.Errorf("%w: table name %s does not exist on %s",
		ErrTableNotFound, table, logging.SanitizeConnectionString(descriptor))
}

// InvalidColumn reports a metrics request for a column that is not a
// numeric column of the table.
func InvalidColumn(column, table string) error {
	return fmt.Errorf("%w: column %s is not a numeric column of table %s",
		ErrInvalidColumn, column, table)
}

// InvalidIdentifier reports a table or column name rejected before query
// construction.
func InvalidIdentifier(kind, name string) error {
	return fmt.Errorf("%w: %s name %q contains disallowed SQL content", ErrQuery, kind, name)
}

// QueryFailed wraps an execution failure on an otherwise valid connection.
func QueryFailed(table string, err error) error {
	return fmt.Errorf("%w: querying table %s: %s", ErrQuery, table, logging.SanitizeError(err))
}

// IsComparisonError reports whether err belongs to the engine taxonomy and
// should therefore surface as a 400 with its description.
func IsComparisonError(err error) bool {
	return errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrTableNotFound) ||
		errors.Is(err, ErrInvalidColumn) ||
		errors.Is(err, ErrQuery)
}
