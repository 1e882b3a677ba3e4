package diff

import (
	"regexp"
	"strings"
)

var typeModifierPattern = regexp.MustCompile(`\s*\([^)]*\)`)

// DatabaseTypeMapper maps vendor-specific type names onto canonical
// cross-vendor labels so that schemas from different engines can be
// compared. Unknown types normalize to their uppercased base name.
type DatabaseTypeMapper struct {
	byVendorType map[string]string
	numericTypes map[string]bool
}

// NewDatabaseTypeMapper returns a mapper seeded with the type names of
// PostgreSQL, MySQL and SQL Server.
func NewDatabaseTypeMapper() *DatabaseTypeMapper {
	m := &DatabaseTypeMapper{
		byVendorType: make(map[string]string),
		numericTypes: make(map[string]bool),
	}

	m.AddNumericType("SMALLINT", "smallint", "int2", "tinyint")
	m.AddNumericType("INTEGER", "integer", "int", "int4", "mediumint")
	m.AddNumericType("BIGINT", "bigint", "int8")
	m.AddNumericType("REAL", "real", "float4")
	m.AddNumericType("DOUBLE PRECISION", "double precision", "float8", "double", "float")
	m.AddNumericType("NUMERIC", "numeric", "decimal", "dec", "money", "smallmoney")

	m.AddMapping("TEXT",
		"varchar", "character varying", "char", "character", "bpchar",
		"nvarchar", "nchar", "ntext", "text", "name",
		"longtext", "mediumtext", "tinytext")
	m.AddMapping("BOOLEAN", "boolean", "bool", "bit")
	m.AddMapping("TIMESTAMP",
		"timestamp", "timestamp without time zone", "timestamp with time zone",
		"timestamptz", "datetime", "datetime2", "smalldatetime", "datetimeoffset")
	m.AddMapping("DATE", "date")
	m.AddMapping("TIME", "time", "time without time zone", "time with time zone", "timetz")
	m.AddMapping("UUID", "uuid", "uniqueidentifier")
	m.AddMapping("JSON", "json", "jsonb")
	m.AddMapping("BYTEA",
		"bytea", "blob", "binary", "varbinary", "image",
		"longblob", "mediumblob", "tinyblob")

	return m
}

// AddMapping registers vendor type names for a canonical label.
func (m *DatabaseTypeMapper) AddMapping(canonical string, vendorNames ...string) {
	for _, name := range vendorNames {
		m.byVendorType[name] = canonical
	}
}

// AddNumericType registers vendor type names for a canonical label and
// marks the label numeric, making its columns eligible for metrics.
func (m *DatabaseTypeMapper) AddNumericType(canonical string, vendorNames ...string) {
	m.AddMapping(canonical, vendorNames...)
	m.numericTypes[canonical] = true
}

// Normalize maps a vendor type name to its canonical label. Length and
// precision modifiers are ignored, so "varchar(255)" and
// "numeric(10,2)" normalize like their base types.
func (m *DatabaseTypeMapper) Normalize(vendorType string) string {
	stripped := typeModifierPattern.ReplaceAllString(vendorType, "")
	stripped = strings.Join(strings.Fields(stripped), " ")
	key := strings.ToLower(stripped)

	if canonical, ok := m.byVendorType[key]; ok {
		return canonical
	}
	return strings.ToUpper(stripped)
}

// IsNumeric reports whether a canonical label is a numeric type.
func (m *DatabaseTypeMapper) IsNumeric(canonical string) bool {
	return m.numericTypes[canonical]
}
