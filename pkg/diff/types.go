// Package diff implements the vendor-neutral comparison core: schema
// normalization, column set comparison and metric diffing. It has no
// database dependencies; adapters feed it raw column metadata and
// aggregate values.
package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// RawColumn is a column as reported by a database catalog, before any
// type normalization.
type RawColumn struct {
	Name string
	Type string
}

// Column is a schema column with its vendor type and the normalized
// cross-vendor label derived from it.
type Column struct {
	Name           string
	SourceType     string
	NormalizedType string
	IsNumeric      bool
}

// SchemaInfo is the normalized schema of one table. Columns keep the
// catalog's ordinal order.
type SchemaInfo struct {
	Columns []Column
}

// BuildSchemaInfo normalizes raw catalog columns through mapper.
func BuildSchemaInfo(cols []RawColumn, mapper *DatabaseTypeMapper) SchemaInfo {
	out := SchemaInfo{Columns: make([]Column, 0, len(cols))}
	for _, c := range cols {
		normalized := mapper.Normalize(c.Type)
		out.Columns = append(out.Columns, Column{
			Name:           c.Name,
			SourceType:     c.Type,
			NormalizedType: normalized,
			IsNumeric:      mapper.IsNumeric(normalized),
		})
	}
	return out
}

// HasColumn reports whether the schema contains a column with the name.
func (s SchemaInfo) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// TypeOf returns the normalized type of the named column, or "" when
// the column is absent.
func (s SchemaInfo) TypeOf(name string) string {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.NormalizedType
		}
	}
	return ""
}

// SourceTypeOf returns the vendor type of the named column, or "" when
// the column is absent.
func (s SchemaInfo) SourceTypeOf(name string) string {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.SourceType
		}
	}
	return ""
}

// NumericColumns returns the names of all numeric columns, sorted.
func (s SchemaInfo) NumericColumns() []string {
	var names []string
	for _, c := range s.Columns {
		if c.IsNumeric {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}

// ColumnType is one column name with its vendor type.
type ColumnType struct {
	Name string
	Type string
}

// ColumnTypeMap is an ordered column name to vendor type mapping. It
// marshals as a JSON object whose keys follow catalog ordinal order.
type ColumnTypeMap []ColumnType

// ColumnTypeMap returns the schema's name to vendor type mapping in
// catalog order.
func (s SchemaInfo) ColumnTypeMap() ColumnTypeMap {
	out := make(ColumnTypeMap, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, ColumnType{Name: c.Name, Type: c.SourceType})
	}
	return out
}

// MarshalJSON renders the mapping as an object, preserving column order.
func (m ColumnTypeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ct := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ct.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ct.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object into the mapping, keeping the keys in
// document order.
func (m *ColumnTypeMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object for column type map, got %v", tok)
	}

	out := ColumnTypeMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		out = append(out, ColumnType{Name: key, Type: val})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}
