package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func schemaFrom(t *testing.T, cols []RawColumn) SchemaInfo {
	t.Helper()
	return BuildSchemaInfo(cols, NewDatabaseTypeMapper())
}

func TestCompareColumns(t *testing.T) {
	t.Parallel()

	s1 := schemaFrom(t, []RawColumn{
		{Name: "id", Type: "integer"},
		{Name: "owner_name", Type: "varchar(100)"},
		{Name: "nr_buildings", Type: "integer"},
		{Name: "gross_floor_area", Type: "double precision"},
	})
	s2 := schemaFrom(t, []RawColumn{
		{Name: "id", Type: "int"},
		{Name: "nr_buildings", Type: "bigint"},
		{Name: "gross_floor_area", Type: "double"},
		{Name: "city", Type: "text"},
	})

	d := CompareColumns(s1, s2)

	assert.Equal(t, []string{"owner_name"}, d.OnlyInTable1)
	assert.Equal(t, []string{"city"}, d.OnlyInTable2)
	assert.Equal(t, []string{"gross_floor_area", "id", "nr_buildings"}, d.Common)

	// integer vs bigint is a mismatch, recorded with the literal vendor types
	assert.Equal(t, map[string]TypePair{
		"nr_buildings": {Table1: "integer", Table2: "bigint"},
	}, d.TypeMismatches)
}

func TestCompareColumnsPartition(t *testing.T) {
	t.Parallel()

	s1 := schemaFrom(t, []RawColumn{
		{Name: "a", Type: "integer"},
		{Name: "b", Type: "text"},
	})
	s2 := schemaFrom(t, []RawColumn{
		{Name: "b", Type: "text"},
		{Name: "c", Type: "date"},
	})

	d := CompareColumns(s1, s2)

	// every column of either table lands in exactly one set
	seen := map[string]int{}
	for _, name := range d.OnlyInTable1 {
		seen[name]++
	}
	for _, name := range d.OnlyInTable2 {
		seen[name]++
	}
	for _, name := range d.Common {
		seen[name]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)
}

func TestCompareColumnsSwapSymmetry(t *testing.T) {
	t.Parallel()

	s1 := schemaFrom(t, []RawColumn{
		{Name: "x", Type: "integer"},
		{Name: "y", Type: "varchar(10)"},
	})
	s2 := schemaFrom(t, []RawColumn{
		{Name: "x", Type: "bigint"},
		{Name: "z", Type: "date"},
	})

	fwd := CompareColumns(s1, s2)
	rev := CompareColumns(s2, s1)

	assert.Equal(t, fwd.OnlyInTable1, rev.OnlyInTable2)
	assert.Equal(t, fwd.OnlyInTable2, rev.OnlyInTable1)
	assert.Equal(t, fwd.Common, rev.Common)
	for name, pair := range fwd.TypeMismatches {
		assert.Equal(t, TypePair{Table1: pair.Table2, Table2: pair.Table1}, rev.TypeMismatches[name])
	}
}

func TestCompareColumnsCaseSensitiveNames(t *testing.T) {
	t.Parallel()

	s1 := schemaFrom(t, []RawColumn{{Name: "Amount", Type: "numeric"}})
	s2 := schemaFrom(t, []RawColumn{{Name: "amount", Type: "numeric"}})

	d := CompareColumns(s1, s2)

	assert.Equal(t, []string{"Amount"}, d.OnlyInTable1)
	assert.Equal(t, []string{"amount"}, d.OnlyInTable2)
	assert.Empty(t, d.Common)
}

func TestCompareColumnsIdenticalSchemas(t *testing.T) {
	t.Parallel()

	cols := []RawColumn{
		{Name: "id", Type: "integer"},
		{Name: "name", Type: "text"},
	}
	d := CompareColumns(schemaFrom(t, cols), schemaFrom(t, cols))

	assert.Empty(t, d.OnlyInTable1)
	assert.Empty(t, d.OnlyInTable2)
	assert.Equal(t, []string{"id", "name"}, d.Common)
	assert.Empty(t, d.TypeMismatches)
}

func TestCommonNumericColumns(t *testing.T) {
	t.Parallel()

	s1 := schemaFrom(t, []RawColumn{
		{Name: "id", Type: "integer"},
		{Name: "price", Type: "numeric(10,2)"},
		{Name: "label", Type: "text"},
		{Name: "flag", Type: "integer"},
	})
	s2 := schemaFrom(t, []RawColumn{
		{Name: "id", Type: "bigint"},
		{Name: "price", Type: "decimal(10,2)"},
		{Name: "label", Type: "text"},
		{Name: "flag", Type: "boolean"},
	})

	d := CompareColumns(s1, s2)

	// flag is numeric on one side only, label on neither; id keeps its
	// place despite the integer vs bigint mismatch
	assert.Equal(t, []string{"id", "price"}, CommonNumericColumns(d, s1, s2))
}

func TestColumnTypeMapMarshalPreservesOrder(t *testing.T) {
	t.Parallel()

	s := schemaFrom(t, []RawColumn{
		{Name: "zeta", Type: "integer"},
		{Name: "alpha", Type: "varchar(5)"},
	})

	got, err := s.ColumnTypeMap().MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `{"zeta":"integer","alpha":"varchar(5)"}`, string(got))

	var back ColumnTypeMap
	assert.NoError(t, back.UnmarshalJSON(got))
	assert.Equal(t, s.ColumnTypeMap(), back)
}

func TestSchemaInfoAccessors(t *testing.T) {
	t.Parallel()

	s := schemaFrom(t, []RawColumn{
		{Name: "id", Type: "integer"},
		{Name: "note", Type: "text"},
	})

	assert.True(t, s.HasColumn("id"))
	assert.False(t, s.HasColumn("missing"))
	assert.Equal(t, "INTEGER", s.TypeOf("id"))
	assert.Equal(t, "", s.TypeOf("missing"))
	assert.Equal(t, "integer", s.SourceTypeOf("id"))
	assert.Equal(t, []string{"id"}, s.NumericColumns())
}
