package diff

import "sort"

// TypePair records the vendor types of one column on both tables.
type TypePair struct {
	Table1 string `json:"table_1"`
	Table2 string `json:"table_2"`
}

// ColumnDiff partitions the union of two tables' column names.
// Every column appears in exactly one of the three sets; common
// columns whose normalized types differ are additionally listed in
// TypeMismatches with their literal vendor types.
type ColumnDiff struct {
	OnlyInTable1   []string
	OnlyInTable2   []string
	Common         []string
	TypeMismatches map[string]TypePair
}

// CompareColumns classifies every column of the two schemas by name,
// then flags common columns whose normalized types disagree. Name
// matching is exact and case sensitive. All slices are sorted.
func CompareColumns(s1, s2 SchemaInfo) ColumnDiff {
	d := ColumnDiff{
		OnlyInTable1:   []string{},
		OnlyInTable2:   []string{},
		Common:         []string{},
		TypeMismatches: map[string]TypePair{},
	}

	for _, c := range s1.Columns {
		if s2.HasColumn(c.Name) {
			d.Common = append(d.Common, c.Name)
			if c.NormalizedType != s2.TypeOf(c.Name) {
				d.TypeMismatches[c.Name] = TypePair{
					Table1: c.SourceType,
					Table2: s2.SourceTypeOf(c.Name),
				}
			}
		} else {
			d.OnlyInTable1 = append(d.OnlyInTable1, c.Name)
		}
	}

	for _, c := range s2.Columns {
		if !s1.HasColumn(c.Name) {
			d.OnlyInTable2 = append(d.OnlyInTable2, c.Name)
		}
	}

	sort.Strings(d.OnlyInTable1)
	sort.Strings(d.OnlyInTable2)
	sort.Strings(d.Common)

	return d
}

// CommonNumericColumns returns the sorted common columns that are
// numeric in both schemas. Type-mismatched columns are included as
// long as both sides are numeric, an INTEGER column can still be
// averaged against a BIGINT one.
func CommonNumericColumns(d ColumnDiff, s1, s2 SchemaInfo) []string {
	var names []string
	for _, name := range d.Common {
		if numericIn(s1, name) && numericIn(s2, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func numericIn(s SchemaInfo, name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.IsNumeric
		}
	}
	return false
}
