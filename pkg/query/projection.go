// Package query builds parameterised SELECT statements from a column projection.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names onto aliased table columns.
type ProjectionMap struct {
	table   string
	alias   string
	columns []string
	fields  map[string]string
}

// NewProjectionMap creates a projection over table using alias for column references.
func NewProjectionMap(table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project registers column under the logical field name.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns = append(p.columns, qualified)
	p.fields[field] = qualified
	return p
}

// Table returns the aliased table reference for a FROM clause.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s %s", p.table, p.alias)
}

// Columns returns the projected columns in registration order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columns, ", ")
}

// Column resolves a logical field to its qualified column.
// Unknown fields resolve to an empty string.
func (p *ProjectionMap) Column(field string) string {
	return p.fields[field]
}

// Has reports whether field is projected.
func (p *ProjectionMap) Has(field string) bool {
	_, ok := p.fields[field]
	return ok
}
