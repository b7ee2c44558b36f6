package query

import (
	"fmt"
	"strings"
)

// Dialect adapts generated SQL to a database engine.
type Dialect interface {
	Placeholder(n int) string
	CaseInsensitiveLike() string
}

type postgres struct{}

func (postgres) Placeholder(n int) string    { return fmt.Sprintf("$%d", n) }
func (postgres) CaseInsensitiveLike() string { return "ILIKE" }

type condition struct {
	clause string
	args   []any
}

// Builder constructs SQL queries with automatic parameter numbering.
// Clauses hold "%s" markers for each bind parameter; the dialect fills them in
// at build time.
type Builder struct {
	projection  *ProjectionMap
	dialect     Dialect
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for projection. defaultSort applies when no
// valid sort fields are supplied.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		dialect:     postgres{},
		conditions:  make([]condition, 0),
		defaultSort: defaultSort,
	}
}

// WithDialect sets the dialect used for placeholders and pattern matching.
func (b *Builder) WithDialect(d Dialect) *Builder {
	if d != nil {
		b.dialect = d
	}
	return b
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.Table(), where), args
}

// BuildAll returns an ordered SELECT of every matching row.
func (b *Builder) BuildAll() (string, []any) {
	where, args := b.buildWhere()
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
	)
	return sql, args
}

// BuildPage returns an ordered SELECT limited to a single page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.BuildAll()
	offset := (page - 1) * pageSize
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, offset), args
}

// BuildSingle returns a SELECT for the row whose idField equals id.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = %s",
		b.projection.Columns(),
		b.projection.Table(),
		b.projection.Column(idField),
		b.dialect.Placeholder(1),
	)
	return sql, []any{id}
}

// OrderByFields replaces the sort order. Unknown fields are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = b.sort[:0]
	for _, f := range fields {
		if b.projection.Has(f.Field) {
			b.sort = append(b.sort, f)
		}
	}
	return b
}

// WhereEquals adds an equality condition. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = %%s", b.projection.Column(field)),
		args:   []any{value},
	})
	return b
}

// WhereContains adds a case-insensitive substring match. Nil or empty values are ignored.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s %s %%s", b.projection.Column(field), b.dialect.CaseInsensitiveLike()),
		args:   []any{"%" + *value + "%"},
	})
	return b
}

// WhereSearch matches search against any of fields. Nil or empty search is ignored.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	pattern := "%" + *search + "%"
	for i, field := range fields {
		clauses[i] = fmt.Sprintf("%s %s %%s", b.projection.Column(field), b.dialect.CaseInsensitiveLike())
		args[i] = pattern
	}

	b.conditions = append(b.conditions, condition{
		clause: "(" + strings.Join(clauses, " OR ") + ")",
		args:   args,
	})
	return b
}

func (b *Builder) buildOrderBy() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		terms = append(terms, fmt.Sprintf("%s %s", b.projection.Column(f.Field), dir))
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	for _, cond := range b.conditions {
		marks := make([]any, len(cond.args))
		for i, arg := range cond.args {
			args = append(args, arg)
			marks[i] = b.dialect.Placeholder(len(args))
		}
		clauses = append(clauses, fmt.Sprintf(cond.clause, marks...))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
