package query

import "strings"

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

// Statement is a built SQL query with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

type orderTerm struct {
	expr string
	dir  Direction
}

// Builder constructs SQLite SELECT queries with a fluent API. Every method
// returns a new Builder so partial queries can be shared safely.
type Builder struct {
	table        string
	selectCols   []string
	joins        []string
	whereClauses []Condition
	orderBy      []orderTerm
	limitVal     int64
	offsetVal    int64
}

// From creates a new Builder for the specified table. The table may carry an
// alias, e.g. "products p".
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends columns to the select list.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// Join appends a raw join clause, e.g. "JOIN categories c ON c.id = p.category_id".
func (b *Builder) Join(clause string) *Builder {
	nb := b.clone()
	nb.joins = append(nb.joins, clause)
	return nb
}

// Where adds a WHERE condition. Multiple calls are combined with AND.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.whereClauses = append(nb.whereClauses, condition)
	return nb
}

// OrderBy adds a sort term. Terms apply in the order they were added.
func (b *Builder) OrderBy(expr string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderTerm{expr: expr, dir: direction})
	return nb
}

// Limit sets the maximum number of rows to return.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limitVal = limit
	return nb
}

// Offset sets the number of rows to skip.
func (b *Builder) Offset(offset int64) *Builder {
	nb := b.clone()
	nb.offsetVal = offset
	return nb
}

// Count returns a builder for COUNT(*) over the same FROM, JOIN and WHERE
// clauses, without ordering or pagination.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.orderBy = nil
	nb.limitVal = 0
	nb.offsetVal = 0
	return nb
}

// Build renders the statement.
func (b *Builder) Build() Statement {
	var sql strings.Builder
	var args []any

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	for _, j := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(j)
	}

	if len(b.whereClauses) > 0 {
		parts := make([]string, 0, len(b.whereClauses))
		for _, c := range b.whereClauses {
			fragment, condArgs := c.SQL()
			parts = append(parts, fragment)
			args = append(args, condArgs...)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		terms := make([]string, 0, len(b.orderBy))
		for _, o := range b.orderBy {
			if o.dir == Desc {
				terms = append(terms, o.expr+" DESC")
			} else {
				terms = append(terms, o.expr+" ASC")
			}
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(terms, ", "))
	}

	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	switch {
	case b.limitVal > 0:
		sql.WriteString(" LIMIT ?")
		args = append(args, b.limitVal)
	case b.offsetVal > 0:
		sql.WriteString(" LIMIT -1")
	}

	if b.offsetVal > 0 {
		sql.WriteString(" OFFSET ?")
		args = append(args, b.offsetVal)
	}

	return Statement{SQL: sql.String(), Args: args}
}

func (b *Builder) clone() *Builder {
	nb := &Builder{
		table:        b.table,
		selectCols:   make([]string, len(b.selectCols)),
		joins:        make([]string, len(b.joins)),
		whereClauses: make([]Condition, len(b.whereClauses)),
		orderBy:      make([]orderTerm, len(b.orderBy)),
		limitVal:     b.limitVal,
		offsetVal:    b.offsetVal,
	}
	copy(nb.selectCols, b.selectCols)
	copy(nb.joins, b.joins)
	copy(nb.whereClauses, b.whereClauses)
	copy(nb.orderBy, b.orderBy)
	return nb
}
