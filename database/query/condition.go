package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition rendered with positional
// (?) placeholders.
type Condition interface {
	SQL() (string, []any)
}

type compareCondition struct {
	field string
	op    string
	value any
}

func (c *compareCondition) SQL() (string, []any) {
	return fmt.Sprintf("%s %s ?", c.field, c.op), []any{c.value}
}

// Eq generates "field = ?".
func Eq(field string, value any) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Gt generates "field > ?".
func Gt(field string, value any) Condition {
	return &compareCondition{field: field, op: ">", value: value}
}

type containsCondition struct {
	fields []string
	term   string
	fold   func(string) string
}

func (c *containsCondition) SQL() (string, []any) {
	pattern := "%" + EscapeLike(c.fold(c.term)) + "%"
	parts := make([]string, len(c.fields))
	args := make([]any, len(c.fields))
	for i, f := range c.fields {
		parts[i] = fmt.Sprintf(`casefold(%s) LIKE ? ESCAPE '\'`, f)
		args[i] = pattern
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// ContainsFold matches rows where any of fields contains term, ignoring case.
// Fields are compared through the casefold() SQL function and fold must apply
// the same folding to the term. LIKE wildcards in term match literally.
func ContainsFold(term string, fold func(string) string, fields ...string) Condition {
	return &containsCondition{fields: fields, term: term, fold: fold}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards using backslash as the escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
