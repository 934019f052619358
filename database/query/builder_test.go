package query

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func TestBuilder_SelectAllColumns(t *testing.T) {
	stmt := From("categories").Build()

	assert.Equal(t, "SELECT * FROM categories", stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestBuilder_MultipleWhereConditions(t *testing.T) {
	stmt := From("products").
		Select("id", "name").
		Where(Eq("category_id", "cat-1")).
		Where(Gt("stock_quantity", 0)).
		Build()

	assert.Equal(t, "SELECT id, name FROM products WHERE category_id = ? AND stock_quantity > ?", stmt.SQL)
	assert.Equal(t, []any{"cat-1", 0}, stmt.Args)
}

func TestBuilder_OrderByTerms(t *testing.T) {
	stmt := From("products").
		Select("id").
		OrderBy("price", Asc).
		OrderBy("created_at", Desc).
		Build()

	assert.Equal(t, "SELECT id FROM products ORDER BY price ASC, created_at DESC", stmt.SQL)
}

func TestBuilder_OffsetWithoutLimit(t *testing.T) {
	stmt := From("products").Select("id").Offset(5).Build()

	assert.Equal(t, "SELECT id FROM products LIMIT -1 OFFSET ?", stmt.SQL)
	assert.Equal(t, []any{int64(5)}, stmt.Args)
}

func TestBuilder_Immutable(t *testing.T) {
	base := From("products").Select("id").Where(Eq("is_active", true))

	withStock := base.Where(Gt("stock_quantity", 0))
	sorted := base.OrderBy("name", Asc)

	assert.Equal(t, "SELECT id FROM products WHERE is_active = ?", base.Build().SQL)
	assert.Equal(t, "SELECT id FROM products WHERE is_active = ? AND stock_quantity > ?", withStock.Build().SQL)
	assert.Equal(t, "SELECT id FROM products WHERE is_active = ? ORDER BY name ASC", sorted.Build().SQL)
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		sql  string
		args []any
	}{
		{"eq", Eq("c.name", "Books"), "c.name = ?", []any{"Books"}},
		{"gt", Gt("stock_quantity", 0), "stock_quantity > ?", []any{0}},
		{"contains single field", ContainsFold("Mug", strings.ToLower, "name"), `casefold(name) LIKE ? ESCAPE '\'`, []any{"%mug%"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.cond.SQL()
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% cotton`, EscapeLike("100% cotton"))
	assert.Equal(t, `snake\_case`, EscapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, EscapeLike(`back\slash`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}

func listingQuery() *Builder {
	return From("products p").
		Select("p.id", "p.name").
		Join("JOIN categories c ON c.id = p.category_id").
		Where(Eq("p.is_active", true)).
		Where(Gt("p.stock_quantity", 0)).
		Where(Eq("c.name", "Electronics")).
		Where(ContainsFold("Lamp_50%", strings.ToLower, "p.name", "p.description")).
		OrderBy("p.created_at", Desc).
		Limit(20).
		Offset(40)
}

func render(b *Builder) []byte {
	stmt := b.Build()
	return []byte(fmt.Sprintf("SQL: %s\nArgs: %v\n", stmt.SQL, stmt.Args))
}

func TestBuilder_Golden(t *testing.T) {
	g := goldie.New(t)

	g.Assert(t, "listing", render(listingQuery()))
	g.Assert(t, "listing_count", render(listingQuery().Count()))
}
