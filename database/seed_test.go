package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadSeedData(t *testing.T) {
	data, err := LoadSeedData()
	require.NoError(t, err)

	require.Len(t, data.Categories, 4)
	assert.Equal(t, "Electronics", data.Categories[0].Name)
	require.Len(t, data.Users, 3)

	system := data.Users[0]
	require.NotNil(t, system.Business)
	assert.Equal(t, "TechStore Inc.", system.Business.Name)
	assert.Len(t, system.Business.Products, 8)

	for _, p := range system.Business.Products {
		assert.Greater(t, p.Price, 0.0, p.Name)
		if p.OriginalPrice != nil {
			assert.Greater(t, *p.OriginalPrice, p.Price, p.Name)
		}
		assert.NotEmpty(t, p.Features, p.Name)
	}
}

func TestSeed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	res, err := Seed(ctx, db, seedClock())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Categories: 4, Users: 3, Businesses: 1, Products: 8}, res)

	var hash string
	require.NoError(t, db.QueryRow(`SELECT password_hash FROM users WHERE email = 'customer@demo.com'`).Scan(&hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")))

	var features string
	require.NoError(t, db.QueryRow(`SELECT features FROM products WHERE name = 'Running Shoes'`).Scan(&features))
	assert.JSONEq(t, `["Lightweight","Advanced Cushioning","Breathable","Durable"]`, features)

	var verified bool
	require.NoError(t, db.QueryRow(`SELECT is_verified FROM business_profiles WHERE business_name = 'TechStore Inc.'`).Scan(&verified))
	assert.True(t, verified)

	var created time.Time
	require.NoError(t, db.QueryRow(`SELECT created_at FROM products WHERE name = 'Running Shoes'`).Scan(&created))
	assert.True(t, seedTime.Equal(created), "seed rows carry the clock's time, got %s", created)
}

func TestSeed_Repeatable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := Seed(ctx, db, seedClock())
	require.NoError(t, err)

	res, err := Seed(ctx, db, seedClock())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count))
	assert.Equal(t, 8, count)
}

func TestSeedCategories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := SeedCategories(ctx, db, seedClock())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = SeedCategories(ctx, db, seedClock())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
