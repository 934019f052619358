package database

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"go-storefront/clock"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedData is the catalog loaded by Seed.
type SeedData struct {
	Categories []SeedCategory `yaml:"categories"`
	Users      []SeedUser     `yaml:"users"`
}

type SeedCategory struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
}

type SeedUser struct {
	ID       string        `yaml:"id"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	UserType string        `yaml:"user_type"`
	FullName string        `yaml:"full_name"`
	Business *SeedBusiness `yaml:"business"`
}

type SeedBusiness struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Verified    bool          `yaml:"verified"`
	Products    []SeedProduct `yaml:"products"`
}

type SeedProduct struct {
	ID            string   `yaml:"id"`
	CategoryID    string   `yaml:"category_id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Price         float64  `yaml:"price"`
	OriginalPrice *float64 `yaml:"original_price"`
	ImageURL      string   `yaml:"image_url"`
	Features      []string `yaml:"features"`
	Stock         int      `yaml:"stock"`
}

// SeedResult counts the rows inserted by Seed. Rows that already existed are
// not counted.
type SeedResult struct {
	Categories int
	Users      int
	Businesses int
	Products   int
}

// LoadSeedData parses the embedded seed catalog.
func LoadSeedData() (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

// SeedCategories inserts the default categories. Existing rows are kept.
func SeedCategories(ctx context.Context, db *sql.DB, clk clock.Clock) (int, error) {
	data, err := LoadSeedData()
	if err != nil {
		return 0, err
	}

	var inserted int
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		n, err := insertCategories(ctx, tx, data.Categories, clk.Now())
		inserted = n
		return err
	})
	return inserted, err
}

// Seed inserts the default categories, demo users, and the demo catalog.
// Running it twice leaves the database unchanged.
func Seed(ctx context.Context, db *sql.DB, clk clock.Clock) (SeedResult, error) {
	data, err := LoadSeedData()
	if err != nil {
		return SeedResult{}, err
	}

	var res SeedResult
	now := clk.Now()
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		n, err := insertCategories(ctx, tx, data.Categories, now)
		if err != nil {
			return err
		}
		res.Categories = n

		for _, u := range data.Users {
			userID, created, err := insertUser(ctx, tx, u, now)
			if err != nil {
				return err
			}
			if created {
				res.Users++
			}
			if u.Business == nil {
				continue
			}

			businessID, created, err := insertBusiness(ctx, tx, userID, u.Business, now)
			if err != nil {
				return err
			}
			if created {
				res.Businesses++
			}

			for _, p := range u.Business.Products {
				created, err := insertProduct(ctx, tx, businessID, p, now)
				if err != nil {
					return err
				}
				if created {
					res.Products++
				}
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	log.Printf("Seeded %d categories, %d users, %d businesses, %d products",
		res.Categories, res.Users, res.Businesses, res.Products)
	return res, nil
}

func insertCategories(ctx context.Context, tx *sql.Tx, categories []SeedCategory, now time.Time) (int, error) {
	var inserted int
	for _, c := range categories {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO categories (id, name, description, image_url, is_active, created_at)
			VALUES (?, ?, ?, ?, 1, ?)`,
			c.ID, c.Name, c.Description, c.ImageURL, now)
		if err != nil {
			return 0, fmt.Errorf("insert category %s: %w", c.Name, Classify(err))
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	return inserted, nil
}

func insertUser(ctx context.Context, tx *sql.Tx, u SeedUser, now time.Time) (string, bool, error) {
	var existing string
	err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", u.Email).Scan(&existing)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, fmt.Errorf("lookup user %s: %w", u.Email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", false, fmt.Errorf("hash password for %s: %w", u.Email, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, user_type, full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, string(hash), u.UserType, u.FullName, now, now)
	if err != nil {
		return "", false, fmt.Errorf("insert user %s: %w", u.Email, Classify(err))
	}
	return u.ID, true, nil
}

func insertBusiness(ctx context.Context, tx *sql.Tx, userID string, b *SeedBusiness, now time.Time) (string, bool, error) {
	var existing string
	err := tx.QueryRowContext(ctx, "SELECT id FROM business_profiles WHERE user_id = ?", userID).Scan(&existing)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, fmt.Errorf("lookup business %s: %w", b.Name, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO business_profiles (id, user_id, business_name, business_description, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, userID, b.Name, b.Description, b.Verified, now, now)
	if err != nil {
		return "", false, fmt.Errorf("insert business %s: %w", b.Name, Classify(err))
	}
	return b.ID, true, nil
}

func insertProduct(ctx context.Context, tx *sql.Tx, businessID string, p SeedProduct, now time.Time) (bool, error) {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return false, fmt.Errorf("encode features for %s: %w", p.Name, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO products (
			id, business_id, category_id, name, description, price, original_price,
			image_url, features, stock_quantity, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		p.ID, businessID, p.CategoryID, p.Name, p.Description, p.Price, p.OriginalPrice,
		p.ImageURL, string(features), p.Stock, now, now)
	if err != nil {
		return false, fmt.Errorf("insert product %s: %w", p.Name, Classify(err))
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
