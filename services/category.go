package services

import (
	"context"
	"database/sql"
	"fmt"

	"go-storefront/database/query"
	"go-storefront/models"
)

// ListCategories returns the active categories ordered by name
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	stmt := query.From("categories").
		Select("id", "name", "description", "image_url", "is_active", "created_at").
		Where(query.Eq("is_active", true)).
		OrderBy("name", query.Asc).
		Build()

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		var desc, image sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc, &image, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Description = stringPtr(desc)
		c.ImageURL = stringPtr(image)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
