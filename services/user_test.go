package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/database"
	"go-storefront/models"
)

func TestRegister(t *testing.T) {
	db, clk := newTestDB(t)
	users := NewUserService(db, clk)
	ctx := context.Background()

	user, err := users.Register(ctx, RegisterInput{
		Email:    "  Jane@Example.com ",
		Password: "secret1",
		FullName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.UserTypeCustomer, user.UserType)
	assert.Equal(t, clk.Now(), user.CreatedAt)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	loaded, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, loaded.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, clk := newTestDB(t)
	users := NewUserService(db, clk)
	ctx := context.Background()

	input := RegisterInput{Email: "dup@example.com", Password: "secret1", FullName: "First"}
	_, err := users.Register(ctx, input)
	require.NoError(t, err)

	input.Email = "DUP@example.com"
	_, err = users.Register(ctx, input)
	assert.ErrorIs(t, err, database.ErrUniqueViolation)
}

func TestRegister_Validation(t *testing.T) {
	db, clk := newTestDB(t)
	users := NewUserService(db, clk)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "secret1", FullName: "A"}},
		{"short password", RegisterInput{Email: "a@b.co", Password: "123", FullName: "A"}},
		{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1"}},
		{"unknown type", RegisterInput{Email: "a@b.co", Password: "secret1", FullName: "A", UserType: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	db, clk := newTestDB(t)
	users := NewUserService(db, clk)
	ctx := context.Background()

	user, err := users.Authenticate(ctx, "Customer@Demo.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, customerUserID, user.ID)

	_, err = users.Authenticate(ctx, "customer@demo.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, "nobody@demo.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetByID_NotFound(t *testing.T) {
	db, clk := newTestDB(t)
	_, err := NewUserService(db, clk).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
