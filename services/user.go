package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-storefront/clock"
	"go-storefront/database"
	"go-storefront/models"
)

// RegisterInput is the body of a registration request
type RegisterInput struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	FullName string          `json:"fullName" validate:"required,max=200"`
	UserType models.UserType `json:"userType" validate:"omitempty,oneof=customer business_owner"`
}

// UserService manages accounts and credentials
type UserService struct {
	db    *sql.DB
	clock clock.Clock
}

// NewUserService creates a UserService
func NewUserService(db *sql.DB, clk clock.Clock) *UserService {
	return &UserService{db: db, clock: clk}
}

const userColumns = "id, email, password_hash, user_type, full_name, phone, avatar_url, created_at, updated_at"

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var phone, avatar sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.UserType, &u.FullName, &phone, &avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Phone = stringPtr(phone)
	u.AvatarURL = stringPtr(avatar)
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a bcrypt password hash
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.UserType == "" {
		input.UserType = models.UserTypeCustomer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: string(hash),
		UserType:     input.UserType,
		FullName:     input.FullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, user_type, full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.UserType, user.FullName, now, now)
	if err != nil {
		err = database.Classify(err)
		if errors.Is(err, database.ErrUniqueViolation) {
			return nil, fmt.Errorf("%w: email already registered", database.ErrUniqueViolation)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks an email and password pair
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(email))
	user, err := scanUser(row)
	if isNoRows(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID loads a user
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if isNoRows(err) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
