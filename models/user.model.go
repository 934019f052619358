package models

import "time"

// UserType distinguishes shoppers from sellers
type UserType string

const (
	UserTypeCustomer      UserType = "customer"
	UserTypeBusinessOwner UserType = "business_owner"
)

// Valid reports whether t is a known user type
func (t UserType) Valid() bool {
	return t == UserTypeCustomer || t == UserTypeBusinessOwner
}

// Address represents a postal address for delivery or billing
type Address struct {
	FullName string `json:"full_name,omitempty" bson:"full_name,omitempty"`
	Street   string `json:"street" bson:"street" validate:"required"`
	City     string `json:"city" bson:"city" validate:"required"`
	State    string `json:"state" bson:"state"`
	ZipCode  string `json:"zipcode" bson:"zipcode" validate:"required"`
	Country  string `json:"country,omitempty" bson:"country,omitempty"`
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	UserType     UserType  `json:"user_type"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsBusinessOwner reports whether the user may sell products
func (u *User) IsBusinessOwner() bool {
	return u.UserType == UserTypeBusinessOwner
}
