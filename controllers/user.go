package controllers

import (
	"context"
	"errors"
	"net/http"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

// Welcomer sends the registration email
type Welcomer interface {
	SendWelcomeEmail(toEmail, name string) error
}

// UserController handles user-related requests
type UserController struct {
	Users        *services.UserService
	Tokens       *utils.TokenIssuer
	EmailService Welcomer
	Jobs         *utils.Jobs
}

// NewUserController creates a new UserController with EmailService.
// Welcome emails are sent on jobs.
func NewUserController(users *services.UserService, tokens *utils.TokenIssuer, emailService Welcomer, jobs *utils.Jobs) *UserController {
	return &UserController{
		Users:        users,
		Tokens:       tokens,
		EmailService: emailService,
		Jobs:         jobs,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// Insert the user into the database
	user, err := uc.Users.Register(ctx, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := uc.Tokens.GenerateJWT(user.ID, user.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Send the welcome email without holding up the response
	email, name := user.Email, user.FullName
	uc.Jobs.Go("welcome email to "+email, func(ctx context.Context) error {
		return uc.EmailService.SendWelcomeEmail(email, name)
	})

	utils.WriteJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// Login handles user login
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var credentials loginRequest
	if !decodeJSON(w, r, &credentials) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// Find the user and compare the password
	user, err := uc.Users.Authenticate(ctx, credentials.Email, credentials.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := uc.Tokens.GenerateJWT(user.ID, user.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// GetProfile returns the authenticated user
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := uc.Users.GetByID(ctx, userID)
	if errors.Is(err, services.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}
