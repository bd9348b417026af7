package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"
)

const bcryptCost = 12

// UserService handles user account business logic
type UserService struct {
	db         *sql.DB
	adminEmail string
}

// NewUserService creates a new user service
func NewUserService(db *sql.DB, adminEmail string) *UserService {
	return &UserService{
		db:         db,
		adminEmail: adminEmail,
	}
}

// Signup registers a new user with a hashed password. Emails are stored
// lowercased and must be unique.
func (s *UserService) Signup(signup *models.UserSignup) (*models.User, error) {
	if err := utils.ValidateStruct(signup); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(signup.Email))

	var existingID string
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&existingID)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.UserRoleUser
	if email == s.adminEmail {
		role = models.UserRoleAdmin
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         signup.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the matching user
func (s *UserService) Login(login *models.UserLogin) (*models.User, error) {
	if err := utils.ValidateStruct(login); err != nil {
		return nil, err
	}

	user, err := s.GetUserByEmail(strings.ToLower(strings.TrimSpace(login.Email)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(login.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE email = ?
	`
	err := s.db.QueryRow(query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE id = ?
	`
	err := s.db.QueryRow(query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
