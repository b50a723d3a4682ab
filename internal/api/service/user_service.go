package service

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/api/models"
	"ctchen222/knn-tic-tac-toe/internal/api/repository"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenTTL = 72 * time.Hour

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) error
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	GuestLogin(ctx context.Context) (*models.TokenResponse, error)
	// ParseToken returns the player ID carried by a token.
	ParseToken(tokenString string) (string, error)
}

type userService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	now       func() time.Time
}

// NewUserService creates a new UserService signing tokens with secret.
func NewUserService(userRepo repository.UserRepository, secret string) UserService {
	return &userService{userRepo: userRepo, jwtSecret: []byte(secret), now: time.Now}
}

// Register handles user registration.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) error {
	// Check if user already exists
	existingUser, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if existingUser != nil {
		return ErrUsernameTaken
	}

	user := &models.User{
		Username: req.Username,
	}

	return s.userRepo.CreateUser(ctx, user, req.Password)
}

// Login handles user login and returns a JWT on success. The player ID of
// an account is its username.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user.Username, user.Username)
}

// GuestLogin generates a UUID for a guest player and a token carrying it.
func (s *userService) GuestLogin(ctx context.Context) (*models.TokenResponse, error) {
	return s.issue(uuid.New().String(), "")
}

func (s *userService) issue(playerID, username string) (*models.TokenResponse, error) {
	claims := jwt.MapClaims{
		"sub": playerID,
		"exp": s.now().Add(tokenTTL).Unix(),
	}
	if username != "" {
		claims["un"] = username
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.TokenResponse{Token: tokenString, PlayerID: playerID}, nil
}

func (s *userService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
