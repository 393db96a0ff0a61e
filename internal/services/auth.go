package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nathanntongai/plantmaint-backend/internal/models"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

// ErrInvalidCredentials is returned when login fails. The same error
// covers unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Claims are the JWT claims carried by dashboard tokens
type Claims struct {
	UserID    uint   `json:"user_id"`
	CompanyID uint   `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles company registration, login and JWT tokens
type AuthService struct {
	store    storage.Store
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new auth service. The signing secret comes
// from JWT_SECRET.
func NewAuthService(store storage.Store) (*AuthService, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}

	return &AuthService{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: 24 * time.Hour,
	}, nil
}

// RegisterCompany creates a new company together with its first admin
// user and returns a ready-to-use token.
func (a *AuthService) RegisterCompany(req *models.CompanyRegistration) (*models.Company, *models.User, string, error) {
	if _, err := a.store.GetUserByEmail(req.Email); err == nil {
		return nil, nil, "", fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, "", err
	}

	company, err := a.store.CreateCompany(&models.Company{
		Name:     req.CompanyName,
		Industry: req.Industry,
	})
	if err != nil {
		return nil, nil, "", err
	}

	user, err := a.store.CreateUser(&models.User{
		CompanyID:    company.ID,
		Name:         req.AdminName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return nil, nil, "", err
	}

	token, err := a.issueToken(user)
	if err != nil {
		return nil, nil, "", err
	}

	return company, user, token, nil
}

// CreateUser adds a user to an existing company (admin action)
func (a *AuthService) CreateUser(companyID uint, req *models.UserRegistration) (*models.User, error) {
	if _, err := a.store.GetUserByEmail(req.Email); err == nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return a.store.CreateUser(&models.User{
		CompanyID:    companyID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
}

// Login verifies credentials and returns the user with a fresh token
func (a *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := a.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// ParseToken validates a token string and returns its claims
func (a *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func (a *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
