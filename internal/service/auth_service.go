package service

import (
	"errors"

	"kartify/config"
	"kartify/internal/auth"
	"kartify/internal/domain"
	"kartify/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
)

type UserStore interface {
	Create(*models.User) error
	GetByID(uint) (*models.User, error)
	GetByEmail(string) (*models.User, error)
}

type AuthService struct {
	cfg   *config.Config
	users UserStore
}

func NewAuthService(cfg *config.Config, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

func (s *AuthService) Register(name, email, password string) (*models.User, string, string, error) {
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, "", "", ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(u); err != nil {
		return nil, "", "", err
	}
	access, refresh, err := auth.TokenPair(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, refresh, err := auth.TokenPair(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	return u, access, refresh, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (string, string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", err
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	return authTokens(&s.cfg.JWT, u)
}

func authTokens(cfg *config.JWTConfig, u *models.User) (string, string, error) {
	access, refresh, err := auth.TokenPair(cfg, u.ID, u.Email, u.Role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
