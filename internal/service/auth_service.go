package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileResponse struct {
	ID                 string                   `json:"id"`
	Email              string                   `json:"email"`
	FullName           string                   `json:"full_name"`
	CompanyName        string                   `json:"company_name"`
	Phone              string                   `json:"phone"`
	Role               string                   `json:"role"`
	AvatarURL          string                   `json:"avatar_url"`
	AutomationSettings model.AutomationSettings `json:"automation_settings"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   string          `json:"expires_at"`
	Profile     ProfileResponse `json:"profile"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (ProfileResponse, error)
}

type authService struct {
	profiles repository.ProfileRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(profiles repository.ProfileRepository, secret string, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{profiles: profiles, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// HashPassword hashes a plain password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// IssueToken signs an HS256 access token carrying the profile id and role.
func IssueToken(secret []byte, userID uuid.UUID, role string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"exp":  expiresAt.Unix(),
	})
	return token.SignedString(secret)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	profile, err := s.profiles.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if isNotFound(err) {
			return LoginResponse{}, ErrInvalidCredentials
		}
		return LoginResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.PasswordHash == "" {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.ttl)
	token, err := IssueToken(s.secret, profile.ID, profile.Role, expiresAt)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return LoginResponse{
		AccessToken: token,
		ExpiresAt:   formatTime(expiresAt),
		Profile:     toProfileResponse(*profile),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (ProfileResponse, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ProfileResponse{}, ErrForbidden
		}
		return ProfileResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return toProfileResponse(*profile), nil
}

func toProfileResponse(p model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                 p.ID.String(),
		Email:              p.Email,
		FullName:           p.FullName,
		CompanyName:        p.CompanyName,
		Phone:              p.Phone,
		Role:               p.Role,
		AvatarURL:          p.AvatarURL,
		AutomationSettings: p.AutomationSettings.Data(),
	}
}
