package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

// TokenConfig defines how admin tokens are signed.
type TokenConfig struct {
	Secret       string
	Expiry       time.Duration
	Issuer       string
	PasswordHash string // bcrypt hash accepted by Login; empty disables it
}

// TokenService issues and validates HS256 admin tokens guarding record mutations.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(config TokenConfig) *TokenService {
	if config.Expiry <= 0 {
		config.Expiry = 24 * time.Hour
	}
	return &TokenService{config: config, now: time.Now}
}

// Issue signs an admin token for subject.
func (s *TokenService) Issue(subject string) (*models.IssuedToken, error) {
	if strings.TrimSpace(s.config.Secret) == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "JWT secret is not configured")
	}
	if subject == "" {
		subject = "admin"
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := &models.AdminClaims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return &models.IssuedToken{AccessToken: signed, ExpiresIn: int64(s.config.Expiry.Seconds())}, nil
}

// Login exchanges the admin password for a token.
func (s *TokenService) Login(subject, password string) (*models.IssuedToken, error) {
	if s.config.PasswordHash == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "password login is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid credentials")
	}
	return s.Issue(subject)
}

// HashPassword returns the bcrypt hash to configure as ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(hash), nil
}

// Validate parses tokenString and requires the admin role.
func (s *TokenService) Validate(tokenString string) (*models.AdminClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	return claims, nil
}
