package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authhub/internal/apperr"
	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/session"
	"authhub/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(user *models.User) (string, time.Duration, error) {
	now := m.now()
	claims := Claims{
		Email: user.Email,
		Role:  string(user.Role.Name),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return token, m.ttl, nil
}

func (m *TokenManager) Parse(tokenString string) (session.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return session.Principal{}, apperr.Unauthorized("Invalid or expired token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return session.Principal{}, apperr.Unauthorized("Invalid token claims")
	}
	return session.Principal{UserID: id, Email: claims.Email, Role: claims.Role}, nil
}

type AuthService struct {
	users  repository.UserRepository
	hasher utils.CredentialHasher
	tokens *TokenManager
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, hasher utils.CredentialHasher, tokens *TokenManager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log.Named("auth")}
}

// Login checks the credentials of an ACTIVE user and issues a token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !s.hasher.Verify(req.Password, user.Password) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if user.Status != models.StatusActive {
		return nil, apperr.Forbidden("Your account is %s", statusText(user.Status))
	}

	token, ttl, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.Stringer("user_id", user.ID))
	return &models.LoginResponse{Token: token, ExpiresIn: int64(ttl.Seconds()), User: user}, nil
}
