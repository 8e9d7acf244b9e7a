package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"metacognition/internal/cache"
	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/repository"
)

// AuthService handles passwordless learner login and guest tokens
type AuthService struct {
	users     repository.UserRepo
	tokens    cache.TokenCache
	jwtSecret []byte
	ttl       time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepo, tokens cache.TokenCache, secret string, ttl time.Duration, log *logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		jwtSecret: []byte(secret),
		ttl:       ttl,
		log:       log.Component("auth"),
		now:       time.Now,
	}
}

// Login finds or creates the user for an email and issues a token
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user == nil {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = &model.User{Email: email, Name: name, AuthMethod: "email"}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.log.WithField("user_id", user.ID).Info("user created")
	} else if err := s.users.Touch(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("touch user failed")
	}

	return s.issue(user.ID, user.Email, false)
}

// Guest issues a token for an anonymous learner
func (s *AuthService) Guest() (*model.LoginResponse, error) {
	return s.issue("guest_"+uuid.New().String()[:8], "", true)
}

func (s *AuthService) issue(userID, email string, guest bool) (*model.LoginResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &model.UserClaims{
		UserID: userID,
		Email:  email,
		Guest:  guest,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     tokenString,
		UserID:    userID,
		Guest:     guest,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses a JWT and rejects revoked tokens
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	if claims.ID != "" {
		revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

// Logout revokes the token until its natural expiry
func (s *AuthService) Logout(ctx context.Context, claims *model.UserClaims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
