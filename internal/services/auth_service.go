package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers operators and issues the tokens that guard the product routes.
type AuthService struct {
	operatorRepo repositories.OperatorRepository
	jwtSecret    []byte
	tokenTTL     time.Duration
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(operatorRepo repositories.OperatorRepository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{
		operatorRepo: operatorRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		logger:       logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register hashes the password and stores a new operator.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Operator, error) {
	if _, err := s.operatorRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, req.Username)
	} else if !errors.Is(err, repositories.ErrOperatorNotFound) {
		return nil, err
	}
	if _, err := s.operatorRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailRegistered, req.Email)
	} else if !errors.Is(err, repositories.ErrOperatorNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operator := &models.Operator{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to register operator: %w", err)
	}
	return operator, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	operator, err := s.operatorRepo.GetByUsername(ctx, username)
	if err != nil {
		// Unknown usernames and wrong passwords look the same to the caller.
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": operator.ID.String(),
		"username":    operator.Username,
		"exp":         now.Add(s.tokenTTL).Unix(),
		"iat":         now.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
