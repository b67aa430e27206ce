package services

import (
	"context"

	"riddlehunt/metrics"
	"riddlehunt/repositories"
	"riddlehunt/utils"
	"riddlehunt/utils/apperror"

	"github.com/sirupsen/logrus"
)

const (
	ErrInvalidCredentials  = "No active account found with the given credentials"
	ErrInvalidRefreshToken = "Token is invalid or expired"
)

// TokenPair is returned on login
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService authenticates teams with the credentials issued by the import
type AuthService struct {
	teams  repositories.TeamRepository
	hasher utils.PasswordHasher
	tokens *utils.TokenManager
	logger logrus.FieldLogger
}

func NewAuthService(teams repositories.TeamRepository, hasher utils.PasswordHasher, tokens *utils.TokenManager, logger logrus.FieldLogger) *AuthService {
	return &AuthService{teams: teams, hasher: hasher, tokens: tokens, logger: logger}
}

// Login checks username and password and issues an access and refresh token
func (s *AuthService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	team, err := s.teams.FindByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			metrics.LoginAttempts.WithLabelValues("rejected").Inc()
			return TokenPair{}, apperror.Unauthorized(ErrInvalidCredentials)
		}
		return TokenPair{}, err
	}

	if !s.hasher.Compare(team.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		s.logger.WithField("team", username).Warn("login rejected")
		return TokenPair{}, apperror.Unauthorized(ErrInvalidCredentials)
	}

	access, err := s.tokens.GenerateAccessToken(team.Username)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(team.Username)
	if err != nil {
		return TokenPair{}, err
	}

	metrics.LoginAttempts.WithLabelValues("accepted").Inc()
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseToken(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return "", apperror.Unauthorized(ErrInvalidRefreshToken)
	}

	exists, err := s.teams.Exists(ctx, claims.Subject)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperror.Unauthorized(ErrInvalidRefreshToken)
	}

	return s.tokens.GenerateAccessToken(claims.Subject)
}

// Authenticate resolves a bearer access token to the team username
func (s *AuthService) Authenticate(accessToken string) (string, error) {
	claims, err := s.tokens.ParseToken(accessToken, utils.TokenTypeAccess)
	if err != nil {
		return "", apperror.Unauthorized("Given token not valid for any token type")
	}
	return claims.Subject, nil
}
