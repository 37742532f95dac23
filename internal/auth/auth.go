package auth

import (
	"context"
	"errors"
	"log/slog"

	"accomplish/internal/api"
	"accomplish/internal/logging"
)

// ErrNotAuthenticated means no usable token is on disk; the caller should
// direct the user at `accomplish login`.
var ErrNotAuthenticated = errors.New("not authenticated")

// Service owns the access-token lifecycle for one profile: loading it from
// disk, validating it against the backend, and keeping the API client's
// bearer token in sync.
type Service struct {
	client    *api.Client
	tokenPath string
	token     string
	logger    *slog.Logger
}

// NewService builds a Service reading the token stored at tokenPath. A
// loadable token is installed on the client immediately; validation happens
// lazily via EnsureAuthenticated.
func NewService(client *api.Client, tokenPath string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	service := &Service{
		client:    client,
		tokenPath: tokenPath,
		logger:    logger.With(logging.String(logging.FieldComponent, "auth")),
	}
	token, err := loadToken(tokenPath)
	if err != nil {
		service.logger.Debug("token unreadable, treating as absent", logging.Error(err))
	}
	if token != "" {
		service.token = token
		client.SetToken(token)
	}
	return service
}

// HasToken reports whether a token is loaded, without validating it.
func (s *Service) HasToken() bool {
	return s.token != ""
}

// EnsureAuthenticated validates the stored token against the backend. Tokens
// the server reports inactive or rejects outright are cleared from disk so
// the next attempt starts clean; transient errors leave the token alone.
func (s *Service) EnsureAuthenticated(ctx context.Context) error {
	if s.token == "" {
		return ErrNotAuthenticated
	}
	info, err := s.client.CheckTokenInfo(ctx, s.token)
	switch {
	case err == nil && info.Active:
		return nil
	case err == nil, errors.Is(err, api.ErrUnauthorized):
		s.logger.Debug("stored token rejected, clearing")
		s.ClearToken()
		return ErrNotAuthenticated
	default:
		return err
	}
}

// TokenInfo introspects the stored token without mutating it. Returns
// ErrNotAuthenticated when no token is loaded.
func (s *Service) TokenInfo(ctx context.Context) (*api.TokenInfo, error) {
	if s.token == "" {
		return nil, ErrNotAuthenticated
	}
	return s.client.CheckTokenInfo(ctx, s.token)
}

// SaveToken persists a freshly issued token and installs it on the client.
func (s *Service) SaveToken(token string) error {
	if err := saveToken(s.tokenPath, token); err != nil {
		return err
	}
	s.token = token
	s.client.SetToken(token)
	return nil
}

// ClearToken removes the token from memory, disk, and the client.
func (s *Service) ClearToken() {
	s.token = ""
	s.client.SetToken("")
	if err := clearToken(s.tokenPath); err != nil {
		s.logger.Debug("token removal failed", logging.Error(err))
	}
}
