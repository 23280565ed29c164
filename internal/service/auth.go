package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash сравнивается, когда пользователь не найден, чтобы время ответа не выдавало существование email
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dispatch-placeholder"), bcrypt.DefaultCost)

type authService struct {
	users  UserDirectory
	tokens TokenManager
	logger *logrus.Logger
}

func NewAuthService(users UserDirectory, tokens TokenManager, logger *logrus.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login проверяет пароль и выпускает токен
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(email)
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Login",
		"email":   email,
	})

	u, err := s.users.FindCredentialedUser(ctx, email)
	if err != nil {
		log.WithError(err).Error("Failed to look up credentials")
		return "", nil, fmt.Errorf("service: could not look up credentials: %w", err)
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		log.Warn("Login attempt for unknown email")
		return "", nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Warn("Login attempt with wrong password")
		return "", nil, apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(&u.User)
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		return "", nil, fmt.Errorf("service: could not issue token: %w", err)
	}
	log.WithField("user_id", u.ID).Info("User logged in")
	return token, &u.User, nil
}

// Authenticate разрешает bearer-токен в текущего пользователя через выделенный пул
func (s *authService) Authenticate(ctx context.Context, token string) (models.Actor, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.Actor{}, err
	}
	u, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to resolve token identity")
		return models.Actor{}, fmt.Errorf("service: could not resolve identity: %w", err)
	}
	if u == nil {
		return models.Actor{}, apperr.ErrUnauthorized.With("user no longer exists")
	}
	return models.Actor{UserID: u.ID, Role: u.Role, Name: u.Name}, nil
}
