package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/storage"
	"github.com/pribylovaa/go-news-portal/pkg/log"
	"github.com/pribylovaa/go-news-portal/pkg/redact"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// RegisterInput: данные регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register регистрирует читателя (роль user) и сразу выдаёт токен.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.AuthResult, error) {
	const op = "service.auth.Register"

	u, err := s.createUser(ctx, op, in, models.RoleUser)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, op, u)
}

// RegisterAdmin создаёт администратора. Вызывается только администратором.
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterInput) (*models.AuthResult, error) {
	const op = "service.auth.RegisterAdmin"

	u, err := s.createUser(ctx, op, in, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, op, u)
}

// Login выполняет вход по email+пароль.
// Неизвестный email и неверный пароль неразличимы снаружи: ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	const op = "service.auth.Login"

	lg := log.Op(ctx, op).With(slog.String("email", redact.Email(email)))

	norm, err := validateEmail(email)
	if err != nil {
		lg.Warn("login_invalid_email")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if password == "" {
		lg.Warn("login_empty_password")
		return nil, fmt.Errorf("%s: %w", op, invalid("Password is required"))
	}

	u, err := s.storage.UserByEmail(ctx, norm)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("login_unknown_email")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("user_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	if !checkPassword(u.PasswordHash, password) {
		lg.Warn("login_wrong_password", slog.String("user_id", u.ID))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	lg.Info("login_ok", slog.String("user_id", u.ID))

	return s.issue(ctx, op, u)
}

// Me возвращает учётную запись текущего пользователя.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	const op = "service.auth.Me"

	return s.userByID(ctx, op, userID)
}

// UpdateProfile меняет имя и/или аватар (nil: не менять).
func (s *Service) UpdateProfile(ctx context.Context, userID string, name, avatar *string) (*models.User, error) {
	const op = "service.auth.UpdateProfile"

	lg := log.Op(ctx, op).With(slog.String("user_id", userID))

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			lg.Warn("profile_update_invalid", slog.String("reason", "empty_name"))
			return nil, fmt.Errorf("%s: %w", op, invalid("Name is required"))
		}
		name = &n
	}

	if avatar != nil {
		a := strings.TrimSpace(*avatar)
		avatar = &a
	}

	u, err := s.storage.UpdateProfile(ctx, userID, name, avatar)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("profile_update_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	lg.Info("profile_updated")

	return u, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	const op = "service.auth.ChangePassword"

	lg := log.Op(ctx, op).With(slog.String("user_id", userID))

	if err := validatePassword(next); err != nil {
		lg.Warn("password_change_invalid")
		return fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.userByID(ctx, op, userID)
	if err != nil {
		return err
	}

	if !checkPassword(u.PasswordHash, current) {
		lg.Warn("password_change_wrong_current")
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	hash, err := s.hashPassword(next)
	if err != nil {
		lg.Error("password_hash_failed", slog.String("err", err.Error()))
		return internal(op, err)
	}

	if err := s.storage.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("password_update_failed", slog.String("err", err.Error()))
		return internal(op, err)
	}

	lg.Info("password_changed")

	return nil
}

// Authenticate проверяет access-токен и подтягивает актуальную роль пользователя.
// Удалённый пользователь или невалидный токен дают ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	const op = "service.auth.Authenticate"

	uid, err := s.validateAccessToken(token)
	if err != nil {
		log.Op(ctx, op).Debug("token_rejected", slog.String("reason", err.Error()))
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	u, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Op(ctx, op).Warn("token_user_not_found", slog.String("user_id", uid))
			return models.Identity{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}

		log.Op(ctx, op).Error("user_lookup_failed", slog.String("err", err.Error()))
		return models.Identity{}, internal(op, err)
	}

	return models.Identity{UserID: u.ID, Role: u.Role}, nil
}

// EnsureAdmin пересоздаёт учётную запись администратора с заданными данными.
// Используется сидером.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service.auth.EnsureAdmin"

	norm, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeleteUserByEmail(ctx, norm); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Op(ctx, op).Error("admin_delete_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	return s.createUser(ctx, op, in, models.RoleAdmin)
}

func (s *Service) createUser(ctx context.Context, op string, in RegisterInput, role models.Role) (*models.User, error) {
	lg := log.Op(ctx, op).With(slog.String("email", redact.Email(in.Email)))

	name := strings.TrimSpace(in.Name)
	if name == "" {
		lg.Warn("register_invalid", slog.String("reason", "empty_name"))
		return nil, fmt.Errorf("%s: %w", op, invalid("Name is required"))
	}

	norm, err := validateEmail(in.Email)
	if err != nil {
		lg.Warn("register_invalid", slog.String("reason", "email"))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(in.Password); err != nil {
		lg.Warn("register_invalid", slog.String("reason", "password"))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, norm)
	if err == nil {
		lg.Warn("register_email_taken")
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("user_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		lg.Error("password_hash_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	now := s.now()
	u, err := s.storage.CreateUser(ctx, models.User{
		Name:         name,
		Email:        norm,
		PasswordHash: hash,
		Role:         role,
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			lg.Warn("register_email_taken")
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("user_create_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	lg.Info("user_registered", slog.String("user_id", u.ID), slog.String("role", string(role)))

	return u, nil
}

func (s *Service) userByID(ctx context.Context, op, id string) (*models.User, error) {
	u, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Op(ctx, op).Warn("user_not_found", slog.String("user_id", id))
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Op(ctx, op).Error("user_lookup_failed", slog.String("err", err.Error()))
		return nil, internal(op, err)
	}

	return u, nil
}

func (s *Service) issue(ctx context.Context, op string, u *models.User) (*models.AuthResult, error) {
	token, err := s.generateAccessToken(ctx, u)
	if err != nil {
		return nil, internal(op, err)
	}

	return &models.AuthResult{Token: token, User: u}, nil
}

// hashPassword хэширует пароль bcrypt с настроенной стоимостью.
func (s *Service) hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	cost := s.cfg.Auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет формат email, обрезает пробелы и приводит к нижнему регистру.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", invalid("Please provide a valid email")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("Please provide a valid email")
	}

	return strings.ToLower(email), nil
}

// validatePassword: не короче 6 символов.
func validatePassword(pw string) error {
	if pw == "" {
		return invalid("Password is required")
	}

	if utf8.RuneCountInString(pw) < minPasswordLen {
		return invalid("Password must be at least 6 characters")
	}

	return nil
}
