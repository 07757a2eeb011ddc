// Package services holds the workflows behind the HTTP API: authentication,
// password recovery, restaurant-ownership requests and user administration.
package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"promo-restaurant-api/apperr"
	"promo-restaurant-api/models"
	"promo-restaurant-api/security"
	"promo-restaurant-api/store"

	"github.com/rs/zerolog"
)

const (
	msgEmailTaken         = "El email ya esta registrado"
	msgBadCredentials     = "Credenciales inválidas"
	msgBadRefresh         = "Refresh inválido"
	msgUserNotAuthorized  = "Usuario no autorizado"
	msgResetTokenInvalid  = "Token de recuperación inválido"
	msgResetTokenUsed     = "El token de recuperación ya fue utilizado"
	msgResetTokenExpired  = "El token de recuperación expiró"
	msgResetUserDisabled  = "El usuario está deshabilitado"
	msgResetDispatchError = "No se pudo enviar el correo de recuperación"
	msgUserNotFound       = "Usuario no encontrado"
	msgPasswordTooLong    = "La contraseña no puede superar 72 bytes"

	resetTokenBytes = 32
	defaultResetURL = "/reset-password"
)

// AuthResult is what register, login and refresh hand back to the client.
type AuthResult struct {
	User   *models.User
	Tokens security.TokenPair
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService struct {
	store    *store.Store
	hasher   *security.Hasher
	tokens   *security.TokenManager
	notifier Notifier
	resetURL string
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(st *store.Store, hasher *security.Hasher, tokens *security.TokenManager, notifier Notifier, resetURL string, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:    st,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		resetURL: resetURL,
		log:      log.With().Str("service", "auth").Logger(),
		now:      time.Now,
	}
}

// Register creates an active customer account and opens its first session.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	_, err := s.store.Users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		// clients expect 400 here, not 409
		return nil, apperr.Conflict(msgEmailTaken).WithStatus(http.StatusBadRequest)
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal("Error en el registro", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return nil, apperr.Validation(msgPasswordTooLong)
	}
	if err != nil {
		return nil, apperr.Internal("Error en el registro", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleCustomer,
		Status:   models.StatusActive,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		// a concurrent registration won the unique email index
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict(msgEmailTaken).WithStatus(http.StatusBadRequest)
		}
		return nil, apperr.Internal("Error en el registro", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, apperr.Internal("Error en el registro", err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login checks credentials and opens a new session. Accounts still holding a
// plaintext password are migrated to a hash on their first successful login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return nil, apperr.Internal("Error en el login", err)
	}
	if !user.IsActive() {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	if !s.checkPassword(ctx, user, password) {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, apperr.Internal("Error en el login", err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) checkPassword(ctx context.Context, user *models.User, password string) bool {
	if security.LooksLikeHash(user.Password) {
		return s.hasher.Verify(password, user.Password)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return false
	}

	// legacy plaintext row: rehash now, but never fail the login over it
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.store.Users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("legacy password migration failed")
		return true
	}
	user.Password = hash
	s.log.Info().Uint("user_id", user.ID).Msg("legacy password migrated")
	return true
}

// issueTokens signs a fresh pair and records the refresh token as a new session.
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (security.TokenPair, error) {
	pair, err := s.tokens.IssuePair(security.Principal{UserID: user.ID, Role: user.Role})
	if err != nil {
		return security.TokenPair{}, err
	}

	sess := &models.Session{
		UserID:    user.ID,
		Token:     pair.Refresh,
		ExpiresAt: s.now().Add(security.RefreshTokenTTL),
	}
	if err := s.store.Sessions.Create(ctx, sess); err != nil {
		return security.TokenPair{}, fmt.Errorf("create session: %w", err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed whatever the outcome, so a second use always fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized(msgBadRefresh)
	}

	sess, err := s.store.Sessions.FindByToken(ctx, refreshToken)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized(msgBadRefresh)
	}
	if err != nil {
		return nil, apperr.Internal("Error al refrescar token", err)
	}

	p, err := s.tokens.Verify(refreshToken, security.KindRefresh)
	if err != nil || p.UserID != sess.UserID {
		s.revoke(ctx, sess.ID)
		return nil, apperr.Unauthorized(msgBadRefresh)
	}

	user, err := s.store.Users.FindByID(ctx, p.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("Error al refrescar token", err)
	}
	if user == nil || !user.IsActive() {
		s.revoke(ctx, sess.ID)
		return nil, apperr.Unauthorized(msgUserNotAuthorized)
	}

	removed, err := s.store.Sessions.Delete(ctx, sess.ID)
	if err != nil {
		return nil, apperr.Internal("Error al refrescar token", err)
	}
	if !removed {
		// a concurrent refresh consumed this session first
		return nil, apperr.Unauthorized(msgBadRefresh)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, apperr.Internal("Error al refrescar token", err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) revoke(ctx context.Context, sessionID uint) {
	if _, err := s.store.Sessions.Delete(ctx, sessionID); err != nil {
		s.log.Error().Err(err).Uint("session_id", sessionID).Msg("revoke session")
	}
}

// Logout drops the session behind refreshToken. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if _, err := s.store.Sessions.DeleteByToken(ctx, refreshToken); err != nil {
		s.log.Error().Err(err).Msg("logout")
	}
}

// ForgotPassword mails a reset link to email if it belongs to an active user.
// Callers answer identically whether or not that was the case.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Internal("Error al solicitar la recuperación", err)
	}
	if !user.IsActive() {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return apperr.Internal("Error al solicitar la recuperación", err)
	}

	now := s.now()
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.Resets.DeleteForUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.Resets.Create(ctx, &models.PasswordReset{
			UserID:    user.ID,
			Token:     token,
			CreatedAt: now,
			ExpiresAt: now.Add(models.PasswordResetTTL),
		})
	})
	if err != nil {
		return apperr.Internal("Error al solicitar la recuperación", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, buildResetLink(s.resetURL, token)); err != nil {
		return apperr.Internal(msgResetDispatchError, err)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the owner's password.
// Every session of that user is revoked in the same transaction.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	reset, err := s.store.Resets.FindByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.BadRequest(msgResetTokenInvalid)
	}
	if err != nil {
		return apperr.Internal("Error al restablecer la contraseña", err)
	}

	switch err := reset.Validate(s.now()); {
	case errors.Is(err, models.ErrPasswordResetUsed):
		return apperr.BadRequest(msgResetTokenUsed)
	case errors.Is(err, models.ErrPasswordResetExpired):
		if _, err := s.store.Resets.MarkUsed(ctx, reset.ID); err != nil {
			s.log.Error().Err(err).Uint("reset_id", reset.ID).Msg("mark expired reset token used")
		}
		return apperr.BadRequest(msgResetTokenExpired)
	}

	user, err := s.store.Users.FindByID(ctx, reset.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.BadRequest(msgResetTokenInvalid)
	}
	if err != nil {
		return apperr.Internal("Error al restablecer la contraseña", err)
	}
	if !user.IsActive() {
		return apperr.BadRequest(msgResetUserDisabled)
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return apperr.Validation(msgPasswordTooLong)
	}
	if err != nil {
		return apperr.Internal("Error al restablecer la contraseña", err)
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		claimed, err := tx.Resets.MarkUsed(ctx, reset.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return apperr.BadRequest(msgResetTokenUsed)
		}
		if err := tx.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return err
		}
		_, err = tx.Sessions.DeleteAllForUser(ctx, user.ID)
		return err
	})
	if err != nil {
		return wrapInternal(err, "Error al restablecer la contraseña")
	}
	s.log.Info().Uint("user_id", user.ID).Msg("password reset")
	return nil
}

// Profile returns the user behind an authenticated principal.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Error al obtener el perfil", err)
	}
	return user, nil
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func buildResetLink(base, token string) string {
	if base == "" {
		base = defaultResetURL
	}
	escaped := url.QueryEscape(token)
	if strings.Contains(base, "?") {
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			return base + "token=" + escaped
		}
		return base + "&token=" + escaped
	}
	return base + "?token=" + escaped
}
