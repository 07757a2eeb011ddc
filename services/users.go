package services

import (
	"context"
	"errors"

	"promo-restaurant-api/apperr"
	"promo-restaurant-api/models"
	"promo-restaurant-api/security"
	"promo-restaurant-api/store"

	"github.com/rs/zerolog"
)

// AdminSeed is the account created on startup when no admin exists yet.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// EnsureDefaultAdmin creates the seed admin unless seed is incomplete or the
// email is already taken. It reports whether an account was created.
func EnsureDefaultAdmin(ctx context.Context, st *store.Store, hasher *security.Hasher, seed AdminSeed, log zerolog.Logger) (bool, error) {
	if seed.Email == "" || seed.Password == "" {
		log.Debug().Msg("admin seed not configured")
		return false, nil
	}

	_, err := st.Users.FindByEmail(ctx, seed.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(seed.Password)
	if err != nil {
		return false, err
	}
	name := seed.Name
	if name == "" {
		name = "Administrador"
	}
	admin := &models.User{
		Name:     name,
		Email:    seed.Email,
		Password: hash,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}
	if err := st.Users.Create(ctx, admin); err != nil {
		return false, err
	}
	log.Info().Str("email", admin.Email).Msg("default admin created")
	return true, nil
}

// UserService covers the admin-side user operations.
type UserService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewUserService(st *store.Store, log zerolog.Logger) *UserService {
	return &UserService{store: st, log: log.With().Str("service", "users").Logger()}
}

func (s *UserService) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	users, err := s.store.Users.List(ctx, role)
	if err != nil {
		return nil, apperr.Internal("Error al listar usuarios", err)
	}
	return users, nil
}

// Disable deactivates a user and revokes all of their sessions.
func (s *UserService) Disable(ctx context.Context, actor security.Principal, id uint) (*models.User, error) {
	if actor.UserID == id {
		return nil, apperr.BadRequest("No puedes desactivar tu propia cuenta")
	}

	var user *models.User
	var revoked int64
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		u, err := tx.Users.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		if err != nil {
			return err
		}
		u.Status = models.StatusDisabled
		if err := tx.Users.Save(ctx, u); err != nil {
			return err
		}
		revoked, err = tx.Sessions.DeleteAllForUser(ctx, id)
		user = u
		return err
	})
	if err != nil {
		return nil, wrapInternal(err, "Error al desactivar el usuario")
	}

	s.log.Info().Uint("user_id", id).Int64("sessions_revoked", revoked).Msg("user disabled")
	return user, nil
}
