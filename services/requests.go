package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"promo-restaurant-api/apperr"
	"promo-restaurant-api/models"
	"promo-restaurant-api/security"
	"promo-restaurant-api/statemachine"
	"promo-restaurant-api/store"

	"github.com/rs/zerolog"
)

const (
	msgAlreadyRestaurant = "El usuario ya es un restaurante"
	msgPendingExists     = "Ya existe una solicitud pendiente por revisar"
	msgRequestNotFound   = "Solicitud no encontrada"
	msgRequestResolved   = "La solicitud ya fue resuelta"
	msgRequestOwnerGone  = "Usuario asociado no encontrado"
)

// CreateRequestInput carries the business fields of an ownership request.
// Optional fields stay nil when the client leaves them out.
type CreateRequestInput struct {
	BusinessName string
	TaxID        *string
	Phone        *string
	Address      *string
	City         *string
	Description  *string
}

// RequestService runs the restaurant-ownership request workflow.
type RequestService struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewRequestService(st *store.Store, log zerolog.Logger) *RequestService {
	return &RequestService{
		store: st,
		log:   log.With().Str("service", "restaurant_requests").Logger(),
		now:   time.Now,
	}
}

// Create files a pending request for userID.
func (s *RequestService) Create(ctx context.Context, userID uint, in CreateRequestInput) (*models.RestaurantRequest, error) {
	var created *models.RestaurantRequest
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		user, err := tx.Users.FindByID(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		if err != nil {
			return err
		}
		if user.Role == models.RoleRestaurant {
			return apperr.BadRequest(msgAlreadyRestaurant)
		}

		pending, err := tx.Requests.HasPending(ctx, userID)
		if err != nil {
			return err
		}
		if pending {
			return apperr.BadRequest(msgPendingExists)
		}

		req := &models.RestaurantRequest{
			UserID:       userID,
			BusinessName: strings.TrimSpace(in.BusinessName),
			TaxID:        in.TaxID,
			Phone:        in.Phone,
			Address:      in.Address,
			City:         in.City,
			Description:  in.Description,
			Status:       models.RequestPending,
		}
		if err := tx.Requests.Create(ctx, req); err != nil {
			return err
		}
		req.User = user
		created = req
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err, "Error al crear la solicitud")
	}

	s.log.Info().Uint("request_id", created.ID).Uint("user_id", userID).Msg("restaurant request filed")
	return created, nil
}

func (s *RequestService) List(ctx context.Context, status models.RequestStatus) ([]models.RestaurantRequest, error) {
	requests, err := s.store.Requests.List(ctx, status)
	if err != nil {
		return nil, apperr.Internal("Error al listar solicitudes", err)
	}
	return requests, nil
}

func (s *RequestService) Get(ctx context.Context, id uint) (*models.RestaurantRequest, error) {
	req, err := s.store.Requests.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(msgRequestNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Error al obtener la solicitud", err)
	}
	return req, nil
}

// Latest returns the newest request of userID, or nil if they never filed one.
func (s *RequestService) Latest(ctx context.Context, userID uint) (*models.RestaurantRequest, error) {
	req, err := s.store.Requests.Latest(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("Error al obtener la solicitud", err)
	}
	return req, nil
}

func (s *RequestService) Approve(ctx context.Context, actor security.Principal, id uint, notes *string) (*models.RestaurantRequest, error) {
	return s.Resolve(ctx, actor, id, models.RequestApproved, notes)
}

func (s *RequestService) Reject(ctx context.Context, actor security.Principal, id uint, notes *string) (*models.RestaurantRequest, error) {
	return s.Resolve(ctx, actor, id, models.RequestRejected, notes)
}

// Resolve moves a pending request to approved or rejected in one transaction.
// Approval also promotes the requester and provisions their restaurant, so a
// failure at any step leaves the request pending and the user untouched.
func (s *RequestService) Resolve(ctx context.Context, actor security.Principal, id uint, to models.RequestStatus, notes *string) (*models.RestaurantRequest, error) {
	var resolved *models.RestaurantRequest
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		req, err := tx.Requests.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgRequestNotFound)
		}
		if err != nil {
			return err
		}

		if err := statemachine.CanTransition(req.Status, to, actor.Role); err != nil {
			if errors.Is(err, statemachine.ErrAlreadyResolved) {
				return apperr.BadRequest(msgRequestResolved)
			}
			return apperr.Forbidden(err.Error())
		}

		won, err := tx.Requests.Resolve(ctx, id, to, notes, s.now())
		if err != nil {
			return err
		}
		if !won {
			return apperr.BadRequest(msgRequestResolved)
		}

		if to == models.RequestApproved {
			if err := provision(ctx, tx, req); err != nil {
				return err
			}
		}

		resolved, err = tx.Requests.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err, "Error al resolver la solicitud")
	}

	s.log.Info().
		Uint("request_id", id).
		Uint("admin_id", actor.UserID).
		Str("status", string(to)).
		Msg("restaurant request resolved")
	return resolved, nil
}

// provision promotes the requester and creates their restaurant unless one exists.
func provision(ctx context.Context, tx *store.Store, req *models.RestaurantRequest) error {
	user, err := tx.Users.FindByID(ctx, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgRequestOwnerGone)
	}
	if err != nil {
		return err
	}

	user.Role = models.RoleRestaurant
	user.Status = models.StatusActive
	if err := tx.Users.Save(ctx, user); err != nil {
		return err
	}

	exists, err := tx.Restaurants.ExistsForOwner(ctx, user.ID)
	if err != nil || exists {
		return err
	}
	return tx.Restaurants.Create(ctx, &models.Restaurant{
		OwnerID:     user.ID,
		Name:        req.BusinessName,
		Address:     deref(req.Address),
		Phone:       deref(req.Phone),
		City:        deref(req.City),
		Description: deref(req.Description),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// wrapInternal passes classified errors through and hides everything else
// behind msg.
func wrapInternal(err error, msg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(msg, err)
}
