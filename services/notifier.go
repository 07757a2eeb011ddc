package services

import "context"

//go:generate mockgen -source=notifier.go -destination=mocks/notifier.go -package=mocks

// Notifier delivers a password-reset link to a user.
type Notifier interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}
