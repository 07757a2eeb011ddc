package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"promo-restaurant-api/config"
	"promo-restaurant-api/mail"
	"promo-restaurant-api/middleware"
	"promo-restaurant-api/routes"
	"promo-restaurant-api/security"
	"promo-restaurant-api/services"

	"github.com/gin-gonic/gin"
)

// serve runs the API until SIGINT or SIGTERM, then drains in-flight requests.
func serve(parent context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := config.NewRedis(ctx, a.cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limits fall back to process memory")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	tokenCfg, err := a.cfg.JWT.TokenConfig(log)
	if err != nil {
		return err
	}
	tokens := security.NewTokenManager(tokenCfg)
	hasher := security.NewHasher()
	notifier := mail.NewSMTPNotifier(a.cfg.Mail, log)

	auth := services.NewAuthService(a.store, hasher, tokens, notifier, a.cfg.PasswordResetURL, log)
	requests := services.NewRequestService(a.store, log)
	users := services.NewUserService(a.store, log)

	if _, err := services.EnsureDefaultAdmin(ctx, a.store, hasher, a.adminSeed(), log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if n, err := a.store.Sessions.DeleteExpired(ctx, time.Now()); err != nil {
		log.Warn().Err(err).Msg("purge expired sessions")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("expired sessions purged")
	}

	authLimit, err := middleware.NewRateLimiter(a.cfg.AuthRateLimit, rdb)
	if err != nil {
		return fmt.Errorf("auth rate limit: %w", err)
	}

	router := routes.NewRouter(routes.Deps{
		Store:       a.store,
		Tokens:      tokens,
		Auth:        auth,
		Requests:    requests,
		Users:       users,
		Log:         log,
		AuthLimiter: authLimit,
		Secure:      middleware.SecureOptions(!a.cfg.IsProduction()),
		CORSOrigin:  a.cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}
