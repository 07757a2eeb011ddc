package handlers

import (
	"context"
	"net/http"
	"time"

	"promo-restaurant-api/models"
	"promo-restaurant-api/statemachine"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness and database reachability
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, database := "healthy", "up"
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			status, database = "degraded", "down"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":   status,
			"database": database,
			"service":  "Promo Restaurant API",
			"version":  "1.0.0",
		})
	}
}

// GetStateMachineInfo returns the full state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	var terminal []models.RequestStatus
	for _, s := range []models.RequestStatus{models.RequestPending, models.RequestApproved, models.RequestRejected} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"initial_state":   models.RequestPending,
		"terminal_states": terminal,
		"description":     "Restaurant ownership request lifecycle",
	})
}
