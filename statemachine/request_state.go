package statemachine

import (
	"errors"
	"strings"

	"promo-restaurant-api/models"
)

// ErrAlreadyResolved is returned for any transition out of a terminal state.
var ErrAlreadyResolved = errors.New("request already resolved")

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.RequestStatus `json:"from"`
	To    models.RequestStatus `json:"to"`
	Actor models.UserRole      `json:"actor"`
}

// validTransitions is the authoritative lifecycle of a restaurant request
var validTransitions = []Transition{
	// Admin accepts: the user becomes a restaurant owner
	{From: models.RequestPending, To: models.RequestApproved, Actor: models.RoleAdmin},
	// Admin declines: no side effects
	{From: models.RequestPending, To: models.RequestRejected, Actor: models.RoleAdmin},
}

type transitionKey struct {
	From  models.RequestStatus
	To    models.RequestStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.RequestStatus) []models.RequestStatus {
	var nexts []models.RequestStatus
	seen := map[models.RequestStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.RequestStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if actor may move a request from one state to another.
// Leaving a terminal state always yields ErrAlreadyResolved.
func CanTransition(from, to models.RequestStatus, actor models.UserRole) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	if IsTerminal(from) {
		return ErrAlreadyResolved
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for actor '" + string(actor) + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.RequestStatus) string {
	nexts := ValidTransitionsFrom(status)
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// ParseResolution accepts the spellings clients send when resolving a request
// (aprobado/aprobada/rechazado/rechazada, any case) and normalises them.
func ParseResolution(raw string) (models.RequestStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "aprobado", "aprobada":
		return models.RequestApproved, true
	case "rechazado", "rechazada":
		return models.RequestRejected, true
	}
	return "", false
}

// ParseFilter is ParseResolution plus "pendiente", for list filters.
func ParseFilter(raw string) (models.RequestStatus, bool) {
	if strings.ToLower(strings.TrimSpace(raw)) == string(models.RequestPending) {
		return models.RequestPending, true
	}
	return ParseResolution(raw)
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
