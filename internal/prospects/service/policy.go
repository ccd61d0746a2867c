package service

import (
	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/domain"
	"autoplaza_backend/platform/apperr"
)

// ReassignPolicy decides whether an actor may transfer ownership of a
// prospect. The policy is injected so deployments can tighten the rule
// without touching the service.
type ReassignPolicy interface {
	Authorize(actorID uuid.UUID, roles []string, prospect *domain.Prospect) error
}

// AllowAllPolicy permits any authenticated actor to reassign. This is the
// default: small dealerships shuffle leads freely.
type AllowAllPolicy struct{}

func (AllowAllPolicy) Authorize(uuid.UUID, []string, *domain.Prospect) error { return nil }

// ManagerOrOwnerPolicy permits the current owner and anyone holding the
// manager role.
type ManagerOrOwnerPolicy struct{}

func (ManagerOrOwnerPolicy) Authorize(actorID uuid.UUID, roles []string, prospect *domain.Prospect) error {
	if prospect.IsAssignedTo(actorID) {
		return nil
	}
	for _, role := range roles {
		if role == "manager" || role == "admin" {
			return nil
		}
	}
	return apperr.Forbidden("only the current owner or a manager can reassign this prospect")
}
