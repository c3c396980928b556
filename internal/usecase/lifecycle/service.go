package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainMatch "parcel-relay/internal/domain/match"
	domainNotification "parcel-relay/internal/domain/notification"
	domainParcel "parcel-relay/internal/domain/parcel"
	domainRelay "parcel-relay/internal/domain/relay"
	domainUser "parcel-relay/internal/domain/user"
	"parcel-relay/internal/lock"
	"parcel-relay/internal/logger"
	appErrors "parcel-relay/pkg/errors"
)

// ContractGate authorizes professional carrier actions. Implemented by
// the contract use case.
type ContractGate interface {
	Authorize(ctx context.Context, carrierID uuid.UUID, action string) error
}

// EventEmitter receives lifecycle events for notification fan-out.
// Emission must not block on delivery completing.
type EventEmitter interface {
	EmitLifecycle(event domainNotification.LifecycleTransitioned)
}

// Service is the authoritative status transition engine for parcels
type Service struct {
	parcelRepo domainParcel.Repository
	matchRepo  domainMatch.Repository
	relayRepo  domainRelay.Repository
	userRepo   domainUser.Repository
	gate       ContractGate
	locks      *lock.Keyed
	emitter    EventEmitter
}

func NewService(
	parcelRepo domainParcel.Repository,
	matchRepo domainMatch.Repository,
	relayRepo domainRelay.Repository,
	userRepo domainUser.Repository,
	gate ContractGate,
	locks *lock.Keyed,
	emitter EventEmitter,
) *Service {
	return &Service{
		parcelRepo: parcelRepo,
		matchRepo:  matchRepo,
		relayRepo:  relayRepo,
		userRepo:   userRepo,
		gate:       gate,
		locks:      locks,
		emitter:    emitter,
	}
}

// Locks exposes the per-parcel lock scope so that the match and relay
// services serialize their read-modify-write sequences with transitions.
func (s *Service) Locks() *lock.Keyed {
	return s.locks
}

// Transition moves a parcel to target after validating the edge, the
// actor's capability and, for professional edges, the carrier contract.
func (s *Service) Transition(ctx context.Context, parcelID uuid.UUID, target domainParcel.Status, actorID uuid.UUID) (*domainParcel.Parcel, error) {
	release, err := s.locks.Acquire(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.parcelRepo.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	return s.Apply(ctx, p, target, actorID)
}

// Apply performs the transition on an already loaded parcel. The caller
// must hold the parcel's critical section.
func (s *Service) Apply(ctx context.Context, p *domainParcel.Parcel, target domainParcel.Status, actorID uuid.UUID) (*domainParcel.Parcel, error) {
	// Retried client calls land here when the transition already happened.
	// Return the current state unchanged, no duplicate event.
	if p.Status == target {
		return p, nil
	}

	if err := ValidateStatusTransition(p.Status, target); err != nil {
		return nil, err
	}

	if err := s.checkCapability(ctx, p, target, actorID); err != nil {
		return nil, err
	}

	if professionalEdges[target] || s.isMerchantDelivery(ctx, p, target) {
		if err := s.gate.Authorize(ctx, actorID, string(target)); err != nil {
			return nil, appErrors.NewAppError(
				"CONTRACT_NOT_AUTHORIZED",
				"carrier contract does not permit this action",
				errors.Join(appErrors.ErrContractNotAuthorized, err),
			)
		}
	}

	// The relay confirm flow is the only way into RELAY_IN_PROGRESS and it
	// needs an open checkpoint to exist.
	if target == domainParcel.StatusRelayInProgress {
		if _, err := s.relayRepo.GetOpenByParcel(ctx, p.ID); err != nil {
			return nil, appErrors.NewAppError(
				"NO_OPEN_CHECKPOINT",
				"no unconfirmed relay checkpoint for this parcel",
				err,
			)
		}
	}

	from := p.Status

	// Final delivery finishes the carrier's segment. The match is
	// completed first and restored if the status write fails, so a
	// failed transition leaves both records as they were and the caller
	// can retry.
	var completed *domainMatch.Match
	var completedFrom domainMatch.Status
	if target == domainParcel.StatusDelivered {
		if current, err := s.matchRepo.GetCurrentByParcel(ctx, p.ID); err == nil {
			completedFrom = current.Status
			current.Status = domainMatch.StatusCompleted
			current.UpdatedAt = time.Now()
			if err := s.matchRepo.Update(ctx, current); err != nil {
				return nil, err
			}
			completed = current
		}
	}

	p.Status = target
	p.UpdatedAt = time.Now()

	if err := s.parcelRepo.UpdateStatus(ctx, p.ID, target); err != nil {
		// Roll the in-memory copy back so callers never observe a status
		// that was not persisted.
		p.Status = from
		if completed != nil {
			completed.Status = completedFrom
			completed.UpdatedAt = time.Now()
			if rerr := s.matchRepo.Update(ctx, completed); rerr != nil {
				logger.Error("Failed to restore match after status write failure",
					zap.String("match_id", completed.ID.String()),
					zap.Error(rerr),
				)
			}
		}
		return nil, err
	}

	s.emitter.EmitLifecycle(domainNotification.LifecycleTransitioned{
		ParcelID:   p.ID,
		From:       from,
		To:         target,
		ActorID:    actorID,
		OccurredAt: p.UpdatedAt,
	})

	logger.Info("Parcel status transitioned",
		zap.String("parcel_id", p.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor_id", actorID.String()),
		zap.String("event", "parcel_transitioned"),
	)

	return p, nil
}

func (s *Service) checkCapability(ctx context.Context, p *domainParcel.Parcel, target domainParcel.Status, actorID uuid.UUID) error {
	// Admins may drive any edge
	if actor, err := s.userRepo.GetByID(ctx, actorID); err == nil && actor.Role == domainUser.RoleAdmin {
		return nil
	}

	switch requiredCapability(target) {
	case CapSender:
		if p.SenderID == actorID {
			return nil
		}
	case CapCurrentCarrier:
		if s.isCurrentCarrier(ctx, p.ID, actorID) {
			return nil
		}
	case CapSenderOrMatched:
		if p.SenderID == actorID {
			return nil
		}
		matches, err := s.matchRepo.ListByParcel(ctx, p.ID)
		if err == nil {
			for _, m := range matches {
				if m.CarrierID == actorID {
					return nil
				}
			}
		}
	case CapRelayConfirm:
		cp, err := s.relayRepo.GetOpenByParcel(ctx, p.ID)
		if err == nil && cp.NextCarrierID == actorID {
			return nil
		}
	}

	return appErrors.NewAppError(
		"FORBIDDEN",
		"actor may not perform this transition",
		appErrors.ErrForbidden,
	)
}

func (s *Service) isCurrentCarrier(ctx context.Context, parcelID, actorID uuid.UUID) bool {
	current, err := s.matchRepo.GetCurrentByParcel(ctx, parcelID)
	return err == nil && current.CarrierID == actorID
}

// isMerchantDelivery reports whether the edge is a delivery on behalf of
// a merchant sender, which is a professional action.
func (s *Service) isMerchantDelivery(ctx context.Context, p *domainParcel.Parcel, target domainParcel.Status) bool {
	if target != domainParcel.StatusDelivered {
		return false
	}
	sender, err := s.userRepo.GetByID(ctx, p.SenderID)
	return err == nil && sender.Role == domainUser.RoleMerchant
}
