package match

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainMatch "parcel-relay/internal/domain/match"
	domainParcel "parcel-relay/internal/domain/parcel"
	"parcel-relay/internal/logger"
	"parcel-relay/internal/usecase/lifecycle"
	appErrors "parcel-relay/pkg/errors"
	"parcel-relay/pkg/utils"
)

// Service proposes and resolves associations between parcels and
// carrier rides. Accept is serialized per parcel: first valid
// acceptance wins, later ones observe ErrStale.
type Service struct {
	matchRepo  domainMatch.Repository
	parcelRepo domainParcel.Repository
	lifecycle  *lifecycle.Service
}

func NewService(
	matchRepo domainMatch.Repository,
	parcelRepo domainParcel.Repository,
	lifecycleSvc *lifecycle.Service,
) *Service {
	return &Service{
		matchRepo:  matchRepo,
		parcelRepo: parcelRepo,
		lifecycle:  lifecycleSvc,
	}
}

// Propose creates a PENDING match for the parcel. The first proposal
// moves the parcel PENDING -> MATCHED.
func (s *Service) Propose(ctx context.Context, req *ProposeRequest) (*domainMatch.Match, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	release, err := s.lifecycle.Locks().Acquire(ctx, req.ParcelID)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.parcelRepo.GetByID(ctx, req.ParcelID)
	if err != nil {
		return nil, err
	}
	if p.Status.IsTerminal() {
		return nil, appErrors.NewAppError("PARCEL_TERMINAL", "parcel journey already ended", domainParcel.ErrParcelTerminal)
	}

	// A held parcel only takes relay-segment proposals, issued by the
	// relay checkpoint flow.
	if _, err := s.matchRepo.GetCurrentByParcel(ctx, req.ParcelID); err == nil {
		return nil, appErrors.NewAppError(
			"ALREADY_ACCEPTED",
			"parcel already has an accepted match",
			domainMatch.ErrAlreadyAccepted,
		)
	}

	m := &domainMatch.Match{
		ID:        uuid.New(),
		ParcelID:  req.ParcelID,
		CarrierID: req.CarrierID,
		RideID:    req.RideID,
		Status:    domainMatch.StatusPending,
		Segment:   0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.matchRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	if p.Status == domainParcel.StatusPending {
		if _, err := s.lifecycle.Apply(ctx, p, domainParcel.StatusMatched, req.CarrierID); err != nil {
			return nil, err
		}
	}

	logger.Info("Match proposed",
		zap.String("match_id", m.ID.String()),
		zap.String("parcel_id", m.ParcelID.String()),
		zap.String("carrier_id", m.CarrierID.String()),
		zap.String("event", "match_proposed"),
	)

	return m, nil
}

// ProposeRelay creates a PENDING relay-segment proposal for the next
// carrier. The caller must hold the parcel's critical section.
func (s *Service) ProposeRelay(ctx context.Context, p *domainParcel.Parcel, nextCarrierID uuid.UUID) (*domainMatch.Match, error) {
	segment := 1
	if current, err := s.matchRepo.GetCurrentByParcel(ctx, p.ID); err == nil {
		segment = current.Segment + 1
	}

	m := &domainMatch.Match{
		ID:        uuid.New(),
		ParcelID:  p.ID,
		CarrierID: nextCarrierID,
		Status:    domainMatch.StatusPending,
		Segment:   segment,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.matchRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	logger.Info("Relay segment proposed",
		zap.String("match_id", m.ID.String()),
		zap.String("parcel_id", p.ID.String()),
		zap.String("next_carrier_id", nextCarrierID.String()),
		zap.Int("segment", segment),
		zap.String("event", "relay_match_proposed"),
	)

	return m, nil
}

// Accept resolves a PENDING proposal in the acting carrier's favor,
// rejects the competing ones and drives the lifecycle edge.
func (s *Service) Accept(ctx context.Context, matchID, carrierID uuid.UUID) (*domainMatch.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	release, err := s.lifecycle.Locks().Acquire(ctx, m.ParcelID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Reload inside the critical section; a competing accept may have
	// resolved the race while we waited.
	m, err = s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if m.CarrierID != carrierID {
		return nil, appErrors.NewAppError("FORBIDDEN", "match belongs to another carrier", appErrors.ErrForbidden)
	}

	// Relay segments are accepted by presenting the transfer code at the
	// handoff point, not through this endpoint.
	if m.Segment > 0 {
		return nil, appErrors.NewAppError(
			"RELAY_CONFIRM_REQUIRED",
			"relay segments are accepted by confirming the checkpoint transfer code",
			appErrors.ErrForbidden,
		)
	}

	if m.Status.IsCurrent() {
		// Retried accept, nothing to do
		return m, nil
	}

	if current, err := s.matchRepo.GetCurrentByParcel(ctx, m.ParcelID); err == nil && current.ID != m.ID {
		return nil, appErrors.NewAppError("STALE", "another match was accepted first", domainMatch.ErrStale)
	}

	if m.Status != domainMatch.StatusPending {
		return nil, appErrors.NewAppError("STALE", "match is no longer pending", domainMatch.ErrStale)
	}

	p, err := s.parcelRepo.GetByID(ctx, m.ParcelID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m.Status = domainMatch.StatusAccepted
	m.AcceptedAt = &now
	m.UpdatedAt = now
	if err := s.matchRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	if _, err := s.lifecycle.Apply(ctx, p, domainParcel.StatusAcceptedByCarrier, carrierID); err != nil {
		// Hand the match back so the parcel and match views stay coherent
		m.Status = domainMatch.StatusPending
		m.AcceptedAt = nil
		_ = s.matchRepo.Update(ctx, m)
		return nil, err
	}

	s.rejectCompeting(ctx, m)

	logger.Info("Match accepted",
		zap.String("match_id", m.ID.String()),
		zap.String("parcel_id", m.ParcelID.String()),
		zap.String("carrier_id", carrierID.String()),
		zap.String("event", "match_accepted"),
	)

	return m, nil
}

// Reject declines a proposal. No parcel status side effects.
func (s *Service) Reject(ctx context.Context, matchID, carrierID uuid.UUID, reason *string) (*domainMatch.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if m.CarrierID != carrierID {
		return nil, appErrors.NewAppError("FORBIDDEN", "match belongs to another carrier", appErrors.ErrForbidden)
	}

	if m.Status != domainMatch.StatusPending {
		return nil, domainMatch.ErrNotPending
	}

	m.Status = domainMatch.StatusRejected
	m.RejectReason = reason
	m.UpdatedAt = time.Now()
	if err := s.matchRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	logger.Info("Match rejected",
		zap.String("match_id", m.ID.String()),
		zap.String("carrier_id", carrierID.String()),
		zap.String("event", "match_rejected"),
	)

	return m, nil
}

// ListByParcel returns every proposal ever made for the parcel
func (s *Service) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]*domainMatch.Match, error) {
	return s.matchRepo.ListByParcel(ctx, parcelID)
}

// ListPendingByCarrier returns the carrier's open proposals
func (s *Service) ListPendingByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*domainMatch.Match, error) {
	return s.matchRepo.ListPendingByCarrier(ctx, carrierID)
}

func (s *Service) rejectCompeting(ctx context.Context, winner *domainMatch.Match) {
	matches, err := s.matchRepo.ListByParcel(ctx, winner.ParcelID)
	if err != nil {
		logger.Warn("Failed to list competing matches",
			zap.String("parcel_id", winner.ParcelID.String()),
			zap.Error(err),
		)
		return
	}

	for _, other := range matches {
		if other.ID == winner.ID || other.Status != domainMatch.StatusPending {
			continue
		}
		other.Status = domainMatch.StatusRejected
		other.UpdatedAt = time.Now()
		if err := s.matchRepo.Update(ctx, other); err != nil && !errors.Is(err, domainMatch.ErrMatchNotFound) {
			logger.Warn("Failed to reject competing match",
				zap.String("match_id", other.ID.String()),
				zap.Error(err),
			)
		}
	}
}
