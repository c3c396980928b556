package relay

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainMatch "parcel-relay/internal/domain/match"
	domainParcel "parcel-relay/internal/domain/parcel"
	domainRelay "parcel-relay/internal/domain/relay"
	"parcel-relay/internal/logger"
	"parcel-relay/internal/usecase/lifecycle"
	matchUsecase "parcel-relay/internal/usecase/match"
	appErrors "parcel-relay/pkg/errors"
	"parcel-relay/pkg/utils"
)

// codeGenAttempts bounds the regenerate loop on transfer code collision
const codeGenAttempts = 5

// Service maintains the append-only checkpoint ledger and runs the
// handoff protocol between successive carriers.
type Service struct {
	relayRepo  domainRelay.Repository
	parcelRepo domainParcel.Repository
	matchRepo  domainMatch.Repository
	matchSvc   *matchUsecase.Service
	lifecycle  *lifecycle.Service
	gate       lifecycle.ContractGate
}

func NewService(
	relayRepo domainRelay.Repository,
	parcelRepo domainParcel.Repository,
	matchRepo domainMatch.Repository,
	matchSvc *matchUsecase.Service,
	lifecycleSvc *lifecycle.Service,
	gate lifecycle.ContractGate,
) *Service {
	return &Service{
		relayRepo:  relayRepo,
		parcelRepo: parcelRepo,
		matchRepo:  matchRepo,
		matchSvc:   matchSvc,
		lifecycle:  lifecycleSvc,
		gate:       gate,
	}
}

// CreateCheckpoint records a handoff point, moves the parcel to
// AWAITING_RELAY and proposes the next segment to the named carrier,
// all within one per-parcel critical section.
func (s *Service) CreateCheckpoint(ctx context.Context, carrierID uuid.UUID, req *CreateCheckpointRequest) (*domainRelay.Checkpoint, error) {
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

	// AWAITING_RELAY is allowed again so a carrier can re-issue a
	// checkpoint after a handoff fell through.
	if p.Status != domainParcel.StatusInTransit && p.Status != domainParcel.StatusAwaitingRelay {
		return nil, appErrors.NewAppError(
			"INVALID_STATUS",
			"checkpoints require a parcel in transit",
			appErrors.ErrInvalidTransition,
		)
	}

	current, err := s.matchRepo.GetCurrentByParcel(ctx, req.ParcelID)
	if err != nil || current.CarrierID != carrierID {
		return nil, appErrors.NewAppError("FORBIDDEN", "only the current carrier may create checkpoints", appErrors.ErrForbidden)
	}

	// Relay creation is a professional action
	if err := s.gate.Authorize(ctx, carrierID, "relay_checkpoint"); err != nil {
		return nil, appErrors.NewAppError(
			"CONTRACT_NOT_AUTHORIZED",
			"carrier contract does not permit relay creation",
			err,
		)
	}

	code, err := s.uniqueTransferCode(ctx, req.ParcelID)
	if err != nil {
		return nil, err
	}

	cp := &domainRelay.Checkpoint{
		ID:               uuid.New(),
		ParcelID:         req.ParcelID,
		Location:         req.Location,
		EventType:        domainRelay.EventTransfer,
		NextCarrierID:    req.NextCarrierID,
		TransferCode:     code,
		Notes:            req.Notes,
		EstimatedArrival: req.EstimatedArrival,
		CreatedAt:        time.Now(),
	}

	if err := s.relayRepo.Append(ctx, cp); err != nil {
		return nil, err
	}

	if p.Status == domainParcel.StatusInTransit {
		if _, err := s.lifecycle.Apply(ctx, p, domainParcel.StatusAwaitingRelay, carrierID); err != nil {
			return nil, err
		}
	}

	if err := s.parcelRepo.UpdateLocation(ctx, p.ID, req.Location); err != nil {
		logger.Warn("Failed to update parcel location",
			zap.String("parcel_id", p.ID.String()),
			zap.Error(err),
		)
	}

	if _, err := s.matchSvc.ProposeRelay(ctx, p, req.NextCarrierID); err != nil {
		return nil, err
	}

	logger.Info("Relay checkpoint created",
		zap.String("checkpoint_id", cp.ID.String()),
		zap.String("parcel_id", p.ID.String()),
		zap.String("location", cp.Location),
		zap.String("next_carrier_id", req.NextCarrierID.String()),
		zap.String("event", "relay_checkpoint_created"),
	)

	return cp, nil
}

// ConfirmCheckpoint lets the next carrier present the transfer code at
// the handoff point. On success the parcel moves to RELAY_IN_PROGRESS,
// the prior carrier's match completes and the confirming carrier
// becomes the current one. An incorrect code never mutates anything.
func (s *Service) ConfirmCheckpoint(ctx context.Context, checkpointID uuid.UUID, presentedCode string, carrierID uuid.UUID) (*domainRelay.Checkpoint, error) {
	cp, err := s.relayRepo.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, err
	}

	release, err := s.lifecycle.Locks().Acquire(ctx, cp.ParcelID)
	if err != nil {
		return nil, err
	}
	defer release()

	cp, err = s.relayRepo.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, err
	}

	if cp.Confirmed {
		return nil, appErrors.NewAppError("ALREADY_CONFIRMED", "checkpoint already confirmed", domainRelay.ErrAlreadyConfirmed)
	}

	// Only the newest open checkpoint is confirmable. A superseded entry
	// stays unconfirmed forever.
	open, err := s.relayRepo.GetOpenByParcel(ctx, cp.ParcelID)
	if err != nil {
		return nil, err
	}
	if open.ID != cp.ID {
		return nil, appErrors.NewAppError("CHECKPOINT_SUPERSEDED", "a newer checkpoint supersedes this one", domainRelay.ErrNoOpenCheckpoint)
	}

	if cp.NextCarrierID != carrierID {
		return nil, appErrors.NewAppError("WRONG_CARRIER", "carrier is not the designated next carrier", domainRelay.ErrWrongCarrier)
	}

	if cp.TransferCode != strings.ToUpper(strings.TrimSpace(presentedCode)) {
		return nil, appErrors.NewAppError("CODE_MISMATCH", "transfer code does not match", domainRelay.ErrCodeMismatch)
	}

	p, err := s.parcelRepo.GetByID(ctx, cp.ParcelID)
	if err != nil {
		return nil, err
	}

	// Sealing the checkpoint is the last write, so a store failure in any
	// earlier step leaves it open and the confirm can be retried. Each
	// step tolerates the earlier ones having already landed.
	if _, err := s.lifecycle.Apply(ctx, p, domainParcel.StatusRelayInProgress, carrierID); err != nil {
		return nil, err
	}

	now := time.Now()

	if prior, err := s.matchRepo.GetCurrentByParcel(ctx, cp.ParcelID); err == nil && prior.CarrierID != carrierID {
		prior.Status = domainMatch.StatusCompleted
		prior.UpdatedAt = now
		if err := s.matchRepo.Update(ctx, prior); err != nil {
			return nil, err
		}
	}

	if err := s.promoteRelayMatch(ctx, cp, now); err != nil {
		return nil, err
	}

	if err := s.relayRepo.Confirm(ctx, cp.ID); err != nil {
		return nil, err
	}
	cp.Confirmed = true
	cp.ConfirmedAt = &now

	logger.Info("Relay handoff confirmed",
		zap.String("checkpoint_id", cp.ID.String()),
		zap.String("parcel_id", cp.ParcelID.String()),
		zap.String("carrier_id", carrierID.String()),
		zap.String("event", "relay_confirmed"),
	)

	return cp, nil
}

// History returns the parcel's checkpoints in append order
func (s *Service) History(ctx context.Context, parcelID uuid.UUID) ([]*domainRelay.Checkpoint, error) {
	return s.relayRepo.ListByParcel(ctx, parcelID)
}

// promoteRelayMatch flips the confirming carrier's pending segment
// proposal to ACCEPTED_RELAY, creating it if the proposal is missing.
// A carrier already holding an ACCEPTED_RELAY match is left alone so a
// retried confirm does not duplicate the segment.
func (s *Service) promoteRelayMatch(ctx context.Context, cp *domainRelay.Checkpoint, now time.Time) error {
	matches, err := s.matchRepo.ListByParcel(ctx, cp.ParcelID)
	if err != nil {
		return err
	}

	for _, m := range matches {
		if m.CarrierID == cp.NextCarrierID && m.Status == domainMatch.StatusAcceptedRelay {
			return nil
		}
	}

	for _, m := range matches {
		if m.CarrierID == cp.NextCarrierID && m.Status == domainMatch.StatusPending && m.Segment > 0 {
			m.Status = domainMatch.StatusAcceptedRelay
			m.AcceptedAt = &now
			m.UpdatedAt = now
			return s.matchRepo.Update(ctx, m)
		}
	}

	segment := 1
	for _, m := range matches {
		if m.Segment >= segment {
			segment = m.Segment + 1
		}
	}

	m := &domainMatch.Match{
		ID:         uuid.New(),
		ParcelID:   cp.ParcelID,
		CarrierID:  cp.NextCarrierID,
		Status:     domainMatch.StatusAcceptedRelay,
		Segment:    segment,
		CreatedAt:  now,
		UpdatedAt:  now,
		AcceptedAt: &now,
	}
	return s.matchRepo.Create(ctx, m)
}

// uniqueTransferCode regenerates on collision within the parcel's
// checkpoint history.
func (s *Service) uniqueTransferCode(ctx context.Context, parcelID uuid.UUID) (string, error) {
	existing, err := s.relayRepo.ListByParcel(ctx, parcelID)
	if err != nil {
		return "", err
	}

	used := make(map[string]bool, len(existing))
	for _, cp := range existing {
		used[cp.TransferCode] = true
	}

	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := GenerateTransferCode()
		if err != nil {
			return "", err
		}
		if !used[code] {
			return code, nil
		}
	}

	return "", domainRelay.ErrDuplicateTransferCode
}
