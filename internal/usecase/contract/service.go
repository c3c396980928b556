package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainContract "parcel-relay/internal/domain/contract"
	"parcel-relay/internal/logger"
	appErrors "parcel-relay/pkg/errors"
)

// Service is the contract gate. Expiry is recomputed against the clock
// on every check and never cached or stored.
type Service struct {
	contractRepo domainContract.Repository
	now          func() time.Time
}

func NewService(contractRepo domainContract.Repository) *Service {
	return &Service{
		contractRepo: contractRepo,
		now:          time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Authorize succeeds only when the carrier holds a SIGNED, non-expired
// contract. The two failure modes stay distinguishable so callers can
// tell "sign now" apart from "contract ended".
func (s *Service) Authorize(ctx context.Context, carrierID uuid.UUID, action string) error {
	contracts, err := s.contractRepo.ListByCarrier(ctx, carrierID)
	if err != nil {
		return err
	}

	now := s.now()
	sawSigned := false
	for _, c := range contracts {
		if c.Status != domainContract.StatusSigned {
			continue
		}
		sawSigned = true
		if c.IsExpired(now) {
			continue
		}

		logger.Debug("Professional action authorized",
			zap.String("carrier_id", carrierID.String()),
			zap.String("action", action),
			zap.String("contract_id", c.ID.String()),
		)
		return nil
	}

	if sawSigned {
		return appErrors.NewAppError(
			"CONTRACT_EXPIRED",
			"carrier contract has expired",
			domainContract.ErrContractExpired,
		)
	}

	return appErrors.NewAppError(
		"NO_CONTRACT",
		"carrier has no signed contract",
		domainContract.ErrNoContract,
	)
}

// Sign performs the one-way PENDING_SIGNATURE -> SIGNED transition
func (s *Service) Sign(ctx context.Context, contractID, carrierID uuid.UUID) (*domainContract.Contract, error) {
	c, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if c.CarrierID != carrierID {
		return nil, appErrors.NewAppError(
			"FORBIDDEN",
			"contract belongs to another carrier",
			appErrors.ErrForbidden,
		)
	}

	if c.Status == domainContract.StatusSigned {
		return nil, domainContract.ErrAlreadySigned
	}

	signedAt := s.now()
	c.Status = domainContract.StatusSigned
	c.SignedAt = &signedAt
	c.UpdatedAt = signedAt

	if err := s.contractRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	logger.Info("Contract signed",
		zap.String("contract_id", c.ID.String()),
		zap.String("carrier_id", carrierID.String()),
		zap.String("event", "contract_signed"),
	)

	return c, nil
}

// ListByCarrier returns the carrier's contracts with derived expiry applied
func (s *Service) ListByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*ContractResponse, error) {
	contracts, err := s.contractRepo.ListByCarrier(ctx, carrierID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]*ContractResponse, len(contracts))
	for i, c := range contracts {
		responses[i] = ToContractResponse(c, now)
	}
	return responses, nil
}
