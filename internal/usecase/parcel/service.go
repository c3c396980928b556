package parcel

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainParcel "parcel-relay/internal/domain/parcel"
	domainUser "parcel-relay/internal/domain/user"
	"parcel-relay/internal/logger"
	appErrors "parcel-relay/pkg/errors"
	"parcel-relay/pkg/utils"
)

// Service covers parcel intake and read models. Status mutation is the
// lifecycle engine's job, never done here.
type Service struct {
	parcelRepo domainParcel.Repository
	userRepo   domainUser.Repository
}

func NewService(parcelRepo domainParcel.Repository, userRepo domainUser.Repository) *Service {
	return &Service{
		parcelRepo: parcelRepo,
		userRepo:   userRepo,
	}
}

// Create registers a parcel for a sender and issues its tracking number
func (s *Service) Create(ctx context.Context, senderID uuid.UUID, req *CreateParcelRequest) (*ParcelResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if sender.Role != domainUser.RoleSender && sender.Role != domainUser.RoleMerchant {
		return nil, appErrors.NewAppError("FORBIDDEN", "only senders and merchants create parcels", appErrors.ErrForbidden)
	}

	tracking, err := generateTrackingNumber()
	if err != nil {
		return nil, err
	}

	p := &domainParcel.Parcel{
		ID:               uuid.New(),
		SenderID:         senderID,
		Description:      req.Description,
		WeightKg:         req.WeightKg,
		Dimensions:       req.Dimensions,
		Fragile:          req.Fragile,
		Urgent:           req.Urgent,
		TrackingNumber:   tracking,
		Status:           domainParcel.StatusPending,
		Price:            req.Price,
		CurrentLocation:  req.PickupLocation,
		FinalDestination: req.FinalDestination,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.parcelRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info("Parcel created",
		zap.String("parcel_id", p.ID.String()),
		zap.String("sender_id", senderID.String()),
		zap.String("tracking_number", p.TrackingNumber),
		zap.String("event", "parcel_created"),
	)

	return ToParcelResponse(p), nil
}

// Get returns one parcel for a party involved with it
func (s *Service) Get(ctx context.Context, userID, parcelID uuid.UUID) (*ParcelResponse, error) {
	p, err := s.parcelRepo.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	return ToParcelResponse(p), nil
}

// Track resolves a parcel by its public tracking number
func (s *Service) Track(ctx context.Context, trackingNumber string) (*ParcelResponse, error) {
	p, err := s.parcelRepo.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	return ToParcelResponse(p), nil
}

// List pages through parcels, scoped to the caller's own unless admin
func (s *Service) List(ctx context.Context, userID uuid.UUID, userRole string, filter *ParcelFilterRequest) (*ParcelListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	domainFilter := &domainParcel.Filter{
		Status:   filter.Status,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if userRole != string(domainUser.RoleAdmin) {
		domainFilter.SenderID = &userID
	}

	parcels, total, err := s.parcelRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ParcelResponse, len(parcels))
	for i, p := range parcels {
		responses[i] = *ToParcelResponse(p)
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &ParcelListResponse{
		Parcels:    responses,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

const trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateTrackingNumber issues a PR-prefixed 10-character identifier.
// The ambiguous characters 0/O/1/I are left out of the alphabet.
func generateTrackingNumber() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}

	return "PR-" + string(out), nil
}
