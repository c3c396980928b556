package parcel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainParcel "parcel-relay/internal/domain/parcel"
	domainUser "parcel-relay/internal/domain/user"
	"parcel-relay/internal/infrastructure/memory"
	appErrors "parcel-relay/pkg/errors"
)

func newParcelService(t *testing.T) (*Service, *memory.UserRepository) {
	t.Helper()

	userRepo := memory.NewUserRepository()
	return NewService(memory.NewParcelRepository(), userRepo), userRepo
}

func seedUser(repo *memory.UserRepository, role domainUser.Role) uuid.UUID {
	u := &domainUser.User{ID: uuid.New(), Role: role, IsActive: true}
	repo.Seed(u)
	return u.ID
}

func TestCreate_IssuesTrackingNumber(t *testing.T) {
	svc, userRepo := newParcelService(t)
	senderID := seedUser(userRepo, domainUser.RoleSender)

	resp, err := svc.Create(context.Background(), senderID, &CreateParcelRequest{
		Description:      "framed painting",
		Fragile:          true,
		FinalDestination: "Bordeaux",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domainParcel.StatusPending), resp.Status)
	assert.True(t, strings.HasPrefix(resp.TrackingNumber, "PR-"))
	assert.Len(t, resp.TrackingNumber, 13)
	assert.Equal(t, senderID, resp.SenderID)
}

func TestCreate_CarrierMayNot(t *testing.T) {
	svc, userRepo := newParcelService(t)
	carrierID := seedUser(userRepo, domainUser.RoleCarrier)

	_, err := svc.Create(context.Background(), carrierID, &CreateParcelRequest{
		Description:      "framed painting",
		FinalDestination: "Bordeaux",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestCreate_MerchantMay(t *testing.T) {
	svc, userRepo := newParcelService(t)
	merchantID := seedUser(userRepo, domainUser.RoleMerchant)

	resp, err := svc.Create(context.Background(), merchantID, &CreateParcelRequest{
		Description:      "order #4521",
		FinalDestination: "Nantes",
	})
	require.NoError(t, err)
	assert.Equal(t, merchantID, resp.SenderID)
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc, userRepo := newParcelService(t)
	senderID := seedUser(userRepo, domainUser.RoleSender)

	_, err := svc.Create(context.Background(), senderID, &CreateParcelRequest{
		Description:      "x",
		FinalDestination: "",
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestTrack_ResolvesByTrackingNumber(t *testing.T) {
	svc, userRepo := newParcelService(t)
	senderID := seedUser(userRepo, domainUser.RoleSender)
	ctx := context.Background()

	created, err := svc.Create(ctx, senderID, &CreateParcelRequest{
		Description:      "spare parts",
		FinalDestination: "Toulouse",
	})
	require.NoError(t, err)

	tracked, err := svc.Track(ctx, created.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, tracked.ID)

	_, err = svc.Track(ctx, "PR-DOESNOTEXIST")
	assert.True(t, errors.Is(err, domainParcel.ErrParcelNotFound))
}

func TestList_ScopedToSender(t *testing.T) {
	svc, userRepo := newParcelService(t)
	ctx := context.Background()

	senderA := seedUser(userRepo, domainUser.RoleSender)
	senderB := seedUser(userRepo, domainUser.RoleSender)
	adminID := seedUser(userRepo, domainUser.RoleAdmin)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, senderA, &CreateParcelRequest{
			Description:      "parcel from A",
			FinalDestination: "Nice",
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, senderB, &CreateParcelRequest{
		Description:      "parcel from B",
		FinalDestination: "Nice",
	})
	require.NoError(t, err)

	own, err := svc.List(ctx, senderA, string(domainUser.RoleSender), &ParcelFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), own.Total)

	all, err := svc.List(ctx, adminID, string(domainUser.RoleAdmin), &ParcelFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
}

func TestList_Paging(t *testing.T) {
	svc, userRepo := newParcelService(t)
	ctx := context.Background()
	senderID := seedUser(userRepo, domainUser.RoleSender)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, senderID, &CreateParcelRequest{
			Description:      "bulk parcel",
			FinalDestination: "Rennes",
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, senderID, string(domainUser.RoleSender), &ParcelFilterRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Parcels, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestGenerateTrackingNumber_AvoidsAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 100; i++ {
		tn, err := generateTrackingNumber()
		require.NoError(t, err)
		require.Len(t, tn, 13)
		body := strings.TrimPrefix(tn, "PR-")
		assert.NotContains(t, body, "0")
		assert.NotContains(t, body, "O")
		assert.NotContains(t, body, "1")
		assert.NotContains(t, body, "I")
	}
}
