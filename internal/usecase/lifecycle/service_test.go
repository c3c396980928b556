package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainMatch "parcel-relay/internal/domain/match"
	domainNotification "parcel-relay/internal/domain/notification"
	domainParcel "parcel-relay/internal/domain/parcel"
	domainRelay "parcel-relay/internal/domain/relay"
	domainUser "parcel-relay/internal/domain/user"
	"parcel-relay/internal/infrastructure/memory"
	"parcel-relay/internal/lock"
	appErrors "parcel-relay/pkg/errors"
)

type stubGate struct {
	err   error
	calls int
}

func (g *stubGate) Authorize(_ context.Context, _ uuid.UUID, _ string) error {
	g.calls++
	return g.err
}

type captureEmitter struct {
	mu     sync.Mutex
	events []domainNotification.LifecycleTransitioned
}

func (e *captureEmitter) EmitLifecycle(event domainNotification.LifecycleTransitioned) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *captureEmitter) all() []domainNotification.LifecycleTransitioned {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domainNotification.LifecycleTransitioned, len(e.events))
	copy(out, e.events)
	return out
}

type lifecycleFixture struct {
	svc        *Service
	parcelRepo *memory.ParcelRepository
	matchRepo  *memory.MatchRepository
	relayRepo  *memory.RelayRepository
	userRepo   *memory.UserRepository
	gate       *stubGate
	emitter    *captureEmitter
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	f := &lifecycleFixture{
		parcelRepo: memory.NewParcelRepository(),
		matchRepo:  memory.NewMatchRepository(),
		relayRepo:  memory.NewRelayRepository(),
		userRepo:   memory.NewUserRepository(),
		gate:       &stubGate{},
		emitter:    &captureEmitter{},
	}
	f.svc = NewService(
		f.parcelRepo,
		f.matchRepo,
		f.relayRepo,
		f.userRepo,
		f.gate,
		lock.NewKeyed(time.Second),
		f.emitter,
	)
	return f
}

func (f *lifecycleFixture) seedParcel(t *testing.T, status domainParcel.Status) *domainParcel.Parcel {
	t.Helper()

	p := &domainParcel.Parcel{
		ID:               uuid.New(),
		SenderID:         uuid.New(),
		Description:      "glassware",
		TrackingNumber:   "PR-" + uuid.New().String()[:10],
		Status:           status,
		FinalDestination: "Marseille",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, f.parcelRepo.Create(context.Background(), p))
	return p
}

func (f *lifecycleFixture) seedCurrentCarrier(t *testing.T, parcelID uuid.UUID) uuid.UUID {
	t.Helper()

	carrierID := uuid.New()
	now := time.Now()
	m := &domainMatch.Match{
		ID:         uuid.New(),
		ParcelID:   parcelID,
		CarrierID:  carrierID,
		Status:     domainMatch.StatusAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
		AcceptedAt: &now,
	}
	require.NoError(t, f.matchRepo.Create(context.Background(), m))
	return carrierID
}

func TestTransition_CurrentCarrierDelivers(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusInTransit)
	carrierID := f.seedCurrentCarrier(t, p.ID)

	updated, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrierID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusDelivered, updated.Status)

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusDelivered, stored.Status)

	// Delivery completes the carrier's segment
	matches, err := f.matchRepo.ListByParcel(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, domainMatch.StatusCompleted, matches[0].Status)

	events := f.emitter.all()
	require.Len(t, events, 1)
	assert.Equal(t, domainParcel.StatusInTransit, events[0].From)
	assert.Equal(t, domainParcel.StatusDelivered, events[0].To)
	assert.Equal(t, carrierID, events[0].ActorID)
}

func TestTransition_SameStatusIsIdempotent(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusInTransit)
	carrierID := f.seedCurrentCarrier(t, p.ID)

	updated, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusInTransit, carrierID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusInTransit, updated.Status)

	// Retries must not fan out a duplicate event
	assert.Empty(t, f.emitter.all())
}

func TestTransition_InvalidEdge(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusPending)

	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusDelivered, p.SenderID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusPending, stored.Status)
	assert.Empty(t, f.emitter.all())
}

func TestTransition_StrangerIsForbidden(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusAcceptedByCarrier)
	f.seedCurrentCarrier(t, p.ID)

	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusInTransit, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestTransition_SenderMayCancel(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusPending)

	updated, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusCancelled, p.SenderID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusCancelled, updated.Status)
}

func TestTransition_CarrierMayNotCancel(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusInTransit)
	carrierID := f.seedCurrentCarrier(t, p.ID)

	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusCancelled, carrierID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestTransition_AdminBypassesCapabilities(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	admin := &domainUser.User{ID: uuid.New(), Role: domainUser.RoleAdmin, IsActive: true}
	f.userRepo.Seed(admin)

	p := f.seedParcel(t, domainParcel.StatusInTransit)
	f.seedCurrentCarrier(t, p.ID)

	updated, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusFailed, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusFailed, updated.Status)
}

func TestTransition_AwaitingRelayRequiresContract(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.gate.err = appErrors.NewAppError("NO_CONTRACT", "carrier has no signed contract", nil)

	p := f.seedParcel(t, domainParcel.StatusInTransit)
	carrierID := f.seedCurrentCarrier(t, p.ID)

	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusAwaitingRelay, carrierID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrContractNotAuthorized))
	assert.Equal(t, 1, f.gate.calls)

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusInTransit, stored.Status)
}

func TestTransition_NonProfessionalEdgeSkipsGate(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.gate.err = appErrors.ErrContractNotAuthorized

	p := f.seedParcel(t, domainParcel.StatusAcceptedByCarrier)
	carrierID := f.seedCurrentCarrier(t, p.ID)

	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusInTransit, carrierID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gate.calls)
}

func TestTransition_MerchantDeliveryRequiresContract(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.gate.err = appErrors.NewAppError("CONTRACT_EXPIRED", "carrier contract has expired", nil)

	p := f.seedParcel(t, domainParcel.StatusInTransit)
	merchant := &domainUser.User{ID: p.SenderID, Role: domainUser.RoleMerchant, IsActive: true}
	f.userRepo.Seed(merchant)
	carrierID := f.seedCurrentCarrier(t, p.ID)

	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrierID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrContractNotAuthorized))
}

func TestTransition_RelayInProgressNeedsOpenCheckpoint(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusAwaitingRelay)

	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusRelayInProgress, uuid.New())
	require.Error(t, err)

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusAwaitingRelay, stored.Status)
}

func TestTransition_RelayConfirmCapability(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	p := f.seedParcel(t, domainParcel.StatusAwaitingRelay)
	nextCarrierID := uuid.New()

	cp := &domainRelay.Checkpoint{
		ID:            uuid.New(),
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		EventType:     domainRelay.EventTransfer,
		NextCarrierID: nextCarrierID,
		TransferCode:  "A1B2C3",
		CreatedAt:     time.Now(),
	}
	require.NoError(t, f.relayRepo.Append(ctx, cp))

	// Only the designated next carrier may drive this edge
	_, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusRelayInProgress, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	updated, err := f.svc.Transition(ctx, p.ID, domainParcel.StatusRelayInProgress, nextCarrierID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusRelayInProgress, updated.Status)
}

func TestTransition_ParcelNotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.Transition(context.Background(), uuid.New(), domainParcel.StatusMatched, uuid.New())
	assert.True(t, errors.Is(err, domainParcel.ErrParcelNotFound))
}

// flakyMatchRepo fails the next failUpdates calls to Update
type flakyMatchRepo struct {
	*memory.MatchRepository
	failUpdates int
}

func (r *flakyMatchRepo) Update(ctx context.Context, m *domainMatch.Match) error {
	if r.failUpdates > 0 {
		r.failUpdates--
		return errors.New("store unavailable")
	}
	return r.MatchRepository.Update(ctx, m)
}

// flakyParcelRepo fails the next failStatusWrites calls to UpdateStatus
type flakyParcelRepo struct {
	*memory.ParcelRepository
	failStatusWrites int
}

func (r *flakyParcelRepo) UpdateStatus(ctx context.Context, parcelID uuid.UUID, status domainParcel.Status) error {
	if r.failStatusWrites > 0 {
		r.failStatusWrites--
		return errors.New("store unavailable")
	}
	return r.ParcelRepository.UpdateStatus(ctx, parcelID, status)
}

func TestTransition_DeliveryMatchWriteFailureAppliesNothing(t *testing.T) {
	ctx := context.Background()

	parcelRepo := memory.NewParcelRepository()
	matchRepo := &flakyMatchRepo{MatchRepository: memory.NewMatchRepository()}
	emitter := &captureEmitter{}
	svc := NewService(
		parcelRepo,
		matchRepo,
		memory.NewRelayRepository(),
		memory.NewUserRepository(),
		&stubGate{},
		lock.NewKeyed(time.Second),
		emitter,
	)

	p := &domainParcel.Parcel{
		ID:               uuid.New(),
		SenderID:         uuid.New(),
		Description:      "glassware",
		TrackingNumber:   "PR-" + uuid.New().String()[:10],
		Status:           domainParcel.StatusInTransit,
		FinalDestination: "Marseille",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, parcelRepo.Create(ctx, p))

	carrierID := uuid.New()
	now := time.Now()
	m := &domainMatch.Match{
		ID:         uuid.New(),
		ParcelID:   p.ID,
		CarrierID:  carrierID,
		Status:     domainMatch.StatusAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
		AcceptedAt: &now,
	}
	require.NoError(t, matchRepo.Create(ctx, m))

	matchRepo.failUpdates = 1
	_, err := svc.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrierID)
	require.Error(t, err)

	// Neither record moved and no event went out
	stored, err := parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusInTransit, stored.Status)

	storedMatch, err := matchRepo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domainMatch.StatusAccepted, storedMatch.Status)
	assert.Empty(t, emitter.all())

	// The retry completes the delivery
	updated, err := svc.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrierID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusDelivered, updated.Status)

	storedMatch, err = matchRepo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domainMatch.StatusCompleted, storedMatch.Status)
	assert.Len(t, emitter.all(), 1)
}

func TestTransition_StatusWriteFailureRestoresMatch(t *testing.T) {
	ctx := context.Background()

	parcelRepo := &flakyParcelRepo{ParcelRepository: memory.NewParcelRepository()}
	matchRepo := memory.NewMatchRepository()
	emitter := &captureEmitter{}
	svc := NewService(
		parcelRepo,
		matchRepo,
		memory.NewRelayRepository(),
		memory.NewUserRepository(),
		&stubGate{},
		lock.NewKeyed(time.Second),
		emitter,
	)

	p := &domainParcel.Parcel{
		ID:               uuid.New(),
		SenderID:         uuid.New(),
		Description:      "glassware",
		TrackingNumber:   "PR-" + uuid.New().String()[:10],
		Status:           domainParcel.StatusInTransit,
		FinalDestination: "Marseille",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, parcelRepo.Create(ctx, p))

	carrierID := uuid.New()
	now := time.Now()
	m := &domainMatch.Match{
		ID:         uuid.New(),
		ParcelID:   p.ID,
		CarrierID:  carrierID,
		Status:     domainMatch.StatusAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
		AcceptedAt: &now,
	}
	require.NoError(t, matchRepo.Create(ctx, m))

	parcelRepo.failStatusWrites = 1
	_, err := svc.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrierID)
	require.Error(t, err)

	// The completed segment was rolled back with the failed status write
	storedMatch, err := matchRepo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domainMatch.StatusAccepted, storedMatch.Status)

	stored, err := parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusInTransit, stored.Status)
	assert.Empty(t, emitter.all())

	updated, err := svc.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrierID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusDelivered, updated.Status)
}
