package relay

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
	"parcel-relay/internal/infrastructure/memory"
	"parcel-relay/internal/lock"
	"parcel-relay/internal/usecase/lifecycle"
	matchUsecase "parcel-relay/internal/usecase/match"
	appErrors "parcel-relay/pkg/errors"
)

type stubGate struct{ err error }

func (g *stubGate) Authorize(_ context.Context, _ uuid.UUID, _ string) error { return g.err }

type nopEmitter struct{}

func (nopEmitter) EmitLifecycle(_ domainNotification.LifecycleTransitioned) {}

// flakyMatchRepo fails the next failUpdates calls to Update
type flakyMatchRepo struct {
	*memory.MatchRepository
	mu          sync.Mutex
	failUpdates int
}

func (r *flakyMatchRepo) Update(ctx context.Context, m *domainMatch.Match) error {
	r.mu.Lock()
	if r.failUpdates > 0 {
		r.failUpdates--
		r.mu.Unlock()
		return errors.New("store unavailable")
	}
	r.mu.Unlock()
	return r.MatchRepository.Update(ctx, m)
}

type relayFixture struct {
	svc        *Service
	matchSvc   *matchUsecase.Service
	lifecycle  *lifecycle.Service
	parcelRepo *memory.ParcelRepository
	matchRepo  *flakyMatchRepo
	relayRepo  *memory.RelayRepository
	gate       *stubGate
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	parcelRepo := memory.NewParcelRepository()
	matchRepo := &flakyMatchRepo{MatchRepository: memory.NewMatchRepository()}
	relayRepo := memory.NewRelayRepository()
	gate := &stubGate{}

	lifecycleSvc := lifecycle.NewService(
		parcelRepo,
		matchRepo,
		relayRepo,
		memory.NewUserRepository(),
		gate,
		lock.NewKeyed(2*time.Second),
		nopEmitter{},
	)
	matchSvc := matchUsecase.NewService(matchRepo, parcelRepo, lifecycleSvc)

	return &relayFixture{
		svc:        NewService(relayRepo, parcelRepo, matchRepo, matchSvc, lifecycleSvc, gate),
		matchSvc:   matchSvc,
		lifecycle:  lifecycleSvc,
		parcelRepo: parcelRepo,
		matchRepo:  matchRepo,
		relayRepo:  relayRepo,
		gate:       gate,
	}
}

// seedInTransit builds a parcel carried by carrierID, already moving.
func (f *relayFixture) seedInTransit(t *testing.T, carrierID uuid.UUID) *domainParcel.Parcel {
	t.Helper()
	ctx := context.Background()

	p := &domainParcel.Parcel{
		ID:               uuid.New(),
		SenderID:         uuid.New(),
		Description:      "cheese wheel",
		TrackingNumber:   "PR-" + uuid.New().String()[:10],
		Status:           domainParcel.StatusPending,
		FinalDestination: "Marseille",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, f.parcelRepo.Create(ctx, p))

	m, err := f.matchSvc.Propose(ctx, &matchUsecase.ProposeRequest{ParcelID: p.ID, CarrierID: carrierID})
	require.NoError(t, err)
	_, err = f.matchSvc.Accept(ctx, m.ID, carrierID)
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(ctx, p.ID, domainParcel.StatusInTransit, carrierID)
	require.NoError(t, err)

	updated, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	return updated
}

func TestCreateCheckpoint_MovesParcelToAwaitingRelay(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrierID := uuid.New()
	nextCarrierID := uuid.New()
	p := f.seedInTransit(t, carrierID)

	cp, err := f.svc.CreateCheckpoint(ctx, carrierID, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: nextCarrierID,
	})
	require.NoError(t, err)
	assert.Len(t, cp.TransferCode, 6)
	assert.False(t, cp.Confirmed)

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusAwaitingRelay, stored.Status)
	require.NotNil(t, stored.CurrentLocation)
	assert.Equal(t, "Gare de Lyon", *stored.CurrentLocation)

	// The next segment was proposed to the named carrier
	matches, err := f.matchRepo.ListByParcel(ctx, p.ID)
	require.NoError(t, err)
	var segment *domainMatch.Match
	for _, m := range matches {
		if m.Segment == 1 {
			segment = m
		}
	}
	require.NotNil(t, segment)
	assert.Equal(t, nextCarrierID, segment.CarrierID)
	assert.Equal(t, domainMatch.StatusPending, segment.Status)
}

func TestCreateCheckpoint_OnlyCurrentCarrier(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	p := f.seedInTransit(t, uuid.New())

	_, err := f.svc.CreateCheckpoint(ctx, uuid.New(), &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestCreateCheckpoint_RequiresContract(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrierID := uuid.New()
	p := f.seedInTransit(t, carrierID)

	f.gate.err = appErrors.NewAppError("NO_CONTRACT", "carrier has no signed contract", nil)

	_, err := f.svc.CreateCheckpoint(ctx, carrierID, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: uuid.New(),
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONTRACT_NOT_AUTHORIZED", appErr.Code)

	// Nothing was appended, the parcel kept moving
	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusInTransit, stored.Status)
	history, err := f.svc.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreateCheckpoint_WrongStatusRejected(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	p := &domainParcel.Parcel{
		ID:               uuid.New(),
		SenderID:         uuid.New(),
		Description:      "books",
		TrackingNumber:   "PR-" + uuid.New().String()[:10],
		Status:           domainParcel.StatusPending,
		FinalDestination: "Lille",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, f.parcelRepo.Create(ctx, p))

	_, err := f.svc.CreateCheckpoint(ctx, uuid.New(), &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestConfirmCheckpoint_CompletesHandoff(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	cp, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmCheckpoint(ctx, cp.ID, cp.TransferCode, carrier2)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	require.NotNil(t, confirmed.ConfirmedAt)

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusRelayInProgress, stored.Status)

	// Carrier 1's segment is done, carrier 2 holds the parcel now
	matches, err := f.matchRepo.ListByParcel(ctx, p.ID)
	require.NoError(t, err)
	byCarrier := make(map[uuid.UUID]domainMatch.Status)
	for _, m := range matches {
		byCarrier[m.CarrierID] = m.Status
	}
	assert.Equal(t, domainMatch.StatusCompleted, byCarrier[carrier1])
	assert.Equal(t, domainMatch.StatusAcceptedRelay, byCarrier[carrier2])

	current, err := f.matchRepo.GetCurrentByParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, carrier2, current.CarrierID)

	// The new carrier resumes transit and can deliver
	_, err = f.lifecycle.Transition(ctx, p.ID, domainParcel.StatusInTransit, carrier2)
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrier2)
	require.NoError(t, err)
}

func TestConfirmCheckpoint_CodeIsNormalized(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	cp, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Part-Dieu",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmCheckpoint(ctx, cp.ID, "  "+cp.TransferCode+" ", carrier2)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
}

func TestConfirmCheckpoint_WrongCodeMutatesNothing(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	cp, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmCheckpoint(ctx, cp.ID, "WRONG1", carrier2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainRelay.ErrCodeMismatch))

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusAwaitingRelay, stored.Status)

	open, err := f.relayRepo.GetOpenByParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, open.Confirmed)

	current, err := f.matchRepo.GetCurrentByParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, carrier1, current.CarrierID)

	// The right code still works afterwards
	_, err = f.svc.ConfirmCheckpoint(ctx, cp.ID, cp.TransferCode, carrier2)
	require.NoError(t, err)
}

func TestConfirmCheckpoint_WrongCarrierRejected(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	cp, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmCheckpoint(ctx, cp.ID, cp.TransferCode, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainRelay.ErrWrongCarrier))
}

func TestConfirmCheckpoint_DoubleConfirmRejected(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	cp, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmCheckpoint(ctx, cp.ID, cp.TransferCode, carrier2)
	require.NoError(t, err)

	_, err = f.svc.ConfirmCheckpoint(ctx, cp.ID, cp.TransferCode, carrier2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainRelay.ErrAlreadyConfirmed))
}

func TestCreateCheckpoint_ReissueWhileAwaitingRelay(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	first, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: uuid.New(),
	})
	require.NoError(t, err)

	// The planned handoff fell through; hand off to someone else instead
	replacement := uuid.New()
	second, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: replacement,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.TransferCode, second.TransferCode)

	// The newest unconfirmed checkpoint supersedes the stranded one
	open, err := f.relayRepo.GetOpenByParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, open.ID)

	history, err := f.svc.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestConfirmCheckpoint_StoreFailureIsRetryable(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	cp, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	// The prior segment's completion hits a failing store
	f.matchRepo.failUpdates = 1
	_, err = f.svc.ConfirmCheckpoint(ctx, cp.ID, cp.TransferCode, carrier2)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domainRelay.ErrAlreadyConfirmed))

	// The checkpoint stays open, so the confirm can be retried
	open, err := f.relayRepo.GetOpenByParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, cp.ID, open.ID)
	assert.False(t, open.Confirmed)

	confirmed, err := f.svc.ConfirmCheckpoint(ctx, cp.ID, cp.TransferCode, carrier2)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusRelayInProgress, stored.Status)

	// The handoff resolved fully: one completed segment, one current
	matches, err := f.matchRepo.ListByParcel(ctx, p.ID)
	require.NoError(t, err)
	byCarrier := make(map[uuid.UUID]domainMatch.Status)
	for _, m := range matches {
		byCarrier[m.CarrierID] = m.Status
	}
	assert.Equal(t, domainMatch.StatusCompleted, byCarrier[carrier1])
	assert.Equal(t, domainMatch.StatusAcceptedRelay, byCarrier[carrier2])

	current, err := f.matchRepo.GetCurrentByParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, carrier2, current.CarrierID)
	assert.Len(t, matches, 2)
}

func TestConfirmCheckpoint_SupersededCheckpointRejected(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	first, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	// Re-issued to the same carrier; only the newest entry is confirmable
	second, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID:      p.ID,
		Location:      "Gare de Lyon",
		NextCarrierID: carrier2,
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmCheckpoint(ctx, first.ID, first.TransferCode, carrier2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainRelay.ErrNoOpenCheckpoint))

	stored, err := f.parcelRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainParcel.StatusAwaitingRelay, stored.Status)

	open, err := f.relayRepo.GetOpenByParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, open.ID)

	confirmed, err := f.svc.ConfirmCheckpoint(ctx, second.ID, second.TransferCode, carrier2)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
}

func TestMultiLegRelayJourney(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	carrier1 := uuid.New()
	carrier2 := uuid.New()
	carrier3 := uuid.New()
	p := f.seedInTransit(t, carrier1)

	// Leg 1 -> 2
	cp1, err := f.svc.CreateCheckpoint(ctx, carrier1, &CreateCheckpointRequest{
		ParcelID: p.ID, Location: "Gare de Lyon", NextCarrierID: carrier2,
	})
	require.NoError(t, err)
	_, err = f.svc.ConfirmCheckpoint(ctx, cp1.ID, cp1.TransferCode, carrier2)
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(ctx, p.ID, domainParcel.StatusInTransit, carrier2)
	require.NoError(t, err)

	// Leg 2 -> 3
	cp2, err := f.svc.CreateCheckpoint(ctx, carrier2, &CreateCheckpointRequest{
		ParcelID: p.ID, Location: "Saint-Charles", NextCarrierID: carrier3,
	})
	require.NoError(t, err)
	_, err = f.svc.ConfirmCheckpoint(ctx, cp2.ID, cp2.TransferCode, carrier3)
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(ctx, p.ID, domainParcel.StatusInTransit, carrier3)
	require.NoError(t, err)

	_, err = f.lifecycle.Transition(ctx, p.ID, domainParcel.StatusDelivered, carrier3)
	require.NoError(t, err)

	history, err := f.svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Confirmed)
	assert.True(t, history[1].Confirmed)

	// Every carrier's segment ended completed
	matches, err := f.matchRepo.ListByParcel(ctx, p.ID)
	require.NoError(t, err)
	segments := make(map[int]domainMatch.Status)
	for _, m := range matches {
		segments[m.Segment] = m.Status
	}
	assert.Equal(t, domainMatch.StatusCompleted, segments[0])
	assert.Equal(t, domainMatch.StatusCompleted, segments[1])
	assert.Equal(t, domainMatch.StatusCompleted, segments[2])
}
