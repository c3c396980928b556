package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parcel-relay/internal/config"
	domainMatch "parcel-relay/internal/domain/match"
	domainNotification "parcel-relay/internal/domain/notification"
	domainParcel "parcel-relay/internal/domain/parcel"
	"parcel-relay/internal/logger"
)

// Dispatcher consumes lifecycle events and fans them out to the
// involved parties. Emission never blocks the triggering operation;
// delivery is at-least-once with bounded backoff against each sink.
// Transport failures are logged, never propagated back to the caller.
type Dispatcher struct {
	repo       domainNotification.Repository
	parcelRepo domainParcel.Repository
	matchRepo  domainMatch.Repository
	sinks      []domainNotification.Sink

	queue       chan domainNotification.LifecycleTransitioned
	maxRetries  int
	baseBackoff time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

func NewDispatcher(
	repo domainNotification.Repository,
	parcelRepo domainParcel.Repository,
	matchRepo domainMatch.Repository,
	cfg config.DispatchConfig,
	sinks ...domainNotification.Sink,
) *Dispatcher {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 200 * time.Millisecond
	}

	return &Dispatcher{
		repo:        repo,
		parcelRepo:  parcelRepo,
		matchRepo:   matchRepo,
		sinks:       sinks,
		queue:       make(chan domainNotification.LifecycleTransitioned, queueSize),
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		stopped:     make(chan struct{}),
	}
}

// EmitLifecycle enqueues an event without blocking the caller. A full
// queue falls back to a goroutine so the event is still not lost.
func (d *Dispatcher) EmitLifecycle(event domainNotification.LifecycleTransitioned) {
	select {
	case <-d.stopped:
		logger.Warn("Dispatcher stopped, dropping event",
			zap.String("parcel_id", event.ParcelID.String()),
		)
		return
	default:
	}

	select {
	case d.queue <- event:
	default:
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			select {
			case d.queue <- event:
			case <-d.stopped:
				logger.Warn("Dispatcher stopped, dropping queued event",
					zap.String("parcel_id", event.ParcelID.String()),
				)
			}
		}()
	}
}

// Run drains the queue until the context ends or Shutdown is called
func (d *Dispatcher) Run(ctx context.Context) {
	logger.Info("Notification dispatcher started")
	d.wg.Add(1)
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.process(ctx, event)
		case <-d.stopped:
			d.drain(ctx)
			return
		case <-ctx.Done():
			d.Shutdown()
			return
		}
	}
}

// Shutdown stops intake and waits briefly for in-flight deliveries
func (d *Dispatcher) Shutdown() {
	d.stopOnce.Do(func() {
		close(d.stopped)

		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			logger.Info("Notification dispatcher stopped")
		case <-time.After(10 * time.Second):
			logger.Warn("Notification dispatcher shutdown timed out")
		}
	})
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case event := <-d.queue:
			d.process(ctx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, event domainNotification.LifecycleTransitioned) {
	recipients := d.recipientsFor(ctx, event)

	for _, recipientID := range recipients {
		n := &domainNotification.Notification{
			ID:          uuid.New(),
			RecipientID: recipientID,
			ParcelID:    event.ParcelID,
			Type:        fmt.Sprintf("parcel_%s", event.To),
			Message:     messageFor(event),
			CreatedAt:   time.Now(),
		}

		if err := d.repo.Create(ctx, n); err != nil {
			logger.Error("Failed to persist notification",
				zap.String("parcel_id", event.ParcelID.String()),
				zap.String("recipient_id", recipientID.String()),
				zap.Error(err),
			)
		}

		d.deliver(ctx, n)
	}
}

// deliver pushes one notification through every sink, retrying each
// with exponential backoff up to maxRetries.
func (d *Dispatcher) deliver(ctx context.Context, n *domainNotification.Notification) {
	delivered := false

	for _, sink := range d.sinks {
		var err error
		for attempt := 0; attempt < d.maxRetries; attempt++ {
			if err = sink.Emit(ctx, n); err == nil {
				delivered = true
				break
			}
			if attempt == d.maxRetries-1 {
				break
			}

			backoff := d.baseBackoff << attempt
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
		}

		if err != nil {
			logger.Error("Notification delivery failed after retries",
				zap.String("notification_id", n.ID.String()),
				zap.String("recipient_id", n.RecipientID.String()),
				zap.Int("attempts", d.maxRetries),
				zap.Error(err),
			)
		}
	}

	if delivered {
		if err := d.repo.MarkDelivered(ctx, n.ID); err != nil {
			logger.Warn("Failed to mark notification delivered",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// recipientsFor derives who hears about an event: the sender always,
// every carrier that held or holds the parcel on relay and delivery
// events, and proposed carriers when matching opens.
func (d *Dispatcher) recipientsFor(ctx context.Context, event domainNotification.LifecycleTransitioned) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var recipients []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	if p, err := d.parcelRepo.GetByID(ctx, event.ParcelID); err == nil {
		add(p.SenderID)
	}

	matches, err := d.matchRepo.ListByParcel(ctx, event.ParcelID)
	if err != nil {
		logger.Warn("Failed to resolve notification recipients",
			zap.String("parcel_id", event.ParcelID.String()),
			zap.Error(err),
		)
		return recipients
	}

	for _, m := range matches {
		switch m.Status {
		case domainMatch.StatusAccepted, domainMatch.StatusAcceptedRelay, domainMatch.StatusCompleted:
			add(m.CarrierID)
		case domainMatch.StatusPending:
			if event.To == domainParcel.StatusMatched || event.To == domainParcel.StatusAwaitingRelay {
				add(m.CarrierID)
			}
		}
	}

	return recipients
}

func messageFor(event domainNotification.LifecycleTransitioned) string {
	return fmt.Sprintf("Parcel %s moved from %s to %s", event.ParcelID, event.From, event.To)
}
