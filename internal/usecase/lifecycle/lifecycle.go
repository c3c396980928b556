package lifecycle

import (
	"fmt"

	domainParcel "parcel-relay/internal/domain/parcel"
	appErrors "parcel-relay/pkg/errors"
)

// State machine for parcel status transitions
var validTransitions = map[domainParcel.Status][]domainParcel.Status{
	domainParcel.StatusPending: {
		domainParcel.StatusMatched,
		domainParcel.StatusCancelled,
	},
	domainParcel.StatusMatched: {
		domainParcel.StatusAcceptedBySender,
		domainParcel.StatusAcceptedByCarrier,
		domainParcel.StatusCancelled,
	},
	domainParcel.StatusAcceptedBySender: {
		domainParcel.StatusAcceptedByCarrier,
		domainParcel.StatusInTransit,
		domainParcel.StatusCancelled,
	},
	domainParcel.StatusAcceptedByCarrier: {
		domainParcel.StatusInTransit,
		domainParcel.StatusCancelled,
	},
	domainParcel.StatusInTransit: {
		domainParcel.StatusAwaitingRelay,
		domainParcel.StatusDelivered,
		domainParcel.StatusFailed,
		domainParcel.StatusCancelled,
	},
	domainParcel.StatusAwaitingRelay: {
		domainParcel.StatusRelayInProgress,
		domainParcel.StatusCancelled,
	},
	domainParcel.StatusRelayInProgress: {
		// Next segment underway, or handoff again / finish
		domainParcel.StatusInTransit,
		domainParcel.StatusAwaitingRelay,
		domainParcel.StatusDelivered,
		domainParcel.StatusFailed,
		domainParcel.StatusCancelled,
	},
	domainParcel.StatusDelivered: {
		// Terminal state - no transitions
	},
	domainParcel.StatusCancelled: {
		// Terminal state - no transitions
	},
	domainParcel.StatusFailed: {
		// Terminal state - no transitions
	},
}

// ValidateStatusTransition checks if status transition is allowed
func ValidateStatusTransition(currentStatus, newStatus domainParcel.Status) error {
	allowedStatuses, exists := validTransitions[currentStatus]
	if !exists {
		return appErrors.NewAppError(
			"INVALID_STATUS",
			fmt.Sprintf("Unknown current status: %s", currentStatus),
			domainParcel.ErrInvalidStatus,
		)
	}

	for _, allowed := range allowedStatuses {
		if newStatus == allowed {
			return nil
		}
	}

	return appErrors.NewAppError(
		"INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition from %s to %s", currentStatus, newStatus),
		appErrors.ErrInvalidTransition,
	)
}

// GetAllowedTransitions returns allowed next statuses
func GetAllowedTransitions(currentStatus domainParcel.Status) []domainParcel.Status {
	return validTransitions[currentStatus]
}

// Capability names the actor allowed to drive an edge
type Capability string

const (
	// CapSender: the parcel's sender (or an admin)
	CapSender Capability = "sender"
	// CapCurrentCarrier: the carrier holding the current accepted match
	CapCurrentCarrier Capability = "current_carrier"
	// CapSenderOrMatched: the sender or any carrier with a match on the parcel
	CapSenderOrMatched Capability = "sender_or_matched"
	// CapRelayConfirm: the next carrier named on the open checkpoint
	CapRelayConfirm Capability = "relay_confirm"
)

// edgeCapabilities maps a target status to who may move the parcel there.
// Missing entries default to CapCurrentCarrier.
var edgeCapabilities = map[domainParcel.Status]Capability{
	domainParcel.StatusMatched:           CapSenderOrMatched,
	domainParcel.StatusAcceptedBySender:  CapSender,
	domainParcel.StatusAcceptedByCarrier: CapCurrentCarrier,
	domainParcel.StatusInTransit:         CapCurrentCarrier,
	domainParcel.StatusAwaitingRelay:     CapCurrentCarrier,
	domainParcel.StatusRelayInProgress:   CapRelayConfirm,
	domainParcel.StatusDelivered:         CapCurrentCarrier,
	domainParcel.StatusFailed:            CapCurrentCarrier,
	domainParcel.StatusCancelled:         CapSender,
}

// professionalEdges lists target statuses that require a signed,
// non-expired contract for the acting carrier.
var professionalEdges = map[domainParcel.Status]bool{
	domainParcel.StatusAwaitingRelay: true,
}

// requiredCapability returns the capability for the edge into target.
func requiredCapability(target domainParcel.Status) Capability {
	if c, ok := edgeCapabilities[target]; ok {
		return c
	}
	return CapCurrentCarrier
}
